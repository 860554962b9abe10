package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"onenight/game"
)

func runWebGateway(ctx context.Context, server *Server, addr string) error {
	log := log.With().Str("gw", "web").Logger()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	log.Info().Msgf("web listening on http://%v", ln.Addr())

	rh := restHandler{
		server: server,
		log:    log,
	}
	eh := eventsHandler{
		server: server,
		log:    log.With().Str("gw", "ws").Logger(),
	}

	r := gin.Default()
	a := r.Group("/api")
	a.GET("/roles", rh.getRoles)
	a.POST("/rooms", rh.createRoom)
	a.GET("/rooms/:code", rh.getRoom)
	a.DELETE("/rooms/:code", rh.deleteRoom)
	a.POST("/rooms/:code/players", rh.joinRoom)
	a.DELETE("/rooms/:code/players/:id", rh.leaveRoom)
	a.POST("/rooms/:code/bots", rh.addBot)
	a.PUT("/rooms/:code/settings", rh.updateSettings)
	a.POST("/rooms/:code/start", rh.startGame)
	a.GET("/rooms/:code/turn", rh.getTurn)
	a.POST("/rooms/:code/selection", rh.submitSelection)
	a.POST("/rooms/:code/ready", rh.markReady)
	a.POST("/rooms/:code/votes", rh.castVote)
	a.POST("/rooms/:code/again", rh.playAgain)
	a.GET("/history", rh.getHistory)
	r.GET("/ws", eh.serveWS)

	s := &http.Server{
		Handler:     r,
		ReadTimeout: time.Second * 10,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	err = s.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type restHandler struct {
	server *Server
	log    zerolog.Logger
}

// fail maps engine error codes onto HTTP statuses.
func (rh *restHandler) fail(c *gin.Context, err error) {
	var ge *game.GameError
	if !errors.As(err, &ge) {
		rh.log.Error().Err(err).Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusBadRequest
	switch ge.Code {
	case "SESSIONNOTFOUND", "PLAYERNOTFOUND":
		status = http.StatusNotFound
	case "NOTHOST":
		status = http.StatusForbidden
	case "ALREADYSTARTED", "NOTSTARTED", "WRONGPHASE", "NOTYOURTURN",
		"ALREADYACTED", "ALREADYVOTED", "NAMETAKEN", "TOOMANYPLAYERS":
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": ge.Msg, "code": ge.Code})
}

func (rh *restHandler) getRoles(c *gin.Context) {
	c.JSON(http.StatusOK, game.AllRoles())
}

func (rh *restHandler) createRoom(c *gin.Context) {
	var body struct {
		HostName string `json:"hostName"`
	}
	if err := c.BindJSON(&body); err != nil || body.HostName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing hostName"})
		return
	}

	sess, err := rh.server.CreateRoom(c.Request.Context(), body.HostName)
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// getRoom is the poll endpoint. With ?rev=N an unchanged session comes
// back as 304 so pollers stay cheap.
func (rh *restHandler) getRoom(c *gin.Context) {
	sess, err := rh.server.Session(c.Request.Context(), c.Param("code"))
	if err != nil {
		rh.fail(c, err)
		return
	}
	if since, err := strconv.ParseInt(c.Query("rev"), 10, 64); err == nil && sess.Revision <= since {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (rh *restHandler) deleteRoom(c *gin.Context) {
	err := rh.server.DeleteRoom(c.Request.Context(), c.Param("code"), c.Query("player"))
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rh *restHandler) joinRoom(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BindJSON(&body); err != nil || body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}

	var player *game.Player
	err := rh.server.mutate(c.Request.Context(), c.Param("code"), func(e *game.Engine) error {
		p, err := e.AddPlayer(body.Name)
		player = p
		return err
	})
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

func (rh *restHandler) leaveRoom(c *gin.Context) {
	err := rh.server.mutate(c.Request.Context(), c.Param("code"), func(e *game.Engine) error {
		return e.RemovePlayer(c.Param("id"))
	})
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rh *restHandler) addBot(c *gin.Context) {
	var body struct {
		PlayerID string `json:"playerId"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
		return
	}

	var bot *game.Player
	err := rh.server.mutate(c.Request.Context(), c.Param("code"), func(e *game.Engine) error {
		p, err := e.AddBot(body.PlayerID)
		bot = p
		return err
	})
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, bot)
}

func (rh *restHandler) updateSettings(c *gin.Context) {
	var body struct {
		PlayerID         string   `json:"playerId"`
		DiscussionTime   *int     `json:"discussionTime"`
		SelectedRoles    []string `json:"selectedRoles"`
		NarratorPlayerID *string  `json:"narratorPlayerId"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
		return
	}

	err := rh.server.mutate(c.Request.Context(), c.Param("code"), func(e *game.Engine) error {
		if body.SelectedRoles != nil {
			if err := e.SetRoles(body.PlayerID, body.SelectedRoles); err != nil {
				return err
			}
		}
		if body.DiscussionTime != nil {
			if err := e.SetDiscussionTime(body.PlayerID, *body.DiscussionTime); err != nil {
				return err
			}
		}
		if body.NarratorPlayerID != nil {
			if err := e.SetNarrator(body.PlayerID, *body.NarratorPlayerID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rh *restHandler) startGame(c *gin.Context) {
	var body struct {
		PlayerID string `json:"playerId"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
		return
	}

	err := rh.server.mutate(c.Request.Context(), c.Param("code"), func(e *game.Engine) error {
		return e.StartGame(body.PlayerID)
	})
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rh *restHandler) getTurn(c *gin.Context) {
	r, err := rh.server.getRoom(c.Request.Context(), c.Param("code"))
	if err != nil {
		rh.fail(c, err)
		return
	}
	turn := r.engine.Turn()
	if turn == nil {
		c.JSON(http.StatusOK, gin.H{"waiting": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"waiting": true, "turn": turn})
}

func (rh *restHandler) submitSelection(c *gin.Context) {
	var body struct {
		PlayerID  string         `json:"playerId"`
		Selection game.Selection `json:"selection"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
		return
	}

	err := rh.server.mutate(c.Request.Context(), c.Param("code"), func(e *game.Engine) error {
		return e.SubmitSelection(body.PlayerID, body.Selection)
	})
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rh *restHandler) markReady(c *gin.Context) {
	var body struct {
		PlayerID string `json:"playerId"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
		return
	}

	err := rh.server.mutate(c.Request.Context(), c.Param("code"), func(e *game.Engine) error {
		return e.MarkReady(body.PlayerID)
	})
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rh *restHandler) castVote(c *gin.Context) {
	var body struct {
		PlayerID string `json:"playerId"`
		TargetID string `json:"targetId"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
		return
	}

	err := rh.server.mutate(c.Request.Context(), c.Param("code"), func(e *game.Engine) error {
		return e.CastVote(body.PlayerID, body.TargetID)
	})
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rh *restHandler) playAgain(c *gin.Context) {
	var body struct {
		PlayerID string `json:"playerId"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
		return
	}

	err := rh.server.mutate(c.Request.Context(), c.Param("code"), func(e *game.Engine) error {
		return e.PlayAgain(body.PlayerID)
	})
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rh *restHandler) getHistory(c *gin.Context) {
	if rh.server.history == nil {
		c.JSON(http.StatusOK, []HistoryEntry{})
		return
	}
	limit := 20
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}
	entries, err := rh.server.history.Recent(limit)
	if err != nil {
		rh.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
