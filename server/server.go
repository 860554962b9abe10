package server

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"onenight/game"
	"onenight/store"
)

// Server hosts many rooms. Each room's engine is the single writer for
// its session; the server persists a snapshot to the store after every
// mutation so pollers and a restarted process can read it back.
type Server struct {
	cfg     Config
	store   store.Store
	history *History

	mu    sync.Mutex
	rooms map[string]*room
	rng   *rand.Rand
}

type room struct {
	engine *game.Engine
	events *eventHub
}

func New(cfg Config) (*Server, error) {
	var st store.Store
	if cfg.RedisAddr != "" {
		rs := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis session store")
		st = rs
	} else {
		log.Info().Msg("using in-memory session store")
		st = store.NewMemory()
	}

	var hist *History
	if cfg.HistoryPath != "" {
		h, err := OpenHistory(cfg.HistoryPath)
		if err != nil {
			st.Close()
			return nil, err
		}
		hist = h
	}

	return &Server{
		cfg:     cfg,
		store:   st,
		history: hist,
		rooms:   map[string]*room{},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run serves until the context ends.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runWebGateway(gctx, s, s.cfg.WebAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return gctx.Err()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) shutdown() {
	s.mu.Lock()
	rooms := make([]*room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	for _, r := range rooms {
		r.engine.Close()
		r.events.close()
	}
	s.store.Close()
	if s.history != nil {
		s.history.Close()
	}
}

// CreateRoom makes a fresh lobby with the given host and registers its
// engine.
func (s *Server) CreateRoom(ctx context.Context, hostName string) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for {
		code = game.NewRoomCode(s.rng)
		if _, taken := s.rooms[code]; taken {
			continue
		}
		_, err := s.store.Get(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	sess := game.NewSession(code, hostName)
	r := s.registerLocked(sess)
	if err := s.persist(ctx, r.engine); err != nil {
		return nil, err
	}
	log.Info().Str("room", code).Str("host", hostName).Msg("room created")
	return r.engine.Snapshot(), nil
}

// registerLocked wires an engine and event hub for a session.
func (s *Server) registerLocked(sess *game.Session) *room {
	engine := game.NewEngine(sess, game.DefaultConfig(), rand.New(rand.NewSource(s.rng.Int63())), log.Logger)
	hub := newEventHub()
	engine.SetEventFn(hub.publish)
	engine.SetOnGameEnd(func(snap *game.Session, res game.Result) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.Put(ctx, snap); err != nil && !errors.Is(err, store.ErrStale) {
			log.Error().Err(err).Str("room", snap.RoomCode).Msg("persist on game end failed")
		}
		if s.history != nil {
			if err := s.history.Record(snap, res); err != nil {
				log.Error().Err(err).Str("room", snap.RoomCode).Msg("history record failed")
			}
		}
	})
	r := &room{engine: engine, events: hub}
	s.rooms[sess.RoomCode] = r
	return r
}

// getRoom finds a live room, reviving it from the store after a restart
// if the blob is still there.
func (s *Server) getRoom(ctx context.Context, code string) (*room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[code]; ok {
		return r, nil
	}
	sess, err := s.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, game.ErrSessionNotFound
		}
		return nil, err
	}
	// a blob caught mid-game has no timers or turn state left to
	// resume, so the game cannot progress; send the seats back to the
	// lobby rather than serve a room that can never advance
	if sess.GameStarted && (sess.GameState == nil || sess.GameState.Phase != game.PhaseResults) {
		sess.ResetForLobby()
		sess.Revision++
		log.Warn().Str("room", code).Msg("mid-game room reset to lobby on revival")
	}
	log.Info().Str("room", code).Msg("room revived from store")
	r := s.registerLocked(sess)
	if err := s.persist(ctx, r.engine); err != nil {
		log.Error().Err(err).Str("room", code).Msg("persist on revival failed")
	}
	return r, nil
}

// DeleteRoom tears a room down, host only.
func (s *Server) DeleteRoom(ctx context.Context, code, playerID string) error {
	r, err := s.getRoom(ctx, code)
	if err != nil {
		return err
	}
	sess := r.engine.Snapshot()
	if sess.HostID != playerID {
		return game.ErrNotHost
	}

	s.mu.Lock()
	delete(s.rooms, code)
	s.mu.Unlock()

	r.engine.Close()
	r.events.close()
	return s.store.Delete(ctx, code)
}

// Session returns a snapshot for pollers.
func (s *Server) Session(ctx context.Context, code string) (*game.Session, error) {
	r, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return r.engine.Snapshot(), nil
}

// mutate runs an engine operation and persists the result. Stale writes
// can only come from our own out-of-order persists, so they are logged
// and dropped.
func (s *Server) mutate(ctx context.Context, code string, fn func(*game.Engine) error) error {
	r, err := s.getRoom(ctx, code)
	if err != nil {
		return err
	}
	if err := fn(r.engine); err != nil {
		return err
	}
	return s.persist(ctx, r.engine)
}

func (s *Server) persist(ctx context.Context, engine *game.Engine) error {
	snap := engine.Snapshot()
	err := s.store.Put(ctx, snap)
	if errors.Is(err, store.ErrStale) {
		log.Debug().Str("room", snap.RoomCode).Msg("skipped stale persist")
		return nil
	}
	return err
}
