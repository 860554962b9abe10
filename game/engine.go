package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the engine's timing knobs. A zero duration disables the
// timer it belongs to, which makes runs fully synchronous for tests and
// hotseat play.
type Config struct {
	// SetupDelay is the pause between dealing and the first night turn.
	SetupDelay time.Duration
	// TurnTimeout is the window each waking role gets to act.
	TurnTimeout time.Duration
	// TurnHold is the pacing pause after a role's turn resolves.
	TurnHold time.Duration
	// VoteTimeout ends voting even if some players never voted.
	VoteTimeout time.Duration
	// DefaultDiscussion applies when the host never set a time.
	DefaultDiscussion time.Duration
	// BotThinkMin/Max bound the delay before a bot acts or votes.
	BotThinkMin time.Duration
	BotThinkMax time.Duration
	// BotReadyMin/Max bound when bots mark themselves ready to vote.
	BotReadyMin time.Duration
	BotReadyMax time.Duration
}

// DefaultConfig is the interactive timing profile.
func DefaultConfig() Config {
	return Config{
		SetupDelay:        3 * time.Second,
		TurnTimeout:       8 * time.Second,
		TurnHold:          2 * time.Second,
		VoteTimeout:       60 * time.Second,
		DefaultDiscussion: 5 * time.Minute,
		BotThinkMin:       1 * time.Second,
		BotThinkMax:       3 * time.Second,
		BotReadyMin:       10 * time.Second,
		BotReadyMax:       30 * time.Second,
	}
}

// HeadlessConfig disables every timer, so a game with only bots runs to
// completion inside the StartGame call.
func HeadlessConfig() Config {
	return Config{}
}

// Engine runs one session from lobby to results. All mutation goes
// through its lock, which makes it the single writer for the session
// blob. Timer callbacks take the same lock.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	rng     *rand.Rand
	log     zerolog.Logger
	session *Session
	bots    *botManager

	// emit must not block and must not call back into the engine.
	emit  func(Event)
	onEnd func(*Session, Result)

	nightOrder []Role
	turnIdx    int
	pending    map[string]bool
	deadline   time.Time
	ready      map[string]bool
	result     *Result

	setupTimer   *time.Timer
	turnTimer    *time.Timer
	discussTimer *time.Timer
	voteTimer    *time.Timer
	botTimers    []*time.Timer

	closed bool
}

func NewEngine(s *Session, cfg Config, rng *rand.Rand, log zerolog.Logger) *Engine {
	e := &Engine{
		cfg:     cfg,
		rng:     rng,
		log:     log.With().Str("room", s.RoomCode).Logger(),
		session: s,
		bots:    newBotManager(rng),
		emit:    func(Event) {},
	}
	for _, p := range s.Players {
		if p.IsBot {
			e.bots.create(p.ID)
		}
	}
	return e
}

// SetEventFn installs the narrator stream callback.
func (e *Engine) SetEventFn(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emit = fn
}

// SetOnGameEnd installs the finished-game callback. It runs on its own
// goroutine with a snapshot, so it may call back into the engine.
func (e *Engine) SetOnGameEnd(fn func(*Session, Result)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnd = fn
}

// Close stops every timer. The session stays readable.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	stopTimer(e.setupTimer)
	stopTimer(e.turnTimer)
	stopTimer(e.discussTimer)
	stopTimer(e.voteTimer)
	e.stopBotTimers()
}

// Snapshot returns an independent copy of the session for pollers.
func (e *Engine) Snapshot() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSession(e.session)
}

// Turn reports the night turn currently waiting on input, nil when no
// one is being waited on.
func (e *Engine) Turn() *TurnState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 || e.phase() != PhaseNight {
		return nil
	}
	role := e.nightOrder[e.turnIdx]
	ts := &TurnState{Role: role.ID, Action: role.NightAction, Deadline: e.deadline}
	for _, p := range e.session.Players {
		if e.pending[p.ID] {
			ts.Waiting = append(ts.Waiting, p.ID)
		}
	}
	return ts
}

// Result returns the finished game's outcome, nil before results.
func (e *Engine) Result() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return nil
	}
	r := *e.result
	return &r
}

// --- lobby operations, host gated where the action demands it

func (e *Engine) AddPlayer(name string) (*Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.session.AddPlayer(name, false)
	if err != nil {
		return nil, err
	}
	e.bump()
	return p, nil
}

func (e *Engine) AddBot(hostID string) (*Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireHost(hostID); err != nil {
		return nil, err
	}
	name := e.bots.pickName(e.session)
	p, err := e.session.AddPlayer(name, true)
	if err != nil {
		return nil, err
	}
	e.bots.create(p.ID)
	e.bump()
	return p, nil
}

func (e *Engine) RemovePlayer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.GameStarted {
		return ErrAlreadyStarted
	}
	if !e.session.RemovePlayer(id) {
		return ErrPlayerNotFound
	}
	delete(e.bots.bots, id)
	e.bump()
	return nil
}

func (e *Engine) SetRoles(hostID string, roleIDs []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	if e.session.GameStarted {
		return ErrAlreadyStarted
	}
	for _, id := range roleIDs {
		if _, ok := RoleByID(id); !ok {
			return ErrUnknownRole
		}
	}
	e.session.Settings.SelectedRoles = roleIDs
	e.bump()
	return nil
}

func (e *Engine) SetDiscussionTime(hostID string, minutes int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	if e.session.GameStarted {
		return ErrAlreadyStarted
	}
	e.session.Settings.DiscussionTime = minutes
	e.bump()
	return nil
}

func (e *Engine) SetNarrator(hostID, playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	if playerID != "" && e.session.PlayerByID(playerID) == nil {
		return ErrPlayerNotFound
	}
	e.session.Settings.NarratorPlayerID = playerID
	e.bump()
	return nil
}

// StartGame deals and kicks off the night. With every timer at zero and
// only bots playing this runs the whole game before returning.
func (e *Engine) StartGame(hostID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	if e.session.GameStarted {
		return ErrAlreadyStarted
	}
	if len(e.session.Players) < MinPlayers {
		return ErrTooFewPlayers
	}

	selected := e.session.Settings.SelectedRoles
	if len(selected) == 0 {
		selected = DefaultRoles(len(e.session.Players))
	}
	dist := Distribution(len(e.session.Players), selected, e.rng)
	if err := e.session.Deal(dist); err != nil {
		return err
	}
	e.session.GameStarted = true
	e.session.GameState = &GameState{Phase: PhaseSetup}
	e.session.EliminatedPlayers = nil
	e.result = nil
	if err := e.session.Validate(); err != nil {
		return err
	}
	e.bump()
	e.log.Info().Int("players", len(e.session.Players)).Msg("game started")

	e.setupTimer = e.after(e.cfg.SetupDelay, e.beginNight)
	return nil
}

// PlayAgain returns a finished room to the lobby with its seats kept.
func (e *Engine) PlayAgain(hostID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireHost(hostID); err != nil {
		return err
	}
	if e.phase() != PhaseResults {
		return ErrWrongPhase
	}
	e.session.ResetForLobby()
	e.nightOrder = nil
	e.pending = nil
	e.ready = nil
	e.result = nil
	e.bump()
	return nil
}

// --- night

func (e *Engine) beginNight() {
	e.setPhase(PhaseNight)
	e.nightOrder = nil
	for _, r := range RolesInNightOrder() {
		if len(e.session.PlayersWithOriginalRole(r.ID)) > 0 {
			e.nightOrder = append(e.nightOrder, r)
		}
	}
	e.turnIdx = -1
	e.advanceTurn()
}

func (e *Engine) advanceTurn() {
	stopTimer(e.turnTimer)
	e.turnIdx++
	if e.turnIdx >= len(e.nightOrder) {
		e.beginDay()
		return
	}

	role := e.nightOrder[e.turnIdx]
	actors := e.session.PlayersWithOriginalRole(role.ID)
	e.emit(wakeEvent(role))
	e.log.Debug().Str("role", role.ID).Int("actors", len(actors)).Msg("night turn")

	switch role.NightAction {
	case ActionViewTeammates:
		for _, p := range actors {
			p.NightNotes = append(p.NightNotes, resolveTeammates(role, p, e.session))
		}
		e.finishTurn(role)
	case ActionCheckSelf:
		for _, p := range actors {
			p.NightNotes = append(p.NightNotes, resolveCheckSelf(p))
		}
		e.finishTurn(role)
	default:
		e.pending = map[string]bool{}
		for _, p := range actors {
			e.pending[p.ID] = true
		}
		turn := e.turnIdx
		if e.cfg.TurnTimeout > 0 {
			e.deadline = time.Now().Add(e.cfg.TurnTimeout)
			e.turnTimer = e.after(e.cfg.TurnTimeout, func() { e.expireTurn(turn) })
		} else {
			e.deadline = time.Time{}
		}
		for _, p := range actors {
			if p.IsBot {
				e.scheduleBot(e.botThink(), func() { e.botAct(turn, p.ID) })
			}
		}
	}
}

func (e *Engine) botAct(turn int, playerID string) {
	// the turn may have resolved while this bot was thinking
	if e.phase() != PhaseNight || e.turnIdx != turn || !e.pending[playerID] {
		return
	}
	role := e.nightOrder[e.turnIdx]
	p := e.session.PlayerByID(playerID)
	if p == nil {
		return
	}
	sel := e.bots.getOrCreate(playerID).ChooseNightAction(role, p, e.session)
	if err := e.submitLocked(playerID, sel); err != nil {
		e.log.Warn().Err(err).Str("bot", p.Name).Msg("bot action rejected")
		e.submitLocked(playerID, Selection{Decline: true})
	}
}

// SubmitSelection resolves the acting player's pending night action. A
// rejected selection leaves the action open; a selection after the turn
// moved on is refused without effect.
func (e *Engine) SubmitSelection(playerID string, sel Selection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitLocked(playerID, sel)
}

func (e *Engine) submitLocked(playerID string, sel Selection) error {
	if e.phase() != PhaseNight {
		return ErrWrongPhase
	}
	p := e.session.PlayerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if e.turnIdx < 0 || e.turnIdx >= len(e.nightOrder) {
		return ErrNotYourTurn
	}
	role := e.nightOrder[e.turnIdx]
	if p.OriginalRole != role.ID {
		return ErrNotYourTurn
	}
	if !e.pending[playerID] {
		return ErrAlreadyActed
	}

	note, err := applySelection(e.session, role, p, sel)
	if err != nil {
		return err
	}
	p.NightNotes = append(p.NightNotes, note)
	delete(e.pending, playerID)
	e.bump()
	if len(e.pending) == 0 {
		stopTimer(e.turnTimer)
		e.finishTurn(role)
	}
	return nil
}

func (e *Engine) expireTurn(turn int) {
	// a Stop that loses the race leaves the fired callback waiting on
	// the lock; by the time it runs the turn may already be resolved
	if e.phase() != PhaseNight || e.turnIdx != turn || len(e.pending) == 0 {
		return
	}
	role := e.nightOrder[e.turnIdx]
	for _, p := range e.session.Players {
		if e.pending[p.ID] {
			p.NightNotes = append(p.NightNotes, "No action taken.")
		}
	}
	e.pending = nil
	e.bump()
	e.finishTurn(role)
}

func (e *Engine) finishTurn(role Role) {
	e.pending = nil
	e.emit(sleepEvent(role))
	e.turnTimer = e.after(e.cfg.TurnHold, e.advanceTurn)
}

// --- day

func (e *Engine) beginDay() {
	e.setPhase(PhaseDay)
	budget := e.cfg.DefaultDiscussion
	if e.session.Settings.DiscussionTime > 0 {
		budget = time.Duration(e.session.Settings.DiscussionTime) * time.Minute
	}
	e.session.GameState.DiscussionTime = int(budget / time.Second)
	e.ready = map[string]bool{}
	e.bump()

	for _, p := range e.session.Players {
		if p.IsBot {
			id := p.ID
			e.scheduleBot(e.botReady(), func() { e.botMarkReady(id) })
		}
	}
	e.discussTimer = e.after(budget, e.beginVoting)
}

func (e *Engine) botMarkReady(playerID string) {
	if e.phase() != PhaseDay {
		return
	}
	e.markReadyLocked(playerID)
}

// MarkReady records that a player is done discussing. When everyone is
// ready the vote starts early.
func (e *Engine) MarkReady(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase() != PhaseDay {
		return ErrWrongPhase
	}
	if e.session.PlayerByID(playerID) == nil {
		return ErrPlayerNotFound
	}
	e.markReadyLocked(playerID)
	return nil
}

func (e *Engine) markReadyLocked(playerID string) {
	e.ready[playerID] = true
	if len(e.ready) >= len(e.session.Players) {
		stopTimer(e.discussTimer)
		e.beginVoting()
	}
}

// --- voting

func (e *Engine) beginVoting() {
	if e.phase() != PhaseDay {
		return
	}
	e.setPhase(PhaseVoting)
	for _, p := range e.session.Players {
		if p.IsBot {
			id := p.ID
			e.scheduleBot(e.botThink(), func() { e.botVote(id) })
		}
	}
	e.voteTimer = e.after(e.cfg.VoteTimeout, e.finishVoting)
}

func (e *Engine) botVote(playerID string) {
	if e.phase() != PhaseVoting {
		return
	}
	p := e.session.PlayerByID(playerID)
	if p == nil || p.Vote != "" {
		return
	}
	target := e.bots.getOrCreate(playerID).ChooseVote(p, e.session)
	if target != "" {
		e.castVoteLocked(playerID, target)
	}
}

// CastVote records one player's vote. The last vote closes the phase.
func (e *Engine) CastVote(playerID, targetID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase() != PhaseVoting {
		return ErrWrongPhase
	}
	p := e.session.PlayerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if p.Vote != "" {
		return ErrAlreadyVoted
	}
	if e.session.PlayerByID(targetID) == nil {
		return ErrBadTarget
	}
	if targetID == playerID {
		return ErrSelfTarget
	}
	return e.castVoteLocked(playerID, targetID)
}

func (e *Engine) castVoteLocked(playerID, targetID string) error {
	p := e.session.PlayerByID(playerID)
	p.Vote = targetID
	e.bump()
	for _, q := range e.session.Players {
		if q.Vote == "" {
			return nil
		}
	}
	stopTimer(e.voteTimer)
	e.finishVoting()
	return nil
}

func (e *Engine) finishVoting() {
	if e.phase() != PhaseVoting {
		return
	}
	eliminated := TallyVotes(e.session)
	e.session.EliminatedPlayers = eliminated
	res := DetermineWinners(e.session, eliminated)
	e.result = &res
	e.setPhase(PhaseResults)
	e.emit(Event{Type: EventGameEnd, Phase: PhaseResults, Narration: endNarration(res)})
	e.log.Info().Str("outcome", string(res.Outcome)).Strs("eliminated", eliminated).Msg("game over")

	if e.onEnd != nil {
		snap := cloneSession(e.session)
		fn := e.onEnd
		go fn(snap, res)
	}
}

func endNarration(res Result) string {
	switch res.Outcome {
	case OutcomeTanner:
		return "The Tanner wins."
	case OutcomeVillage:
		return "The Village wins."
	}
	return "The Werewolves win."
}

// --- plumbing

func (e *Engine) requireHost(playerID string) error {
	p := e.session.PlayerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if !p.IsHost {
		return ErrNotHost
	}
	return nil
}

func (e *Engine) phase() Phase {
	if e.session.GameState == nil {
		return PhaseSetup
	}
	return e.session.GameState.Phase
}

func (e *Engine) setPhase(p Phase) {
	if e.session.GameState == nil {
		e.session.GameState = &GameState{}
	}
	e.session.GameState.Phase = p
	e.bump()
	e.emit(phaseEvent(p))
}

func (e *Engine) bump() {
	e.session.Revision++
}

// after runs fn with the lock held: inline when d is zero, otherwise on
// a timer that retakes the lock.
func (e *Engine) after(d time.Duration, fn func()) *time.Timer {
	if d <= 0 {
		fn()
		return nil
	}
	return time.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed {
			return
		}
		fn()
	})
}

func (e *Engine) scheduleBot(d time.Duration, fn func()) {
	e.botTimers = append(e.botTimers, e.after(d, fn))
}

func (e *Engine) stopBotTimers() {
	for _, t := range e.botTimers {
		stopTimer(t)
	}
	e.botTimers = nil
}

func (e *Engine) botThink() time.Duration {
	return e.randRange(e.cfg.BotThinkMin, e.cfg.BotThinkMax)
}

func (e *Engine) botReady() time.Duration {
	return e.randRange(e.cfg.BotReadyMin, e.cfg.BotReadyMax)
}

func (e *Engine) randRange(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(e.rng.Int63n(int64(max-min)))
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

func cloneSession(s *Session) *Session {
	out := *s
	out.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		q := *p
		q.NightNotes = append([]string(nil), p.NightNotes...)
		out.Players[i] = &q
	}
	if s.CenterCards != nil {
		out.CenterCards = make([]*CenterCard, len(s.CenterCards))
		for i, c := range s.CenterCards {
			q := *c
			out.CenterCards[i] = &q
		}
	}
	if s.GameState != nil {
		gs := *s.GameState
		out.GameState = &gs
	}
	out.EliminatedPlayers = append([]string(nil), s.EliminatedPlayers...)
	out.Settings.SelectedRoles = append([]string(nil), s.Settings.SelectedRoles...)
	return &out
}
