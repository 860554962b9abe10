package game

import (
	"encoding/json"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const (
	MinPlayers  = 3
	MaxPlayers  = 10
	CenterCount = 3
)

// Phase is the session's lifecycle marker.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseNight   Phase = "night"
	PhaseDay     Phase = "day"
	PhaseVoting  Phase = "voting"
	PhaseResults Phase = "results"
)

// Player is one seat in a session, human or bot.
type Player struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	IsHost       bool     `json:"isHost"`
	IsBot        bool     `json:"isBot"`
	OriginalRole string   `json:"originalRole,omitempty"`
	CurrentRole  string   `json:"currentRole,omitempty"`
	Vote         string   `json:"vote,omitempty"`
	NightNotes   []string `json:"nightNotes,omitempty"`
}

// CenterCard is one of the three face-down middle cards.
type CenterCard struct {
	Position     int    `json:"position"`
	OriginalRole string `json:"originalRole"`
	CurrentRole  string `json:"currentRole"`
}

// Settings are the host's lobby choices.
type Settings struct {
	// DiscussionTime is in minutes, as the host sets it.
	DiscussionTime   int      `json:"discussionTime"`
	SelectedRoles    []string `json:"selectedRoles,omitempty"`
	NarratorPlayerID string   `json:"narratorPlayerId,omitempty"`
}

// GameState is the in-game part of the blob, absent until start.
type GameState struct {
	Phase Phase `json:"phase"`
	// DiscussionTime is the remaining budget in seconds.
	DiscussionTime int `json:"discussionTime"`
}

// Session is the whole shared state of one room, the unit of storage.
type Session struct {
	RoomCode          string        `json:"roomCode"`
	HostID            string        `json:"hostId"`
	Revision          int64         `json:"revision"`
	Players           []*Player     `json:"players"`
	Settings          Settings      `json:"settings"`
	GameStarted       bool          `json:"gameStarted"`
	CenterCards       []*CenterCard `json:"centerCards,omitempty"`
	GameState         *GameState    `json:"gameState,omitempty"`
	EliminatedPlayers []string      `json:"eliminatedPlayers,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
}

const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewRoomCode makes a 6 char code. Ambiguous characters are left out of
// the alphabet. Uniqueness is the store's problem.
func NewRoomCode(rng *rand.Rand) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = roomCodeAlphabet[rng.Intn(len(roomCodeAlphabet))]
	}
	return string(b)
}

// NewSession makes an empty lobby with the given host seated.
func NewSession(roomCode, hostName string) *Session {
	host := &Player{
		ID:     uuid.NewString(),
		Name:   hostName,
		IsHost: true,
	}
	return &Session{
		RoomCode:  roomCode,
		HostID:    host.ID,
		Players:   []*Player{host},
		CreatedAt: time.Now(),
	}
}

// PlayerByID finds a seat, nil if absent.
func (s *Session) PlayerByID(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName finds a seat by display name, nil if absent.
func (s *Session) PlayerByName(name string) *Player {
	for _, p := range s.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddPlayer seats a new player, enforcing capacity and name uniqueness.
func (s *Session) AddPlayer(name string, isBot bool) (*Player, error) {
	if s.GameStarted {
		return nil, ErrAlreadyStarted
	}
	if len(s.Players) >= MaxPlayers {
		return nil, ErrTooManyPlayers
	}
	if s.PlayerByName(name) != nil {
		return nil, ErrNameTaken
	}
	p := &Player{
		ID:    uuid.NewString(),
		Name:  name,
		IsBot: isBot,
	}
	s.Players = append(s.Players, p)
	return p, nil
}

// RemovePlayer unseats a player. If the host leaves, the first remaining
// human becomes host, falling back to any seat.
func (s *Session) RemovePlayer(id string) bool {
	for i, p := range s.Players {
		if p.ID != id {
			continue
		}
		s.Players = append(s.Players[:i], s.Players[i+1:]...)
		if p.IsHost && len(s.Players) > 0 {
			next := s.Players[0]
			for _, q := range s.Players {
				if !q.IsBot {
					next = q
					break
				}
			}
			next.IsHost = true
			s.HostID = next.ID
		}
		return true
	}
	return false
}

// Deal assigns a shuffled distribution: one card per player in seat
// order, then the remaining CenterCount cards into the middle. The
// distribution must be exactly len(Players)+CenterCount long.
func (s *Session) Deal(dist []string) error {
	if len(dist) != len(s.Players)+CenterCount {
		return ErrUnknownRole
	}
	for _, id := range dist {
		if _, ok := RoleByID(id); !ok {
			return ErrUnknownRole
		}
	}
	for i, p := range s.Players {
		p.OriginalRole = dist[i]
		p.CurrentRole = dist[i]
		p.Vote = ""
		p.NightNotes = nil
	}
	s.CenterCards = make([]*CenterCard, CenterCount)
	for i := 0; i < CenterCount; i++ {
		id := dist[len(s.Players)+i]
		s.CenterCards[i] = &CenterCard{Position: i, OriginalRole: id, CurrentRole: id}
	}
	return nil
}

// PlayersWithOriginalRole returns seats in order whose dealt card
// matches, bots included.
func (s *Session) PlayersWithOriginalRole(roleID string) []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p.OriginalRole == roleID {
			out = append(out, p)
		}
	}
	return out
}

// SwapPlayerRoles exchanges the current cards of two seats.
func (s *Session) SwapPlayerRoles(aID, bID string) error {
	a := s.PlayerByID(aID)
	b := s.PlayerByID(bID)
	if a == nil || b == nil {
		return ErrPlayerNotFound
	}
	a.CurrentRole, b.CurrentRole = b.CurrentRole, a.CurrentRole
	return nil
}

// SwapWithCenter exchanges a seat's current card with a middle card.
func (s *Session) SwapWithCenter(playerID string, position int) error {
	p := s.PlayerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if position < 0 || position >= len(s.CenterCards) {
		return ErrBadCenterCard
	}
	c := s.CenterCards[position]
	p.CurrentRole, c.CurrentRole = c.CurrentRole, p.CurrentRole
	return nil
}

// ResetForLobby wipes everything a finished game left behind but keeps
// the seats and settings so the same group can play again.
func (s *Session) ResetForLobby() {
	for _, p := range s.Players {
		p.OriginalRole = ""
		p.CurrentRole = ""
		p.Vote = ""
		p.NightNotes = nil
	}
	s.GameStarted = false
	s.CenterCards = nil
	s.GameState = nil
	s.EliminatedPlayers = nil
}

// Validate checks the dealt session is internally consistent before the
// night may run.
func (s *Session) Validate() error {
	if !s.GameStarted {
		return ErrNotStarted
	}
	if len(s.Players) < MinPlayers {
		return ErrTooFewPlayers
	}
	if len(s.CenterCards) != CenterCount {
		return ErrBadCenterCard
	}
	for _, p := range s.Players {
		if _, ok := RoleByID(p.OriginalRole); !ok {
			return ErrUnknownRole
		}
		if _, ok := RoleByID(p.CurrentRole); !ok {
			return ErrUnknownRole
		}
	}
	for _, c := range s.CenterCards {
		if _, ok := RoleByID(c.OriginalRole); !ok {
			return ErrUnknownRole
		}
		if _, ok := RoleByID(c.CurrentRole); !ok {
			return ErrUnknownRole
		}
	}
	return nil
}

// WriteOut dumps the session blob as indented JSON.
func (s *Session) WriteOut(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(s)
}

// ReadSession loads a session blob written by WriteOut.
func ReadSession(r io.Reader) (*Session, error) {
	s := &Session{}
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}
