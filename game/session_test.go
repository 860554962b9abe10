package game

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
)

func TestNewRoomCode(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	code := NewRoomCode(rng)
	if len(code) != 6 {
		t.Errorf("expected 6 chars, got %q", code)
	}
	for _, c := range code {
		if !strings.ContainsRune(roomCodeAlphabet, c) {
			t.Errorf("character %q outside the alphabet", c)
		}
	}
}

func TestAddPlayer(t *testing.T) {
	s := NewSession("TEST01", "Ann")
	if s.HostID == "" || !s.Players[0].IsHost {
		t.Fatalf("host not seated")
	}

	if _, err := s.AddPlayer("Ann", false); err != ErrNameTaken {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}
	if _, err := s.AddPlayer("Ben", false); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	for i := 0; len(s.Players) < MaxPlayers; i++ {
		s.AddPlayer(strings.Repeat("x", i+1), true)
	}
	if _, err := s.AddPlayer("One Too Many", false); err != ErrTooManyPlayers {
		t.Errorf("expected ErrTooManyPlayers, got %v", err)
	}
}

func TestRemovePlayerPromotesHost(t *testing.T) {
	s := NewSession("TEST01", "Ann")
	bot, _ := s.AddPlayer("Bot", true)
	ben, _ := s.AddPlayer("Ben", false)

	if !s.RemovePlayer(s.HostID) {
		t.Fatalf("host removal failed")
	}
	if s.HostID != ben.ID || !ben.IsHost {
		t.Errorf("expected the human to inherit the room, host is %s", s.HostID)
	}
	if bot.IsHost {
		t.Errorf("bot must not be preferred as host")
	}
}

func TestDealAndReset(t *testing.T) {
	s := NewSession("TEST01", "Ann")
	s.AddPlayer("Ben", false)
	s.AddPlayer("Cat", false)

	dist := []string{"werewolf", "seer", "robber", "villager", "villager", "villager"}
	if err := s.Deal(dist); err != nil {
		t.Fatalf("deal failed: %v", err)
	}
	s.GameStarted = true
	if err := s.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(s.CenterCards) != CenterCount {
		t.Errorf("expected %d center cards, got %d", CenterCount, len(s.CenterCards))
	}
	for i, p := range s.Players {
		if p.OriginalRole != dist[i] || p.CurrentRole != dist[i] {
			t.Errorf("seat %d not dealt %s", i, dist[i])
		}
	}

	if err := s.Deal(dist[:4]); err == nil {
		t.Errorf("short distribution must be rejected")
	}

	s.ResetForLobby()
	if s.GameStarted || s.CenterCards != nil || s.GameState != nil {
		t.Errorf("reset left game state behind")
	}
	if s.Players[0].OriginalRole != "" || s.Players[0].NightNotes != nil {
		t.Errorf("reset left player state behind")
	}
	if len(s.Players) != 3 {
		t.Errorf("reset must keep the seats")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSession("TEST01", "Ann")
	s.AddPlayer("Ben", false)
	s.AddPlayer("Cat", true)
	s.Deal([]string{"werewolf", "seer", "robber", "villager", "villager", "villager"})
	s.GameStarted = true
	s.GameState = &GameState{Phase: PhaseNight}
	s.Players[0].NightNotes = []string{"You are the only Werewolf."}
	s.Revision = 9

	var buf bytes.Buffer
	if err := s.WriteOut(&buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadSession(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.RoomCode != s.RoomCode || got.Revision != 9 {
		t.Errorf("identity fields lost")
	}
	if got.GameState == nil || got.GameState.Phase != PhaseNight {
		t.Errorf("game state lost")
	}
	if len(got.Players) != 3 || got.Players[0].NightNotes[0] != s.Players[0].NightNotes[0] {
		t.Errorf("player state lost")
	}
	if !got.Players[2].IsBot {
		t.Errorf("bot flag lost")
	}
}
