package game

import (
	"fmt"
	"math/rand"
)

var botNames = []string{
	"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace", "Henry",
	"Iris", "Jack", "Kate", "Liam", "Mia", "Noah", "Olivia", "Peter",
	"Quinn", "Ruby", "Sam", "Tina",
}

// Bot drives one computer seat. Stateless beyond its seat id and rng;
// everything it knows is read back out of the session.
type Bot struct {
	PlayerID string
	rng      *rand.Rand
}

// ChooseNightAction picks a selection for the bot's pending turn. Roles
// without a decision return an empty selection.
func (b *Bot) ChooseNightAction(role Role, p *Player, s *Session) Selection {
	switch role.NightAction {
	case ActionViewCard:
		// 60% of the time look at a random other player, otherwise the
		// first two center cards.
		others := b.otherPlayers(s)
		if len(others) > 0 && b.rng.Float64() < 0.6 {
			target := others[b.rng.Intn(len(others))]
			return Selection{PlayerIDs: []string{target.ID}}
		}
		return Selection{CenterPositions: []int{0, 1}}
	case ActionSwapAndView:
		others := b.otherPlayers(s)
		if len(others) == 0 {
			return Selection{Decline: true}
		}
		target := others[b.rng.Intn(len(others))]
		return Selection{PlayerIDs: []string{target.ID}}
	case ActionSwapOthers:
		others := b.otherPlayers(s)
		if len(others) < 2 {
			return Selection{Decline: true}
		}
		i := b.rng.Intn(len(others))
		j := b.rng.Intn(len(others) - 1)
		if j >= i {
			j++
		}
		return Selection{PlayerIDs: []string{others[i].ID, others[j].ID}}
	case ActionSwapBlind:
		return Selection{CenterPositions: []int{b.rng.Intn(CenterCount)}}
	}
	return Selection{Decline: true}
}

// ChooseVote picks a target id. Werewolf-team bots (by current card)
// avoid voting for werewolf card holders when they can; a minion
// holder is still fair game since the card itself survives a vote.
func (b *Bot) ChooseVote(p *Player, s *Session) string {
	others := b.otherPlayers(s)
	if len(others) == 0 {
		return ""
	}
	if currentTeam(p) == TeamWerewolf {
		var safe []*Player
		for _, q := range others {
			if q.CurrentRole != "werewolf" && q.CurrentRole != "dream-wolf" {
				safe = append(safe, q)
			}
		}
		if len(safe) > 0 {
			others = safe
		}
	}
	return others[b.rng.Intn(len(others))].ID
}

func (b *Bot) otherPlayers(s *Session) []*Player {
	var out []*Player
	for _, p := range s.Players {
		if p.ID != b.PlayerID {
			out = append(out, p)
		}
	}
	return out
}

// botManager owns the bots of one session.
type botManager struct {
	bots map[string]*Bot
	rng  *rand.Rand
}

func newBotManager(rng *rand.Rand) *botManager {
	return &botManager{bots: map[string]*Bot{}, rng: rng}
}

// pickName returns an unused name from the pool, or a numbered
// fallback when the pool is exhausted.
func (m *botManager) pickName(s *Session) string {
	start := m.rng.Intn(len(botNames))
	for i := 0; i < len(botNames); i++ {
		name := botNames[(start+i)%len(botNames)]
		if s.PlayerByName(name) == nil {
			return name
		}
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("Bot %d", n)
		if s.PlayerByName(name) == nil {
			return name
		}
	}
}

func (m *botManager) create(playerID string) *Bot {
	b := &Bot{PlayerID: playerID, rng: m.rng}
	m.bots[playerID] = b
	return b
}

// getOrCreate recovers a bot for a seat that was restored from a saved
// blob. Committed notes and votes stay untouched.
func (m *botManager) getOrCreate(playerID string) *Bot {
	if b, ok := m.bots[playerID]; ok {
		return b
	}
	return m.create(playerID)
}
