package game

import (
	"math/rand"
	"testing"
)

func TestBotSeerPolicy(t *testing.T) {
	s := dealtSession("seer", "villager", "villager", "villager", "villager", "villager")
	b := &Bot{PlayerID: "Ann", rng: rand.New(rand.NewSource(1))}
	role, _ := RoleByID("seer")

	players := 0
	centers := 0
	for i := 0; i < 200; i++ {
		sel := b.ChooseNightAction(role, s.Players[0], s)
		switch {
		case len(sel.PlayerIDs) == 1:
			if sel.PlayerIDs[0] == "Ann" {
				t.Fatalf("bot targeted itself")
			}
			players++
		case len(sel.CenterPositions) == 2:
			if sel.CenterPositions[0] != 0 || sel.CenterPositions[1] != 1 {
				t.Fatalf("bot should view the first two centers, got %v", sel.CenterPositions)
			}
			centers++
		default:
			t.Fatalf("unexpected selection %+v", sel)
		}
	}
	if players == 0 || centers == 0 {
		t.Errorf("seer bot should mix targets: %d players, %d centers", players, centers)
	}
}

func TestBotRobberAlwaysSwaps(t *testing.T) {
	s := dealtSession("robber", "villager", "villager", "villager", "villager", "villager")
	b := &Bot{PlayerID: "Ann", rng: rand.New(rand.NewSource(1))}
	role, _ := RoleByID("robber")

	for i := 0; i < 50; i++ {
		sel := b.ChooseNightAction(role, s.Players[0], s)
		if sel.Decline || len(sel.PlayerIDs) != 1 || sel.PlayerIDs[0] == "Ann" {
			t.Fatalf("robber bot must swap with someone else, got %+v", sel)
		}
	}
}

func TestBotTroublemakerPicksTwoDistinct(t *testing.T) {
	s := dealtSession("troublemaker", "villager", "villager", "villager", "villager", "villager", "villager", "villager")
	b := &Bot{PlayerID: "Ann", rng: rand.New(rand.NewSource(1))}
	role, _ := RoleByID("troublemaker")

	for i := 0; i < 50; i++ {
		sel := b.ChooseNightAction(role, s.Players[0], s)
		if len(sel.PlayerIDs) != 2 {
			t.Fatalf("expected two targets, got %+v", sel)
		}
		if sel.PlayerIDs[0] == sel.PlayerIDs[1] {
			t.Fatalf("targets must differ")
		}
		if sel.PlayerIDs[0] == "Ann" || sel.PlayerIDs[1] == "Ann" {
			t.Fatalf("troublemaker bot targeted itself")
		}
	}
}

func TestBotWerewolfVoteBias(t *testing.T) {
	s := dealtSession("werewolf", "dream-wolf", "villager", "villager", "villager", "villager", "villager", "villager")
	b := &Bot{PlayerID: "Ann", rng: rand.New(rand.NewSource(1))}

	for i := 0; i < 100; i++ {
		target := b.ChooseVote(s.Players[0], s)
		if target == "Ben" {
			t.Fatalf("werewolf bot voted for a teammate")
		}
		if target == "Ann" || target == "" {
			t.Fatalf("bad vote target %q", target)
		}
	}
}

func TestBotWerewolfMayVoteMinion(t *testing.T) {
	s := dealtSession("werewolf", "dream-wolf", "minion", "villager", "villager", "villager", "villager", "villager")
	b := &Bot{PlayerID: "Ann", rng: rand.New(rand.NewSource(1))}

	targets := map[string]bool{}
	for i := 0; i < 200; i++ {
		target := b.ChooseVote(s.Players[0], s)
		if target == "Ben" {
			t.Fatalf("werewolf bot voted for a werewolf card holder")
		}
		targets[target] = true
	}
	// only werewolf cards are shielded, the minion holder is not
	if !targets["Cat"] {
		t.Errorf("minion holder never targeted: %v", targets)
	}
	if !targets["Dan"] || !targets["Eli"] {
		t.Errorf("villagers should be targeted too: %v", targets)
	}
}

func TestBotVillagerVotesAnyone(t *testing.T) {
	s := dealtSession("villager", "werewolf", "villager", "villager", "villager", "villager")
	b := &Bot{PlayerID: "Ann", rng: rand.New(rand.NewSource(1))}

	targets := map[string]bool{}
	for i := 0; i < 100; i++ {
		targets[b.ChooseVote(s.Players[0], s)] = true
	}
	if len(targets) < 2 {
		t.Errorf("villager bot should spread votes, got %v", targets)
	}
}

func TestBotNamePool(t *testing.T) {
	m := newBotManager(rand.New(rand.NewSource(1)))
	s := &Session{}
	seen := map[string]bool{}
	for i := 0; i < len(botNames)+3; i++ {
		name := m.pickName(s)
		if seen[name] {
			t.Fatalf("duplicate name %q", name)
		}
		seen[name] = true
		s.Players = append(s.Players, &Player{ID: name, Name: name, IsBot: true})
	}
}
