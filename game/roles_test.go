package game

import (
	"math/rand"
	"testing"
)

func TestDistributionSmallGame(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dist := Distribution(3, []string{"seer", "robber"}, rng)

	if len(dist) != 6 {
		t.Errorf("expected 6 cards, got %d", len(dist))
	}
	counts := map[string]int{}
	for _, id := range dist {
		counts[id]++
	}
	if counts["werewolf"] != 1 {
		t.Errorf("expected 1 werewolf below 5 players, got %d", counts["werewolf"])
	}
	if counts["seer"] != 1 || counts["robber"] != 1 {
		t.Errorf("selected roles missing: %v", counts)
	}
	if counts["villager"] != 3 {
		t.Errorf("expected 3 villager padding, got %d", counts["villager"])
	}
}

func TestDistributionWerewolfQuota(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dist := Distribution(5, nil, rng)

	counts := map[string]int{}
	for _, id := range dist {
		counts[id]++
	}
	if counts["werewolf"] != 2 {
		t.Errorf("expected 2 werewolves from 5 players, got %d", counts["werewolf"])
	}
	if len(dist) != 8 {
		t.Errorf("expected 8 cards, got %d", len(dist))
	}
}

func TestDistributionIgnoresSelectedWerewolves(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dist := Distribution(3, []string{"werewolf", "werewolf", "werewolf", "seer"}, rng)

	counts := map[string]int{}
	for _, id := range dist {
		counts[id]++
	}
	if counts["werewolf"] != 1 {
		t.Errorf("selected werewolves must not add to the quota, got %d", counts["werewolf"])
	}
}

func TestDistributionTruncatesSelection(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sel := []string{"seer", "robber", "troublemaker", "drunk", "insomniac", "minion", "tanner", "mason", "mason"}
	dist := Distribution(3, sel, rng)

	if len(dist) != 6 {
		t.Errorf("expected truncation to 6 cards, got %d", len(dist))
	}
}

func TestRolesInNightOrder(t *testing.T) {
	order := RolesInNightOrder()
	want := []string{"mason", "werewolf", "minion", "seer", "robber", "troublemaker", "drunk", "insomniac"}
	if len(order) != len(want) {
		t.Fatalf("expected %d waking roles, got %d", len(want), len(order))
	}
	for i, r := range order {
		if r.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], r.ID)
		}
	}
}

func TestRoleCapabilities(t *testing.T) {
	if !CanSwap("robber") || !CanSwap("troublemaker") || !CanSwap("drunk") {
		t.Errorf("swap roles misclassified")
	}
	if CanSwap("seer") || CanSwap("villager") {
		t.Errorf("non-swap roles misclassified")
	}
	if !CanView("seer") || !CanView("werewolf") || !CanView("insomniac") {
		t.Errorf("view roles misclassified")
	}
	if CanView("drunk") || CanView("tanner") {
		t.Errorf("non-view roles misclassified")
	}
}

func TestDefaultRoles(t *testing.T) {
	if DefaultRoles(2) != nil {
		t.Errorf("expected nil below minimum")
	}
	if got := DefaultRoles(3); len(got) != 6 {
		t.Errorf("expected 6 default roles for 3 players, got %d", len(got))
	}
	if got := DefaultRoles(10); len(got) != len(DefaultRoles(8)) {
		t.Errorf("counts above 8 should reuse the 8 player set")
	}
}

func TestRolesByTeam(t *testing.T) {
	wolves := RolesByTeam(TeamWerewolf)
	if len(wolves) != 3 {
		t.Errorf("expected werewolf, dream-wolf and minion, got %d roles", len(wolves))
	}
	if got := RolesByTeam(TeamNeutral); len(got) != 1 || got[0].ID != "tanner" {
		t.Errorf("expected only the tanner to be neutral, got %v", got)
	}
}

func TestRoleByID(t *testing.T) {
	r, ok := RoleByID("dream-wolf")
	if !ok {
		t.Fatalf("dream-wolf missing from catalog")
	}
	if r.Team != TeamWerewolf || r.Wakes() {
		t.Errorf("dream-wolf should be a sleeping werewolf, got %+v", r)
	}
	if _, ok := RoleByID("nosuch"); ok {
		t.Errorf("unknown id should not resolve")
	}
}
