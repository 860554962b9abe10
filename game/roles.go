package game

import (
	"math/rand"
	"sort"
)

// Team is the side a role wins with.
type Team string

const (
	TeamWerewolf Team = "werewolf"
	TeamVillage  Team = "village"
	TeamNeutral  Team = "neutral"
)

// NightAction is the kind of thing a role does during the night.
type NightAction string

const (
	ActionNone          NightAction = "none"
	ActionViewTeammates NightAction = "view_teammates"
	ActionViewCard      NightAction = "view_card"
	ActionSwapAndView   NightAction = "swap_and_view"
	ActionSwapOthers    NightAction = "swap_others"
	ActionSwapBlind     NightAction = "swap_blind"
	ActionCheckSelf     NightAction = "check_self"
)

// Role is one immutable catalog entry.
type Role struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Team        Team        `json:"team"`
	NightOrder  int         `json:"nightOrder"`
	NightAction NightAction `json:"nightAction"`
	// Teammates is the originalRole equivalence set revealed by
	// view_teammates. Empty for other action kinds.
	Teammates    []string `json:"-"`
	Description  string   `json:"description"`
	WinCondition string   `json:"winCondition"`
}

// Wakes reports whether the role has a night turn. NightOrder is only
// meaningful when this is true.
func (r Role) Wakes() bool {
	return r.NightAction != ActionNone
}

var roles = []Role{
	{
		ID:           "mason",
		Name:         "Mason",
		Team:         TeamVillage,
		NightOrder:   0,
		NightAction:  ActionViewTeammates,
		Teammates:    []string{"mason"},
		Description:  "You wake with the other Mason to see each other. If you are alone, the other Mason is in the center.",
		WinCondition: "At least one werewolf is killed",
	},
	{
		ID:           "werewolf",
		Name:         "Werewolf",
		Team:         TeamWerewolf,
		NightOrder:   1,
		NightAction:  ActionViewTeammates,
		Teammates:    []string{"werewolf", "dream-wolf"},
		Description:  "Avoid being voted out. During the night you wake with the other werewolves to see who your teammates are.",
		WinCondition: "No werewolves are killed in the vote",
	},
	{
		ID:           "dream-wolf",
		Name:         "Dream Wolf",
		Team:         TeamWerewolf,
		NightAction:  ActionNone,
		Description:  "You are on the werewolf team, but you sleep through the night and do not know who the other werewolves are.",
		WinCondition: "No werewolves are killed in the vote",
	},
	{
		ID:           "minion",
		Name:         "Minion",
		Team:         TeamWerewolf,
		NightOrder:   2,
		NightAction:  ActionViewTeammates,
		Teammates:    []string{"werewolf", "dream-wolf"},
		Description:  "You see who the werewolves are, but they do not see you. You win if the werewolf team wins, even if you are killed.",
		WinCondition: "Werewolf team wins",
	},
	{
		ID:           "seer",
		Name:         "Seer",
		Team:         TeamVillage,
		NightOrder:   3,
		NightAction:  ActionViewCard,
		Description:  "Look at one other player's card OR two cards from the center.",
		WinCondition: "At least one werewolf is killed",
	},
	{
		ID:           "robber",
		Name:         "Robber",
		Team:         TeamVillage,
		NightOrder:   4,
		NightAction:  ActionSwapAndView,
		Description:  "You may swap your card with another player's card, then look at your new card. Your team may change.",
		WinCondition: "Depends on final role",
	},
	{
		ID:           "troublemaker",
		Name:         "Troublemaker",
		Team:         TeamVillage,
		NightOrder:   5,
		NightAction:  ActionSwapOthers,
		Description:  "You may swap cards between two other players. They do not know their cards were swapped.",
		WinCondition: "At least one werewolf is killed",
	},
	{
		ID:           "drunk",
		Name:         "Drunk",
		Team:         TeamVillage,
		NightOrder:   6,
		NightAction:  ActionSwapBlind,
		Description:  "You must swap your card with a card from the center, but you do not look at your new card.",
		WinCondition: "Depends on final role",
	},
	{
		ID:           "insomniac",
		Name:         "Insomniac",
		Team:         TeamVillage,
		NightOrder:   7,
		NightAction:  ActionCheckSelf,
		Description:  "At the end of the night you wake up and check whether your card was swapped.",
		WinCondition: "At least one werewolf is killed",
	},
	{
		ID:           "villager",
		Name:         "Villager",
		Team:         TeamVillage,
		NightAction:  ActionNone,
		Description:  "You have no special abilities, but your vote is crucial to finding the werewolves.",
		WinCondition: "At least one werewolf is killed",
	},
	{
		ID:           "tanner",
		Name:         "Tanner",
		Team:         TeamNeutral,
		NightAction:  ActionNone,
		Description:  "You win ONLY if you are killed. You want to be voted out.",
		WinCondition: "You are killed in the vote",
	},
	{
		ID:           "hunter",
		Name:         "Hunter",
		Team:         TeamVillage,
		NightAction:  ActionNone,
		Description:  "If you are killed, the player you voted for also dies.",
		WinCondition: "At least one werewolf is killed",
	},
}

var rolesByID = func() map[string]Role {
	m := map[string]Role{}
	for _, r := range roles {
		m[r.ID] = r
	}
	return m
}()

// RoleByID looks up a catalog entry. The second return is false for an
// unknown id; there is no error case beyond that.
func RoleByID(id string) (Role, bool) {
	r, ok := rolesByID[id]
	return r, ok
}

// AllRoles returns the catalog in declaration order.
func AllRoles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// RolesByTeam filters the catalog by team.
func RolesByTeam(team Team) []Role {
	var out []Role
	for _, r := range roles {
		if r.Team == team {
			out = append(out, r)
		}
	}
	return out
}

// RolesInNightOrder returns every waking role, earliest first.
func RolesInNightOrder() []Role {
	var out []Role
	for _, r := range roles {
		if r.Wakes() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NightOrder < out[j].NightOrder })
	return out
}

// CanSwap reports whether the role moves cards around during the night.
func CanSwap(id string) bool {
	r, ok := rolesByID[id]
	if !ok {
		return false
	}
	switch r.NightAction {
	case ActionSwapAndView, ActionSwapOthers, ActionSwapBlind:
		return true
	}
	return false
}

// CanView reports whether the role learns a card during the night.
func CanView(id string) bool {
	r, ok := rolesByID[id]
	if !ok {
		return false
	}
	switch r.NightAction {
	case ActionViewTeammates, ActionViewCard, ActionSwapAndView, ActionCheckSelf:
		return true
	}
	return false
}

// defaultSelections are the recommended role selections when the host
// never picks any, keyed by player count.
var defaultSelections = map[int][]string{
	3: {"werewolf", "werewolf", "seer", "robber", "troublemaker", "villager"},
	4: {"werewolf", "werewolf", "seer", "robber", "troublemaker", "drunk", "villager"},
	5: {"werewolf", "werewolf", "seer", "robber", "troublemaker", "drunk", "insomniac", "villager"},
	6: {"werewolf", "werewolf", "minion", "seer", "robber", "troublemaker", "drunk", "insomniac", "villager"},
	7: {"werewolf", "werewolf", "minion", "seer", "robber", "troublemaker", "drunk", "insomniac", "villager", "villager"},
	8: {"werewolf", "werewolf", "minion", "seer", "robber", "troublemaker", "drunk", "insomniac", "tanner", "villager", "villager"},
}

// DefaultRoles returns the recommended selection for a player count, or
// nil below the 3 player minimum. Counts above 8 use the 8 player set.
func DefaultRoles(playerCount int) []string {
	if playerCount < MinPlayers {
		return nil
	}
	if playerCount > 8 {
		playerCount = 8
	}
	sel := defaultSelections[playerCount]
	out := make([]string, len(sel))
	copy(out, sel)
	return out
}

// Distribution builds the shuffled role list for a game: playerCount
// cards for players plus CenterCount for the middle.
//
// The werewolf quota goes in first (2 from 5 players up, else 1) so the
// werewolf team is never empty whatever the host selected. Selected
// roles follow in caller order, silently truncated at capacity, and
// villagers pad the rest. The whole list is Fisher-Yates shuffled.
func Distribution(playerCount int, selected []string, rng *rand.Rand) []string {
	total := playerCount + CenterCount
	list := make([]string, 0, total)

	quota := 1
	if playerCount >= 5 {
		quota = 2
	}
	for i := 0; i < quota; i++ {
		list = append(list, "werewolf")
	}

	for _, id := range selected {
		if id != "werewolf" && len(list) < total {
			list = append(list, id)
		}
	}

	for len(list) < total {
		list = append(list, "villager")
	}

	for i := len(list) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		list[i], list[j] = list[j], list[i]
	}

	return list
}
