package game

import (
	"fmt"
	"strings"
	"time"
)

// Selection is what an acting player submits for a night turn. Exactly
// one of the fields is meaningful for any given action; Decline skips
// an optional action outright.
type Selection struct {
	PlayerIDs       []string `json:"playerIds,omitempty"`
	CenterPositions []int    `json:"centerPositions,omitempty"`
	Decline         bool     `json:"decline,omitempty"`
}

// TurnState describes the turn the night engine is waiting on.
type TurnState struct {
	Role     string      `json:"role"`
	Action   NightAction `json:"action"`
	Waiting  []string    `json:"waiting"`
	Deadline time.Time   `json:"deadline,omitempty"`
}

// resolveTeammates is the whole view_teammates action: look up the
// other players whose dealt card is in the role's equivalence set and
// write the note. Runs without player input.
func resolveTeammates(role Role, actor *Player, s *Session) string {
	member := false
	for _, id := range role.Teammates {
		if id == actor.OriginalRole {
			member = true
		}
	}

	var names []string
	for _, p := range s.Players {
		if p.ID == actor.ID {
			continue
		}
		for _, id := range role.Teammates {
			if p.OriginalRole == id {
				names = append(names, p.Name)
				break
			}
		}
	}

	if member {
		if len(names) == 0 {
			return "You are the only " + role.Name + "."
		}
		return "Other " + pluralRoleName(role.Name) + ": " + strings.Join(names, ", ")
	}
	if len(names) == 0 {
		return "No Werewolves found (all in center)."
	}
	return "Werewolves are: " + strings.Join(names, ", ")
}

// resolveCheckSelf is the whole check_self action: compare the dealt
// card against the current one.
func resolveCheckSelf(actor *Player) string {
	cur := roleName(actor.CurrentRole)
	if actor.CurrentRole == actor.OriginalRole {
		return "Still " + cur + " (not swapped)."
	}
	return "Card was swapped! Now: " + cur
}

// applySelection validates and applies a submitted selection, returning
// the note for the actor. An error means the selection was rejected and
// the turn is still open; a returned note means the action resolved.
func applySelection(s *Session, role Role, actor *Player, sel Selection) (string, error) {
	if sel.Decline {
		return declineNote(role.NightAction), nil
	}

	switch role.NightAction {
	case ActionViewCard:
		return applyViewCard(s, actor, sel)
	case ActionSwapAndView:
		return applySwapAndView(s, actor, sel)
	case ActionSwapOthers:
		return applySwapOthers(s, actor, sel)
	case ActionSwapBlind:
		return applySwapBlind(s, actor, sel)
	}
	return "", ErrWrongPhase
}

// applyViewCard handles the seer's choice: exactly one other player or
// exactly two center cards. Anything short of either shape counts as
// declining. What gets revealed is the dealt card, not a live value, so
// later swaps never retroactively change the note.
func applyViewCard(s *Session, actor *Player, sel Selection) (string, error) {
	if len(sel.PlayerIDs) == 1 && len(sel.CenterPositions) == 0 {
		target := s.PlayerByID(sel.PlayerIDs[0])
		if target == nil {
			return "", ErrBadTarget
		}
		if target.ID == actor.ID {
			return "", ErrSelfTarget
		}
		return fmt.Sprintf("Viewed %s: %s", target.Name, roleName(target.OriginalRole)), nil
	}
	if len(sel.PlayerIDs) == 0 && len(sel.CenterPositions) == 2 {
		a, b := sel.CenterPositions[0], sel.CenterPositions[1]
		if a < 0 || a >= len(s.CenterCards) || b < 0 || b >= len(s.CenterCards) || a == b {
			return "", ErrBadCenterCard
		}
		return fmt.Sprintf("Viewed Center %d: %s, Center %d: %s",
			a+1, roleName(s.CenterCards[a].OriginalRole),
			b+1, roleName(s.CenterCards[b].OriginalRole)), nil
	}
	return declineNote(ActionViewCard), nil
}

func applySwapAndView(s *Session, actor *Player, sel Selection) (string, error) {
	if len(sel.PlayerIDs) != 1 || len(sel.CenterPositions) != 0 {
		return "", ErrBadTarget
	}
	target := s.PlayerByID(sel.PlayerIDs[0])
	if target == nil {
		return "", ErrBadTarget
	}
	if target.ID == actor.ID {
		return "", ErrSelfTarget
	}
	if err := s.SwapPlayerRoles(actor.ID, target.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Swapped with %s. Now: %s", target.Name, roleName(actor.CurrentRole)), nil
}

func applySwapOthers(s *Session, actor *Player, sel Selection) (string, error) {
	if len(sel.PlayerIDs) != 2 || len(sel.CenterPositions) != 0 {
		return "", ErrBadTarget
	}
	a := s.PlayerByID(sel.PlayerIDs[0])
	b := s.PlayerByID(sel.PlayerIDs[1])
	if a == nil || b == nil || a.ID == b.ID {
		return "", ErrBadTarget
	}
	if a.ID == actor.ID || b.ID == actor.ID {
		return "", ErrSelfTarget
	}
	if err := s.SwapPlayerRoles(a.ID, b.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Swapped %s and %s.", a.Name, b.Name), nil
}

func applySwapBlind(s *Session, actor *Player, sel Selection) (string, error) {
	if len(sel.CenterPositions) != 1 || len(sel.PlayerIDs) != 0 {
		return "", ErrBadCenterCard
	}
	pos := sel.CenterPositions[0]
	if err := s.SwapWithCenter(actor.ID, pos); err != nil {
		return "", err
	}
	return fmt.Sprintf("Swapped with Center %d (don't know new role).", pos+1), nil
}

func declineNote(action NightAction) string {
	switch action {
	case ActionViewCard:
		return "Did not view any cards."
	case ActionSwapAndView:
		return "Did not swap with anyone."
	case ActionSwapOthers:
		return "Did not swap any cards."
	case ActionSwapBlind:
		return "Did not swap with any center card."
	}
	return "No action taken."
}

func roleName(id string) string {
	if r, ok := RoleByID(id); ok {
		return r.Name
	}
	return id
}

func pluralRoleName(name string) string {
	if strings.HasSuffix(name, "f") {
		return strings.TrimSuffix(name, "f") + "ves"
	}
	return name + "s"
}
