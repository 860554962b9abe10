package game

// Outcome says which side won.
type Outcome string

const (
	OutcomeTanner   Outcome = "tanner"
	OutcomeVillage  Outcome = "village"
	OutcomeWerewolf Outcome = "werewolf"
)

// Result is the end-of-game summary.
type Result struct {
	Outcome    Outcome  `json:"outcome"`
	Winners    []string `json:"winners"`
	Eliminated []string `json:"eliminated"`
}

// TallyVotes counts the cast votes and returns the eliminated player
// ids: everyone tied for the highest count, in seat order. Abstentions
// don't count, and with no votes at all nobody is eliminated.
func TallyVotes(s *Session) []string {
	counts := map[string]int{}
	max := 0
	for _, p := range s.Players {
		if p.Vote == "" {
			continue
		}
		counts[p.Vote]++
		if counts[p.Vote] > max {
			max = counts[p.Vote]
		}
	}
	if max == 0 {
		return nil
	}
	var out []string
	for _, p := range s.Players {
		if counts[p.ID] == max {
			out = append(out, p.ID)
		}
	}
	return out
}

// DetermineWinners applies the win priority to an eliminated set:
// a dead tanner beats everything, then the village wins if any
// werewolf-team card died, otherwise the werewolves win. Survival is
// judged on current cards, not dealt ones.
func DetermineWinners(s *Session, eliminated []string) Result {
	dead := map[string]bool{}
	for _, id := range eliminated {
		dead[id] = true
	}

	tannerDied := false
	werewolfDied := false
	for _, p := range s.Players {
		if !dead[p.ID] {
			continue
		}
		r, ok := RoleByID(p.CurrentRole)
		if !ok {
			continue
		}
		if r.Team == TeamNeutral {
			tannerDied = true
		}
		if r.Team == TeamWerewolf {
			werewolfDied = true
		}
	}

	res := Result{Eliminated: eliminated}
	switch {
	case tannerDied:
		res.Outcome = OutcomeTanner
		for _, p := range s.Players {
			if dead[p.ID] && currentTeam(p) == TeamNeutral {
				res.Winners = append(res.Winners, p.ID)
			}
		}
	case werewolfDied:
		res.Outcome = OutcomeVillage
		for _, p := range s.Players {
			if currentTeam(p) == TeamVillage {
				res.Winners = append(res.Winners, p.ID)
			}
		}
	default:
		res.Outcome = OutcomeWerewolf
		for _, p := range s.Players {
			if currentTeam(p) == TeamWerewolf {
				res.Winners = append(res.Winners, p.ID)
			}
		}
	}
	return res
}

func currentTeam(p *Player) Team {
	r, ok := RoleByID(p.CurrentRole)
	if !ok {
		return ""
	}
	return r.Team
}
