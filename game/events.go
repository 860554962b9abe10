package game

// EventType says what kind of thing happened.
type EventType string

const (
	EventPhase     EventType = "phase"
	EventRoleWake  EventType = "role_wake"
	EventRoleSleep EventType = "role_sleep"
	EventGameEnd   EventType = "game_end"
)

// Event is one item on the narrator stream. Narration is the line a
// narrator collaborator would speak; clients that render their own UI
// can ignore it.
type Event struct {
	Type      EventType `json:"type"`
	Phase     Phase     `json:"phase,omitempty"`
	Role      string    `json:"role,omitempty"`
	Narration string    `json:"narration,omitempty"`
}

func phaseEvent(phase Phase) Event {
	return Event{Type: EventPhase, Phase: phase, Narration: phaseNarration[phase]}
}

func wakeEvent(role Role) Event {
	return Event{Type: EventRoleWake, Phase: PhaseNight, Role: role.ID, Narration: role.Name + ", wake up."}
}

func sleepEvent(role Role) Event {
	return Event{Type: EventRoleSleep, Phase: PhaseNight, Role: role.ID, Narration: role.Name + ", close your eyes."}
}

var phaseNarration = map[Phase]string{
	PhaseNight:   "Night falls. Everyone close your eyes.",
	PhaseDay:     "The sun rises. Everyone open your eyes and discuss.",
	PhaseVoting:  "Time is up. Point at the player you want to eliminate.",
	PhaseResults: "The votes are in.",
}
