package game

type GameError struct {
	Code string
	Msg  string
}

func (e *GameError) ErrorCode() string { return e.Code }
func (e *GameError) Error() string     { return e.Msg }

var (
	// ErrTooFewPlayers means the game cannot start below the minimum
	ErrTooFewPlayers = &GameError{"TOOFEWPLAYERS", "need at least 3 players"}
	// ErrTooManyPlayers means the room is full
	ErrTooManyPlayers = &GameError{"TOOMANYPLAYERS", "room is full"}
	// ErrNameTaken means a player with the same name already is
	ErrNameTaken = &GameError{"NAMETAKEN", "name already taken"}
	// ErrNotHost means the operation is host-only
	ErrNotHost = &GameError{"NOTHOST", "only the host can do that"}
	// ErrAlreadyStarted is only when starting twice
	ErrAlreadyStarted = &GameError{"ALREADYSTARTED", "game has already started"}
	// ErrNotStarted means the game has not started
	ErrNotStarted = &GameError{"NOTSTARTED", "game has not started"}

	// ErrWrongPhase means the operation is valid, just not now
	ErrWrongPhase = &GameError{"WRONGPHASE", "you cannot do that now"}
	// ErrNotYourTurn means the acting player's role is not awake
	ErrNotYourTurn = &GameError{"NOTYOURTURN", "it's not your turn"}
	// ErrAlreadyActed means the pending action was already resolved
	ErrAlreadyActed = &GameError{"ALREADYACTED", "you have already acted this turn"}
	// ErrBadTarget means a selection names something that doesn't exist
	ErrBadTarget = &GameError{"BADTARGET", "no such target"}
	// ErrSelfTarget means a selection names the acting player
	ErrSelfTarget = &GameError{"SELFTARGET", "you cannot target yourself"}
	// ErrBadCenterCard means a center position outside 0..2
	ErrBadCenterCard = &GameError{"BADCENTERCARD", "no such center card"}
	// ErrAlreadyVoted means the vote is already cast
	ErrAlreadyVoted = &GameError{"ALREADYVOTED", "you have already voted"}

	// ErrUnknownRole means a role id missing from the catalog
	ErrUnknownRole = &GameError{"UNKNOWNROLE", "unknown role"}
	// ErrPlayerNotFound means the player id is not in the session
	ErrPlayerNotFound = &GameError{"PLAYERNOTFOUND", "player not found"}
	// ErrSessionNotFound means no session under that room code
	ErrSessionNotFound = &GameError{"SESSIONNOTFOUND", "session not found"}
)
