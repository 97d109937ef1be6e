package ai

// StateID identifies an AI FSM state.
type StateID string

// EventID identifies an AI FSM event.
type EventID string

const (
	StateAim          StateID = "aim"
	StateAdvance      StateID = "advance"
	StateRetreat      StateID = "retreat"
	StateStrafeLeft   StateID = "strafe_left"
	StateStrafeRight  StateID = "strafe_right"
	StateRecoverLeft  StateID = "recover_left"
	StateRecoverRight StateID = "recover_right"
)

const (
	EventTimerExpired EventID = "timer_expired"
	EventCollided     EventID = "collided"
)

var knownEvents = map[EventID]bool{
	EventTimerExpired: true,
	EventCollided:     true,
}

// Command is what a machine asks of the tank it drives for one tick.
// Drive and Turn are fractions of the tank's configured speed and
// rotation speed.
type Command struct {
	State       StateID
	Drive       float64
	Turn        float64
	AimAtTarget bool
	Fire        bool
}
