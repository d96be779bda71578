package auth

import "fmt"

// State is a login state.
type State int

const (
	AwaitingCredentials State = iota
	Submitted
	Authenticated
	Rejected
)

func (s State) String() string {
	switch s {
	case AwaitingCredentials:
		return "awaiting_credentials"
	case Submitted:
		return "submitted"
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event moves the machine between states.
type Event int

const (
	EventSubmit Event = iota
	EventAccepted
	EventRejected
	EventRetry
)

// Machine tracks login progress and the number of submissions made.
type Machine struct {
	state       State
	submissions int
	max         int
}

// NewMachine returns a machine that allows at most maxAttempts submissions.
func NewMachine(maxAttempts int) *Machine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Machine{state: AwaitingCredentials, max: maxAttempts}
}

// State reports the current state.
func (m *Machine) State() State { return m.state }

// Submissions reports how many credential sets were submitted.
func (m *Machine) Submissions() int { return m.submissions }

// CanSubmit reports whether another submission is allowed.
func (m *Machine) CanSubmit() bool {
	return m.state == AwaitingCredentials && m.submissions < m.max
}

// Fire applies ev, returning an error for transitions the machine does not
// allow.
func (m *Machine) Fire(ev Event) error {
	next, ok := transition(m.state, ev)
	if !ok {
		return fmt.Errorf("login: event %d not allowed in state %s", ev, m.state)
	}
	if ev == EventSubmit {
		if m.submissions >= m.max {
			return fmt.Errorf("login: %d attempts exhausted", m.max)
		}
		m.submissions++
	}
	m.state = next
	return nil
}

func transition(from State, ev Event) (State, bool) {
	switch {
	case from == AwaitingCredentials && ev == EventSubmit:
		return Submitted, true
	case from == Submitted && ev == EventAccepted:
		return Authenticated, true
	case from == Submitted && ev == EventRejected:
		return Rejected, true
	case from == Rejected && ev == EventRetry:
		return AwaitingCredentials, true
	default:
		return from, false
	}
}
