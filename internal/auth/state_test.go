package auth_test

import (
	"testing"

	"panograb/internal/auth"
)

func TestMachineHappyPath(t *testing.T) {
	m := auth.NewMachine(3)
	if m.State() != auth.AwaitingCredentials {
		t.Fatalf("unexpected initial state %s", m.State())
	}
	for _, ev := range []auth.Event{auth.EventSubmit, auth.EventAccepted} {
		if err := m.Fire(ev); err != nil {
			t.Fatalf("Fire(%d) returned error: %v", ev, err)
		}
	}
	if m.State() != auth.Authenticated || m.Submissions() != 1 {
		t.Fatalf("unexpected end state %s after %d submissions", m.State(), m.Submissions())
	}
}

func TestMachineLoopsOnlyOnRejection(t *testing.T) {
	m := auth.NewMachine(2)
	steps := []auth.Event{auth.EventSubmit, auth.EventRejected, auth.EventRetry, auth.EventSubmit, auth.EventRejected, auth.EventRetry}
	for _, ev := range steps {
		if err := m.Fire(ev); err != nil {
			t.Fatalf("Fire(%d) returned error: %v", ev, err)
		}
	}
	if m.CanSubmit() {
		t.Fatal("expected attempt cap to block further submissions")
	}
	if err := m.Fire(auth.EventSubmit); err == nil {
		t.Fatal("expected submission beyond cap to fail")
	}
}

func TestMachineRejectsInvalidTransitions(t *testing.T) {
	m := auth.NewMachine(3)
	if err := m.Fire(auth.EventAccepted); err == nil {
		t.Fatal("accepted without submission should fail")
	}
	if err := m.Fire(auth.EventRetry); err == nil {
		t.Fatal("retry without rejection should fail")
	}
	_ = m.Fire(auth.EventSubmit)
	_ = m.Fire(auth.EventAccepted)
	if err := m.Fire(auth.EventRejected); err == nil {
		t.Fatal("authenticated is terminal")
	}
}
