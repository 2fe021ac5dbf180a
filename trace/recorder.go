// Package trace provides observers for the derivation steps emitted by the
// bond engine.
package trace

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meenmo/bondcalc/bond"
)

// Entry is a recorded step with its position and capture time.
type Entry struct {
	Seq  int
	At   time.Time
	Step bond.Step
}

// Session is the audit log of one calculation.
type Session struct {
	ID        uuid.UUID
	Name      string
	StartedAt time.Time
	Entries   []Entry
}

// Recorder is an append-only, in-memory Tracer. Use one Recorder per
// calculation.
type Recorder struct {
	mu      sync.Mutex
	now     func() time.Time
	session Session
}

// NewRecorder starts a session labelled name.
func NewRecorder(name string) *Recorder {
	return newRecorder(name, time.Now)
}

func newRecorder(name string, now func() time.Time) *Recorder {
	return &Recorder{
		now: now,
		session: Session{
			ID:        uuid.New(),
			Name:      name,
			StartedAt: now(),
		},
	}
}

var _ bond.Tracer = (*Recorder)(nil)

// Record appends s to the session.
func (r *Recorder) Record(s bond.Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.Entries = append(r.session.Entries, Entry{
		Seq:  len(r.session.Entries) + 1,
		At:   r.now(),
		Step: s,
	})
}

// Session returns a snapshot of the recorded session.
func (r *Recorder) Session() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.session
	out.Entries = append([]Entry(nil), r.session.Entries...)
	return out
}

// Steps returns the recorded steps in order.
func (r *Recorder) Steps() []bond.Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bond.Step, len(r.session.Entries))
	for i, e := range r.session.Entries {
		out[i] = e.Step
	}
	return out
}

// Find returns the first recorded step with the given name.
func (r *Recorder) Find(name string) (bond.Step, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.session.Entries {
		if e.Step.Name == name {
			return e.Step, true
		}
	}
	return bond.Step{}, false
}

// Multi fans every step out to each non-nil tracer in order.
func Multi(tracers ...bond.Tracer) bond.Tracer {
	live := make([]bond.Tracer, 0, len(tracers))
	for _, t := range tracers {
		if t != nil {
			live = append(live, t)
		}
	}
	return bond.TracerFunc(func(s bond.Step) {
		for _, t := range live {
			t.Record(s)
		}
	})
}
