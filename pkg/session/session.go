// Package session drives the connect, work, close lifecycle shared by the
// generator and the reader.
package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/store"
)

// State is a step of the session lifecycle
type State string

const (
	StateStart      State = "start"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateWorking    State = "working"
	StateClosed     State = "closed"
	StateFailed     State = "failed"
	StateTerminated State = "terminated"
)

// Opener acquires the store connection
type Opener func(ctx context.Context) (store.ReadingStore, error)

// Work runs against an open store. It handles its own per-operation errors.
type Work func(ctx context.Context, s store.ReadingStore)

// Session records the states a run went through
type Session struct {
	name    string
	history []State
	log     *logrus.Entry
}

// New creates a session in the start state
func New(name string) *Session {
	s := &Session{
		name: name,
		log:  logrus.WithField("component", name),
	}
	s.transition(StateStart)
	return s
}

// State returns the current state
func (s *Session) State() State {
	return s.history[len(s.history)-1]
}

// History returns every state visited, in order
func (s *Session) History() []State {
	out := make([]State, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) transition(next State) {
	s.history = append(s.history, next)
	s.log.Debugf("Session state: %s", next)
}

// Run opens the store, runs work and always closes the store afterwards.
// A failed open is reported and returned wrapped in store.ErrConnection;
// work is not called in that case.
func (s *Session) Run(ctx context.Context, open Opener, work Work) error {
	s.transition(StateConnecting)

	st, err := open(ctx)
	if err != nil {
		s.transition(StateFailed)
		s.log.Errorf("Error connecting to store: %v", err)
		s.transition(StateTerminated)
		return fmt.Errorf("%s: %w: %w", s.name, store.ErrConnection, err)
	}
	s.transition(StateConnected)

	defer func() {
		if err := st.Close(); err != nil {
			s.log.Warnf("Error closing store: %v", err)
		}
		s.transition(StateClosed)
	}()

	s.transition(StateWorking)
	work(ctx, st)
	return nil
}

// Run is a shorthand for New(name).Run
func Run(ctx context.Context, name string, open Opener, work Work) error {
	return New(name).Run(ctx, open, work)
}
