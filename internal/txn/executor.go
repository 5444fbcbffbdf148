// Package txn runs protocol operations one at a time with all-or-nothing effects.
//
// Every participant hands out a checkpoint before an operation starts. When the
// operation fails, panics or its events cannot be persisted, the checkpoints are
// restored in reverse order and the buffered events are dropped.
package txn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stablevault/core"
	"stablevault/pkg/id"

	"github.com/fox-one/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Participant component whose in-memory state takes part in rollbacks
type Participant interface {
	// Checkpoint captures the current state and returns a func restoring it
	Checkpoint() func()
}

// Observer receives every finished operation
type Observer interface {
	Observe(op string, dur time.Duration, err error, events []*core.Event)
}

// Executor serialized operation runner
type Executor struct {
	mu           sync.RWMutex
	clock        core.Clock
	events       core.IEventStore
	observer     Observer
	participants []Participant
	seq          uint64
}

// New executor, events may be nil when nothing needs persisting
func New(clock core.Clock, events core.IEventStore, participants ...Participant) *Executor {
	if clock == nil {
		clock = core.SystemClock
	}

	return &Executor{
		clock:        clock,
		events:       events,
		participants: participants,
	}
}

// WithObserver attaches an observer
func (e *Executor) WithObserver(o Observer) *Executor {
	e.observer = o
	return e
}

// Register adds participants
func (e *Executor) Register(participants ...Participant) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.participants = append(e.participants, participants...)
}

// Clock time source of the executor
func (e *Executor) Clock() core.Clock {
	return e.clock
}

// Do runs fn exclusively, with one pinned block time and an event buffer on ctx
func (e *Executor) Do(ctx context.Context, op string, fn func(ctx context.Context) error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	now := e.clock.Now()
	e.seq++
	traceID := id.TraceID(op, now, e.seq)

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":    op,
		"trace": traceID,
	})
	ctx = logger.WithContext(ctx, log)
	ctx = core.WithBlockTime(ctx, now)

	buf := &core.EventBuffer{}
	ctx = core.WithEventSink(ctx, buf)

	restores := make([]func(), 0, len(e.participants))
	for _, p := range e.participants {
		restores = append(restores, p.Checkpoint())
	}

	rollback := func() {
		for idx := len(restores) - 1; idx >= 0; idx-- {
			restores[idx]()
		}
	}

	defer func() {
		if r := recover(); r != nil {
			rollback()
			buf.Events = nil
			err = fmt.Errorf("%s: panic: %v", op, r)
			log.WithError(err).Errorln("txn.Do")
		}

		if e.observer != nil {
			e.observer.Observe(op, time.Since(started), err, buf.Events)
		}
	}()

	if err = fn(ctx); err != nil {
		rollback()
		buf.Events = nil
		if core.KindOf(err) == core.KindUnknown {
			log.WithError(err).Errorln("txn.Do")
		} else {
			log.WithError(err).Debugln("txn.Do: rejected")
		}

		return err
	}

	for _, ev := range buf.Events {
		ev.TraceID = traceID
		ev.Op = op
		if ev.Category == core.EventCategoryBackstop {
			log.WithField("vault", ev.Vault).Warnln("backstop:", ev.Kind)
		}
	}

	if len(buf.Events) > 0 && e.events != nil {
		if err = e.events.Append(ctx, buf.Events); err != nil {
			rollback()
			buf.Events = nil
			log.WithError(err).Errorln("events.Append")
			return fmt.Errorf("append events: %w", err)
		}
	}

	return nil
}

// View runs fn under the shared lock with a pinned block time, fn must not mutate
func (e *Executor) View(ctx context.Context, fn func(ctx context.Context) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return fn(core.WithBlockTime(ctx, e.clock.Now()))
}
