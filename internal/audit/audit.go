// Package audit captures structured audit events for print-workflow
// transitions and other privileged actions. Events are append-only; the
// storage layer is pluggable so tests can swap sinks easily.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event records a single audited action.
type Event struct {
	Timestamp  time.Time
	IdentityID string
	JobID      string
	Actor      string
	Action     string
	Outcome    string
}

// Actions recorded by the print workflow.
const (
	ActionPrintRequested = "print_requested"
	ActionPrintApproved  = "print_approved"
	ActionPrintDenied    = "print_denied"
	ActionPrintCompleted = "print_completed"
)

// Outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByIdentity(ctx context.Context, identityID string) ([]Event, error)
}

// InMemoryStore keeps events in memory, grouped by identity.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.IdentityID] = append(s.events[event.IdentityID], event)
	return nil
}

func (s *InMemoryStore) ListByIdentity(_ context.Context, identityID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[identityID]...), nil
}

// Publisher emits audit events to a store, optionally through an async
// buffer so the hot path never blocks on the sink.
type Publisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the given buffer size.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			if p.logger != nil {
				p.logger.Error("failed to persist audit event",
					"error", err,
					"action", event.Action,
					"identity_id", event.IdentityID,
				)
			}
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit records an event. In async mode the send is non-blocking; events are
// dropped (and logged) when the buffer is full rather than stalling callers.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if p.async {
		select {
		case p.events <- event:
			return nil
		default:
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", event.Action,
					"identity_id", event.IdentityID,
				)
			}
			return nil
		}
	}
	return p.store.Append(ctx, event)
}

// List returns the audit trail for an identity.
func (p *Publisher) List(ctx context.Context, identityID string) ([]Event, error) {
	return p.store.ListByIdentity(ctx, identityID)
}
