package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"chefpass/internal/docstore"
	"chefpass/internal/identity/models"
	"chefpass/internal/identity/store"
	"chefpass/internal/platform/tracer"
	"chefpass/internal/sentinel"
	dErrors "chefpass/pkg/domain-errors"
)

// AssignWaitlistNumber assigns the identity its waitlist number exactly once.
//
// The counter document and the identity document are read and written inside
// a single transaction; the store's optimistic-conflict retry is the only
// mechanism guarding the counter. An identity that already has a number gets
// it back without touching the counter, so repeated calls are safe. When the
// retry budget is exhausted the call fails with CodeConflict and the caller
// must retry the whole operation.
func (s *Service) AssignWaitlistNumber(ctx context.Context, id uuid.UUID) (int, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanAssignWaitlistNumber,
		tracer.String(tracer.AttrIdentityID, id.String()),
	)

	var number int
	var assigned bool
	err := s.docs.RunTransaction(ctx, func(tx docstore.Tx) error {
		assigned = false
		identityDoc, err := tx.Get(store.CollectionIdentities, id.String())
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		if n, ok := store.Int(identityDoc, store.FieldWaitlistNumber); ok {
			number = n
			return nil
		}

		next := models.WaitlistStart
		counterDoc, err := tx.Get(store.CollectionCounters, store.CounterWaitlist)
		switch {
		case err == nil:
			// Tolerate legacy documents that stored the value as text; an
			// unparseable value falls back to the start constant.
			if n, ok := store.Int(counterDoc, store.FieldCounterValue); ok {
				next = n + 1
			}
		case errors.Is(err, sentinel.ErrNotFound):
			// First assignment ever.
		default:
			return err
		}

		tx.Set(store.CollectionCounters, store.CounterWaitlist, docstore.Document{
			store.FieldCounterValue: next,
		})
		tx.Set(store.CollectionIdentities, id.String(), docstore.Document{
			store.FieldWaitlistNumber: next,
		})
		number = next
		assigned = true
		return nil
	})
	span.SetAttributes(tracer.Int(tracer.AttrWaitlistNumber, number))
	span.End(err)
	s.metrics.ObserveAssignment(start)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.metrics.IncWaitlistConflict()
		}
		return 0, err
	}

	if assigned {
		s.metrics.IncWaitlistAssigned()
	}
	s.syncPass(ctx, id)
	return number, nil
}

// SaveEmail captures the registrant's email and, in the same transaction,
// assigns the waitlist number if one has not been assigned yet. Returns the
// waitlist number either way.
func (s *Service) SaveEmail(ctx context.Context, id uuid.UUID, email string) (int, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return 0, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}

	var number int
	var assigned bool
	err := s.docs.RunTransaction(ctx, func(tx docstore.Tx) error {
		assigned = false
		identityDoc, err := tx.Get(store.CollectionIdentities, id.String())
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}

		if n, ok := store.Int(identityDoc, store.FieldWaitlistNumber); ok {
			// Number already assigned: record the email, leave the counter alone.
			tx.Set(store.CollectionIdentities, id.String(), docstore.Document{
				store.FieldEmail:      email,
				store.FieldBetaAccess: true,
			})
			number = n
			return nil
		}

		next := models.WaitlistStart
		counterDoc, err := tx.Get(store.CollectionCounters, store.CounterWaitlist)
		switch {
		case err == nil:
			if n, ok := store.Int(counterDoc, store.FieldCounterValue); ok {
				next = n + 1
			}
		case errors.Is(err, sentinel.ErrNotFound):
		default:
			return err
		}

		tx.Set(store.CollectionCounters, store.CounterWaitlist, docstore.Document{
			store.FieldCounterValue: next,
		})
		tx.Set(store.CollectionIdentities, id.String(), docstore.Document{
			store.FieldEmail:          email,
			store.FieldBetaAccess:     true,
			store.FieldWaitlistNumber: next,
		})
		number = next
		assigned = true
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.metrics.IncWaitlistConflict()
		}
		return 0, err
	}

	if assigned {
		s.metrics.IncWaitlistAssigned()
	}
	s.syncPass(ctx, id)
	return number, nil
}
