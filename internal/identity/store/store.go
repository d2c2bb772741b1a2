// Package store maps identity records onto the document store. Field names
// follow the stored document schema, which predates this service and is
// shared with the client that reads it.
package store

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"chefpass/internal/docstore"
	"chefpass/internal/identity/models"
)

// Collections and singleton document keys.
const (
	CollectionIdentities = "identities"
	CollectionCounters   = "counters"
	CounterWaitlist      = "waitlist"
)

// Identity document fields.
const (
	FieldDisplayName    = "displayName"
	FieldEmail          = "email"
	FieldCategory       = "chefType"
	FieldWantsGigs      = "wantsGigs"
	FieldWantsSell      = "wantsSell"
	FieldFarmConnect    = "chefFarmerConnect"
	FieldWaitlistNumber = "waitlistNumber"
	FieldPassToken      = "qrSlug"
	FieldPassURL        = "qrUrl"
	FieldPrintStatus    = "printStatus"
	FieldPrintedBadge   = "printedCard"
	FieldWelcomeDone    = "welcomeComplete"
	FieldBetaAccess     = "betaAccess"

	FieldPrintRequestedAt = "printRequestedAt"
	FieldPrintApprovedAt  = "printApprovedAt"
	FieldPrintDeniedAt    = "printDeniedAt"
	FieldPrintedAt        = "printedAt"
	FieldApprovedBy       = "approvedBy"
	FieldDeniedBy         = "deniedBy"
)

// Counter document fields.
const FieldCounterValue = "value"

// Store provides typed access to identity documents.
type Store struct {
	docs docstore.Store
}

func New(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

// Find retrieves an identity, or an error wrapping sentinel.ErrNotFound.
func (s *Store) Find(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	doc, err := s.docs.Get(ctx, CollectionIdentities, id.String())
	if err != nil {
		return nil, err
	}
	return FromDocument(id, doc), nil
}

// Patch merge-writes the given fields onto the identity document.
func (s *Store) Patch(ctx context.Context, id uuid.UUID, partial docstore.Document) error {
	return s.docs.MergeWrite(ctx, CollectionIdentities, id.String(), partial)
}

// FromDocument converts a stored document into a typed identity. Parsing is
// tolerant: documents written by older clients may carry numbers as strings.
func FromDocument(id uuid.UUID, doc docstore.Document) *models.Identity {
	ident := &models.Identity{
		ID:           id,
		DisplayName:  str(doc, FieldDisplayName),
		Email:        str(doc, FieldEmail),
		Category:     models.Category(str(doc, FieldCategory)),
		WantsGigs:    boolean(doc, FieldWantsGigs),
		WantsSell:    boolean(doc, FieldWantsSell),
		FarmConnect:  boolean(doc, FieldFarmConnect),
		PassToken:    str(doc, FieldPassToken),
		PassURL:      str(doc, FieldPassURL),
		PrintStatus:  models.PrintStatus(str(doc, FieldPrintStatus)),
		PrintedBadge: boolean(doc, FieldPrintedBadge),
		WelcomeDone:  boolean(doc, FieldWelcomeDone),
		BetaAccess:   boolean(doc, FieldBetaAccess),
		ApprovedBy:   str(doc, FieldApprovedBy),
		DeniedBy:     str(doc, FieldDeniedBy),
	}
	if n, ok := Int(doc, FieldWaitlistNumber); ok {
		ident.WaitlistNumber = &n
	}
	if t, ok := docstore.Time(doc, docstore.FieldCreatedAt); ok {
		ident.CreatedAt = t
	}
	if t, ok := docstore.Time(doc, docstore.FieldUpdatedAt); ok {
		ident.UpdatedAt = t
	}
	return ident
}

// Int reads a numeric field, tolerating int, int64, float64, and numeric
// strings (legacy counter documents stored the value as text).
func Int(doc docstore.Document, field string) (int, bool) {
	switch v := doc[field].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func str(doc docstore.Document, field string) string {
	if v, ok := doc[field].(string); ok {
		return v
	}
	return ""
}

func boolean(doc docstore.Document, field string) bool {
	v, ok := doc[field].(bool)
	return ok && v
}
