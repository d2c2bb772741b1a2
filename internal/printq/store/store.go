// Package store maps print job documents onto the document store.
package store

import (
	"context"

	"github.com/google/uuid"

	"chefpass/internal/docstore"
	identitystore "chefpass/internal/identity/store"
	"chefpass/internal/printq/models"
)

const CollectionPrintJobs = "printJobs"

// Print job document fields.
const (
	FieldOwnerID        = "uid"
	FieldDisplayName    = "displayName"
	FieldEmail          = "email"
	FieldCategory       = "chefType"
	FieldWaitlistNumber = "waitlistNumber"
	FieldPassURL        = "qrUrl"
	FieldRequestedVia   = "requestedVia"
	FieldStatus         = "status"
	FieldRequestedAt    = "requestedAt"
	FieldApprovedAt     = "approvedAt"
	FieldApprovedBy     = "approvedBy"
	FieldDeniedAt       = "deniedAt"
	FieldDeniedBy       = "deniedBy"
	FieldPrintedAt      = "printedAt"
)

// Store provides typed access to print job documents.
type Store struct {
	docs docstore.Store
}

func New(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

// Find retrieves a job, or an error wrapping sentinel.ErrNotFound.
func (s *Store) Find(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	doc, err := s.docs.Get(ctx, CollectionPrintJobs, id.String())
	if err != nil {
		return nil, err
	}
	return fromDocument(id, doc), nil
}

// Patch merge-writes the given fields onto the job document.
func (s *Store) Patch(ctx context.Context, id uuid.UUID, partial docstore.Document) error {
	return s.docs.MergeWrite(ctx, CollectionPrintJobs, id.String(), partial)
}

func fromDocument(id uuid.UUID, doc docstore.Document) *models.Job {
	job := &models.Job{
		ID:           id,
		OwnerID:      id,
		DisplayName:  str(doc, FieldDisplayName),
		Email:        str(doc, FieldEmail),
		Category:     str(doc, FieldCategory),
		PassURL:      str(doc, FieldPassURL),
		RequestedVia: str(doc, FieldRequestedVia),
		Status:       models.Status(str(doc, FieldStatus)),
		ApprovedBy:   str(doc, FieldApprovedBy),
		DeniedBy:     str(doc, FieldDeniedBy),
	}
	if owner, err := uuid.Parse(str(doc, FieldOwnerID)); err == nil {
		job.OwnerID = owner
	}
	if n, ok := identitystore.Int(doc, FieldWaitlistNumber); ok {
		job.WaitlistNumber = &n
	}
	if t, ok := docstore.Time(doc, FieldRequestedAt); ok {
		job.RequestedAt = t
	}
	if t, ok := docstore.Time(doc, FieldApprovedAt); ok {
		job.ApprovedAt = t
	}
	if t, ok := docstore.Time(doc, FieldDeniedAt); ok {
		job.DeniedAt = t
	}
	if t, ok := docstore.Time(doc, FieldPrintedAt); ok {
		job.PrintedAt = t
	}
	if t, ok := docstore.Time(doc, docstore.FieldCreatedAt); ok {
		job.CreatedAt = t
	}
	if t, ok := docstore.Time(doc, docstore.FieldUpdatedAt); ok {
		job.UpdatedAt = t
	}
	return job
}

func str(doc docstore.Document, field string) string {
	if v, ok := doc[field].(string); ok {
		return v
	}
	return ""
}
