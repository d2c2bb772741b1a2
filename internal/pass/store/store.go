// Package store maps public pass documents onto the document store, keyed by
// the minted token.
package store

import (
	"context"
	"errors"

	"chefpass/internal/docstore"
	identitystore "chefpass/internal/identity/store"
	"chefpass/internal/pass/models"
	"chefpass/internal/sentinel"
)

const CollectionPasses = "passes"

// Pass document fields. The schema is shared with the client rendering the
// public page, so names match the identity document where they overlap.
const (
	FieldDisplayName    = "displayName"
	FieldCategory       = "chefType"
	FieldEmail          = "email"
	FieldWaitlistNumber = "waitlistNumber"
	FieldWantsGigs      = "wantsGigs"
	FieldWantsSell      = "wantsSell"
	FieldFarmConnect    = "chefFarmerConnect"
)

// Store provides typed access to pass documents.
type Store struct {
	docs docstore.Store
}

func New(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

// Find retrieves a public pass by token, or an error wrapping
// sentinel.ErrNotFound.
func (s *Store) Find(ctx context.Context, token string) (*models.PublicPass, error) {
	doc, err := s.docs.Get(ctx, CollectionPasses, token)
	if err != nil {
		return nil, err
	}
	return fromDocument(doc), nil
}

// Exists reports whether a pass document is already stored at the token.
func (s *Store) Exists(ctx context.Context, token string) (bool, error) {
	_, err := s.docs.Get(ctx, CollectionPasses, token)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Publish merge-writes the projection at the token. The store preserves the
// document's original createdAt, so republishing never resets it.
func (s *Store) Publish(ctx context.Context, token string, projection docstore.Document) error {
	return s.docs.MergeWrite(ctx, CollectionPasses, token, projection)
}

func fromDocument(doc docstore.Document) *models.PublicPass {
	pass := &models.PublicPass{
		DisplayName: str(doc, FieldDisplayName),
		Category:    str(doc, FieldCategory),
		Email:       str(doc, FieldEmail),
		WantsGigs:   boolean(doc, FieldWantsGigs),
		WantsSell:   boolean(doc, FieldWantsSell),
		FarmConnect: boolean(doc, FieldFarmConnect),
	}
	if n, ok := identitystore.Int(doc, FieldWaitlistNumber); ok {
		pass.WaitlistNumber = &n
	}
	if t, ok := docstore.Time(doc, docstore.FieldCreatedAt); ok {
		pass.CreatedAt = t
	}
	if t, ok := docstore.Time(doc, docstore.FieldUpdatedAt); ok {
		pass.UpdatedAt = t
	}
	return pass
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
