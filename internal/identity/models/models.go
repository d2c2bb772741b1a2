package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "chefpass/pkg/domain-errors"
)

// Category is the quiz-assigned chef archetype. The quiz and its mapping
// heuristics live in the client; this core only stores the result.
type Category string

const (
	CategoryConnector Category = "connector"
	CategoryInnovator Category = "innovator"
	CategoryArtisan   Category = "artisan"
	CategoryHost      Category = "host"
	CategoryForager   Category = "forager"
	CategoryPurist    Category = "purist"
	CategoryMaverick  Category = "maverick"
	CategoryScholar   Category = "scholar"
)

var categories = map[Category]struct{}{
	CategoryConnector: {},
	CategoryInnovator: {},
	CategoryArtisan:   {},
	CategoryHost:      {},
	CategoryForager:   {},
	CategoryPurist:    {},
	CategoryMaverick:  {},
	CategoryScholar:   {},
}

// ParseCategory validates a category label.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categories[c]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unknown category")
	}
	return c, nil
}

// PrintStatus mirrors the registrant-side view of the print workflow.
// It is stored on the private identity record and never published.
type PrintStatus string

const (
	PrintStatusNone     PrintStatus = ""
	PrintStatusPending  PrintStatus = "pending"
	PrintStatusApproved PrintStatus = "approved"
	PrintStatusDenied   PrintStatus = "denied"
	PrintStatusPrinted  PrintStatus = "printed"
)

// WaitlistStart is the first waitlist number ever assigned.
const WaitlistStart = 100

// Identity is the private, authoritative registrant record.
type Identity struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	Category    Category

	WantsGigs   bool
	WantsSell   bool
	FarmConnect bool

	// WaitlistNumber is assigned exactly once; nil until then.
	WaitlistNumber *int

	// PassToken addresses the public pass; assigned exactly once.
	PassToken string
	PassURL   string

	PrintStatus  PrintStatus
	PrintedBadge bool
	WelcomeDone  bool
	BetaAccess   bool

	// ApprovedBy / DeniedBy record the approver behind the most recent
	// print decision mirrored onto this record.
	ApprovedBy string
	DeniedBy   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasWaitlistNumber reports whether a number has been assigned.
func (i *Identity) HasWaitlistNumber() bool {
	return i.WaitlistNumber != nil
}
