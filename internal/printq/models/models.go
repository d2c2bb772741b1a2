package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	dErrors "chefpass/pkg/domain-errors"
)

// Status is the print job lifecycle state. Only queued and printing are
// non-terminal; printed and denied admit no further transitions.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusPrinting Status = "printing"
	StatusPrinted  Status = "printed"
	StatusDenied   Status = "denied"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusPrinted || s == StatusDenied
}

// Action is a requested workflow step.
type Action string

const (
	ActionRequest     Action = "request"
	ActionApprove     Action = "approve"
	ActionDeny        Action = "deny"
	ActionMarkPrinted Action = "mark_printed"
)

// Role identifies who is driving a transition.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleApprover Role = "approver"
	RoleAgent    Role = "agent"
)

type transitionKey struct {
	from   Status
	action Action
	role   Role
}

// transitions is the complete (state, action, role) table. Any triple not
// listed is rejected; there is no implicit fallthrough. The two self-loops
// are the explicitly idempotent owner re-requests.
var transitions = map[transitionKey]Status{
	{StatusQueued, ActionRequest, RoleOwner}:          StatusQueued,
	{StatusPrinting, ActionRequest, RoleOwner}:        StatusPrinting,
	{StatusQueued, ActionApprove, RoleApprover}:       StatusPrinting,
	{StatusQueued, ActionDeny, RoleApprover}:          StatusDenied,
	{StatusPrinting, ActionMarkPrinted, RoleAgent}:    StatusPrinted,
	{StatusPrinting, ActionMarkPrinted, RoleApprover}: StatusPrinted,
}

// Next resolves a transition, or rejects it with CodeInvalidTransition.
func Next(from Status, action Action, role Role) (Status, error) {
	next, ok := transitions[transitionKey{from, action, role}]
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("%s by %s is not valid from %s", action, role, from))
	}
	return next, nil
}

// Job is a request-to-print workflow instance. One active job per identity:
// the job ID is the owner's identity ID, which is what makes a repeated
// request an upsert instead of a duplicate.
type Job struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	// Denormalized display fields, captured at request time for the print
	// preview and the physical badge layout.
	DisplayName    string
	Email          string
	Category       string
	WaitlistNumber *int
	PassURL        string

	// RequestedVia describes the requesting client ("Chrome on macOS").
	RequestedVia string

	Status      Status
	RequestedAt time.Time
	ApprovedAt  time.Time
	ApprovedBy  string
	DeniedAt    time.Time
	DeniedBy    string
	PrintedAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
