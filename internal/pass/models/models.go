package models

import "time"

// Ref addresses a published pass: the minted token and the public URL built
// from it.
type Ref struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// PublicPass is the redacted, publicly readable projection of an identity.
// Only allow-listed fields appear here; internal identifiers and print
// workflow state never do.
type PublicPass struct {
	DisplayName    string
	Category       string
	Email          string
	WaitlistNumber *int
	WantsGigs      bool
	WantsSell      bool
	FarmConnect    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
