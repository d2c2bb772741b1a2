package handler

import (
	"time"

	"chefpass/internal/identity/models"
)

// IdentityResponse is the private record as returned to the owning client.
type IdentityResponse struct {
	ID             string     `json:"id"`
	DisplayName    string     `json:"displayName,omitempty"`
	Email          string     `json:"email,omitempty"`
	Category       string     `json:"category,omitempty"`
	WantsGigs      bool       `json:"wantsGigs"`
	WantsSell      bool       `json:"wantsSell"`
	FarmConnect    bool       `json:"farmConnect"`
	WaitlistNumber *int       `json:"waitlistNumber,omitempty"`
	PassToken      string     `json:"passToken,omitempty"`
	PassURL        string     `json:"passUrl,omitempty"`
	PrintStatus    string     `json:"printStatus,omitempty"`
	PrintedBadge   bool       `json:"printedBadge"`
	WelcomeDone    bool       `json:"welcomeDone"`
	BetaAccess     bool       `json:"betaAccess"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// WaitlistResponse carries an assigned waitlist number.
type WaitlistResponse struct {
	WaitlistNumber int `json:"waitlistNumber"`
}

func toIdentityResponse(ident *models.Identity) IdentityResponse {
	return IdentityResponse{
		ID:             ident.ID.String(),
		DisplayName:    ident.DisplayName,
		Email:          ident.Email,
		Category:       string(ident.Category),
		WantsGigs:      ident.WantsGigs,
		WantsSell:      ident.WantsSell,
		FarmConnect:    ident.FarmConnect,
		WaitlistNumber: ident.WaitlistNumber,
		PassToken:      ident.PassToken,
		PassURL:        ident.PassURL,
		PrintStatus:    string(ident.PrintStatus),
		PrintedBadge:   ident.PrintedBadge,
		WelcomeDone:    ident.WelcomeDone,
		BetaAccess:     ident.BetaAccess,
		CreatedAt:      ident.CreatedAt,
		UpdatedAt:      ident.UpdatedAt,
	}
}
