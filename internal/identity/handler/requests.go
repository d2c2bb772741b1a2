package handler

// RegisterRequest creates a new identity. The display name is optional; the
// onboarding flow may capture it later.
type RegisterRequest struct {
	DisplayName string `json:"displayName" validate:"omitempty,max=120"`
}

type SaveNameRequest struct {
	DisplayName string `json:"displayName" validate:"required,notblank,max=120"`
}

type SaveEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SaveCategoryRequest struct {
	Category string `json:"category" validate:"required,notblank"`
}

type SavePreferencesRequest struct {
	WantsGigs   bool `json:"wantsGigs"`
	WantsSell   bool `json:"wantsSell"`
	FarmConnect bool `json:"farmConnect"`
}
