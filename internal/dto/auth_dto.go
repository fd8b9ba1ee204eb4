package dto

// LoginRequest is the payload for the sign-in endpoint.
type LoginRequest struct {
	Role     string `json:"role" validate:"required,oneof=student tutor"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// SessionResponse describes the signed-in user to the frontend.
type SessionResponse struct {
	Role      string `json:"role"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expires_at"`
}

// QuickLearnResponse reports the QuickLearn feature-gate verdict.
type QuickLearnResponse struct {
	Enabled bool `json:"enabled"`
}
