package handler

// Input constraints: login and password are 6–20 characters, one-time codes
// are opaque strings (uuids in practice) capped at 40.

type registrationRequest struct {
	Login    string `json:"login"    validate:"required,min=6,max=20"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

type loginRequest struct {
	Login    string `json:"login"    validate:"required,min=6,max=20"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

type passwordRecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type newPasswordRequest struct {
	NewPassword  string `json:"newPassword"  validate:"required,min=6,max=20"`
	RecoveryCode string `json:"recoveryCode" validate:"required,min=6,max=40"`
}

type registrationConfirmationRequest struct {
	Code string `json:"code" validate:"required,min=6,max=40"`
}

type registrationEmailResendingRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type meResponse struct {
	UserID string `json:"userId"`
	Login  string `json:"login"`
	Email  string `json:"email"`
}
