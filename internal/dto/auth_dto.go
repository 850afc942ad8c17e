package dto

import "github.com/google/uuid"

type ManualExchangeRequest struct {
	Code string `json:"code"`
}

type LinkResponse struct {
	Success bool      `json:"success"`
	UserID  uuid.UUID `json:"user_id"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	TikTokOpenID  string     `json:"tiktok_open_id,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response. Details carries
// the provider's response on token exchange failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
