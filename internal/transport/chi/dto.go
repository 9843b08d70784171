package chi

import (
	"time"

	"github.com/nomadmatch/nomadmatch/internal/domain/profile"
	"github.com/nomadmatch/nomadmatch/internal/domain/ranked"
)

// ErrorCode identifies an API error class.
type ErrorCode string

const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeValidationFailed     ErrorCode = "validation_failed"
	CodeInvalidCredentials   ErrorCode = "invalid_credentials"
	CodeInvalidToken         ErrorCode = "invalid_token"
	CodeUserExists           ErrorCode = "user_exists"
	CodeUserNotFound         ErrorCode = "user_not_found"
	CodePremiumRequired      ErrorCode = "premium_required"
	CodeStoreUnavailable     ErrorCode = "store_unavailable"
	CodeEmbeddingProviderErr ErrorCode = "embedding_provider_error"
	CodeAdviceProviderError  ErrorCode = "advice_provider_error"
	CodeNotFound             ErrorCode = "not_found"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type preferencesRequest struct {
	Preferences map[string]any `json:"preferences"`
}

type meResponse struct {
	Email       string         `json:"email"`
	Premium     bool           `json:"is_premium"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"created_at"`
}

type queryRequest struct {
	Query       string          `json:"query"`
	NumResults  int             `json:"num_results"`
	Preferences profile.Profile `json:"preferences"`
	Tier        string          `json:"tier"`
}

type queryResponse struct {
	Results       []ranked.Entry `json:"results"`
	TotalSearched int            `json:"total_searched"`
	Query         string         `json:"query"`
	Tier          string         `json:"tier"`
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type adviceRequest struct {
	Query string `json:"query"`
}

type adviceResponse struct {
	Advice string         `json:"advice"`
	Query  string         `json:"query"`
	Cities []ranked.Entry `json:"cities"`
}

type uploadResponse struct {
	Status          string `json:"status"`
	ChunksProcessed int    `json:"chunks_processed"`
}

type listingResponse struct {
	Cities []ranked.Entry `json:"cities"`
	Total  int            `json:"total"`
}
