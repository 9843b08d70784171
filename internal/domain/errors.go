package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank or whitespace-only search query.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrStoreUninitialized signals that the corpus store failed to initialize.
	// Read paths absorb this into empty results; it is exposed for health reporting.
	ErrStoreUninitialized = errors.New("corpus store not initialized")
	// ErrDocumentNotFound signals a missing corpus document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrAdviceProviderError signals a chat-completion provider failure.
	ErrAdviceProviderError = errors.New("advice provider error")

	// ErrUserExists signals a duplicate account registration.
	ErrUserExists = errors.New("email already registered")
	// ErrUserNotFound signals a missing account.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials signals a failed login attempt.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInvalidToken signals a malformed or expired access token.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrPremiumRequired signals a premium-only operation requested by a free account.
	ErrPremiumRequired = errors.New("premium subscription required")
)
