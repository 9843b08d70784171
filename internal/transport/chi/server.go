// Package chi is the HTTP surface of the recommender: retrieval and
// ranking, premium advice, ingestion uploads, and account management.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	chiv5 "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nomadmatch/nomadmatch/internal/domain"
	"github.com/nomadmatch/nomadmatch/internal/domain/candidate"
	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/profile"
	"github.com/nomadmatch/nomadmatch/internal/domain/ranked"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
	"github.com/nomadmatch/nomadmatch/internal/domain/user"
	"github.com/nomadmatch/nomadmatch/internal/usecase/advice"
	authuc "github.com/nomadmatch/nomadmatch/internal/usecase/auth"
	healthuc "github.com/nomadmatch/nomadmatch/internal/usecase/health"
	"github.com/nomadmatch/nomadmatch/internal/usecase/rank"
)

// maxReturned caps how many ranked entries a query response carries.
const maxReturned = 3

// maxUploadBytes bounds uploaded source files.
const maxUploadBytes = 32 << 20

// Retriever is the retrieval contract.
type Retriever interface {
	Retrieve(ctx context.Context, query string, t tier.Tier, k int) ([]candidate.Candidate, error)
	PremiumSearch(ctx context.Context, query string, k int) ([]candidate.Candidate, error)
	PremiumListing(ctx context.Context, types []tier.DataType, limit int) ([]document.Document, error)
}

// Ingestor accepts uploaded source files.
type Ingestor interface {
	IngestReader(ctx context.Context, name string, r io.Reader) (int, error)
}

// Accounts is the account management contract.
type Accounts interface {
	Register(ctx context.Context, email, password string) (authuc.Session, error)
	Login(ctx context.Context, email, password string) (authuc.Session, error)
	Me(ctx context.Context, email string) (user.User, error)
	Upgrade(ctx context.Context, email string) (authuc.Session, error)
	UpdatePreferences(ctx context.Context, email string, prefs map[string]any) error
}

// Advisor generates natural-language advice from ranked entries.
type Advisor interface {
	Generate(ctx context.Context, query string, entries []ranked.Entry) string
}

// Health reports component health and corpus stats.
type Health interface {
	Check(ctx context.Context) healthuc.Report
	CorpusStats(ctx context.Context) healthuc.Stats
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the HTTP API.
type Server struct {
	retriever     Retriever
	ingestor      Ingestor
	accounts      Accounts
	advisor       Advisor
	health        Health
	logger        *zap.Logger
	defaultK      int
	maxK          int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	retriever Retriever,
	ingestor Ingestor,
	accounts Accounts,
	advisor Advisor,
	health Health,
	defaultResults, maxResults int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		retriever: retriever,
		ingestor:  ingestor,
		accounts:  accounts,
		advisor:   advisor,
		health:    health,
		logger:    logger,
		defaultK:  defaultResults,
		maxK:      maxResults,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUserExists, http.StatusConflict, CodeUserExists),
		sentinelHandler(domain.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials),
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound),
		sentinelHandler(domain.ErrInvalidToken, http.StatusUnauthorized, CodeInvalidToken),
		sentinelHandler(domain.ErrPremiumRequired, http.StatusForbidden, CodePremiumRequired),
		sentinelHandler(domain.ErrStoreUninitialized, http.StatusServiceUnavailable, CodeStoreUnavailable),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderErr),
		sentinelHandler(domain.ErrAdviceProviderError, http.StatusBadGateway, CodeAdviceProviderError),
	}
	return s
}

// Routes mounts all endpoints on the router.
func (s *Server) Routes(r chiv5.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chiv5.Router) {
		r.Get("/health", s.HealthCheck)
		r.Get("/stats", s.Stats)
		r.Post("/upload", s.Upload)
		r.Post("/query", s.Query)
		r.Post("/chat", s.Chat)

		r.Route("/premium", func(r chiv5.Router) {
			r.Get("/cities", s.PremiumCities)
			r.Post("/advice", s.PremiumAdvice)
		})

		r.Route("/auth", func(r chiv5.Router) {
			r.Post("/register", s.Register)
			r.Post("/login", s.Login)
			r.Get("/me", s.Me)
			r.Post("/upgrade", s.Upgrade)
			r.Put("/preferences", s.Preferences)
		})
	})
}

// Query handles POST /api/v1/query: retrieve, rank, return the top matches.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	t := s.effectiveTier(r.Context(), req.Tier)
	k := s.clampResults(req.NumResults)

	cands, err := s.retriever.Retrieve(r.Context(), req.Query, t, k)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	entries := rank.Rank(cands, req.Preferences, t)
	top := entries
	if len(top) > maxReturned {
		top = top[:maxReturned]
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Results:       top,
		TotalSearched: len(cands),
		Query:         req.Query,
		Tier:          string(t),
	})
}

// Chat handles POST /api/v1/chat with a deterministic recommendation reply.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	cands, err := s.retriever.Retrieve(r.Context(), req.Message, tier.Free, 5)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	entries := rank.Rank(cands, profile.Profile{}, tier.Free)

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  advice.Recommendation(entries),
		SessionID: req.SessionID,
	})
}

// Upload handles POST /api/v1/upload: a multipart city source file.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "file field is required")
		return
	}
	defer file.Close()

	stored, err := s.ingestor.IngestReader(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUninitialized) || errors.Is(err, domain.ErrEmbeddingProviderError) {
			s.handleDomainError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "unsupported or malformed source file")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Status: "success", ChunksProcessed: stored})
}

// PremiumCities handles GET /api/v1/premium/cities: visa and tax records
// ranked by overall score. Premium accounts only.
func (s *Server) PremiumCities(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePremium(w, r); !ok {
		return
	}

	docs, err := s.retriever.PremiumListing(r.Context(), nil, s.maxK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	entries := rank.RankListing(docs)
	writeJSON(w, http.StatusOK, listingResponse{Cities: entries, Total: len(entries)})
}

// PremiumAdvice handles POST /api/v1/premium/advice: retrieval-grounded
// advice for visa and tax questions. Premium accounts only.
func (s *Server) PremiumAdvice(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePremium(w, r); !ok {
		return
	}

	var req adviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cands, err := s.retriever.PremiumSearch(r.Context(), req.Query, s.defaultK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	entries := rank.Rank(cands, profile.Profile{}, tier.Premium)
	answer := s.advisor.Generate(r.Context(), req.Query, entries)

	top := entries
	if len(top) > maxReturned {
		top = top[:maxReturned]
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: answer, Query: req.Query, Cities: top})
}

// Register handles POST /api/v1/auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := s.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// Login handles POST /api/v1/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Me handles GET /api/v1/auth/me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.requireAccount(w, r)
	if !ok {
		return
	}

	u, err := s.accounts.Me(r.Context(), claims.Subject)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	prefs := u.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	writeJSON(w, http.StatusOK, meResponse{
		Email:       u.Email,
		Premium:     u.Premium,
		Preferences: prefs,
		CreatedAt:   u.CreatedAt,
	})
}

// Upgrade handles POST /api/v1/auth/upgrade.
func (s *Server) Upgrade(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.requireAccount(w, r)
	if !ok {
		return
	}

	sess, err := s.accounts.Upgrade(r.Context(), claims.Subject)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Preferences handles PUT /api/v1/auth/preferences.
func (s *Server) Preferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.requireAccount(w, r)
	if !ok {
		return
	}

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.accounts.UpdatePreferences(r.Context(), claims.Subject, req.Preferences); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Preferences updated"})
}

// Stats handles GET /api/v1/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.CorpusStats(r.Context()))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// effectiveTier resolves the serving tier: a premium request is honored
// only for an authenticated premium account, everything else is free.
func (s *Server) effectiveTier(ctx context.Context, requested string) tier.Tier {
	if tier.Parse(strings.TrimSpace(requested)) != tier.Premium {
		return tier.Free
	}
	claims, ok := claimsFromContext(ctx)
	if ok && claims.Premium {
		return tier.Premium
	}
	return tier.Free
}

func (s *Server) clampResults(requested int) int {
	if requested <= 0 {
		return s.defaultK
	}
	if requested > s.maxK {
		return s.maxK
	}
	return requested
}

func (s *Server) requireAccount(w http.ResponseWriter, r *http.Request) (*authuc.Claims, bool) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeInvalidToken, "authentication required")
		return nil, false
	}
	return claims, true
}

func (s *Server) requirePremium(w http.ResponseWriter, r *http.Request) (*authuc.Claims, bool) {
	claims, ok := s.requireAccount(w, r)
	if !ok {
		return nil, false
	}
	if !claims.Premium {
		writeError(w, http.StatusForbidden, CodePremiumRequired, domain.ErrPremiumRequired.Error())
		return nil, false
	}
	return claims, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrUserExists,
		domain.ErrInvalidCredentials,
		domain.ErrUserNotFound,
		domain.ErrInvalidToken,
		domain.ErrPremiumRequired,
		domain.ErrStoreUninitialized,
		domain.ErrDocumentNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrAdviceProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
