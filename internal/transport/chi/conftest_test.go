package chi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	chiv5 "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nomadmatch/nomadmatch/internal/domain/candidate"
	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/ranked"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
	"github.com/nomadmatch/nomadmatch/internal/domain/user"
	authuc "github.com/nomadmatch/nomadmatch/internal/usecase/auth"
	healthuc "github.com/nomadmatch/nomadmatch/internal/usecase/health"
)

// --- Mocks ---

type mockRetriever struct {
	retrieveFn      func(ctx context.Context, query string, t tier.Tier, k int) ([]candidate.Candidate, error)
	premiumSearchFn func(ctx context.Context, query string, k int) ([]candidate.Candidate, error)
	listingFn       func(ctx context.Context, types []tier.DataType, limit int) ([]document.Document, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, t tier.Tier, k int) ([]candidate.Candidate, error) {
	if m.retrieveFn == nil {
		return nil, nil
	}
	return m.retrieveFn(ctx, query, t, k)
}

func (m *mockRetriever) PremiumSearch(ctx context.Context, query string, k int) ([]candidate.Candidate, error) {
	if m.premiumSearchFn == nil {
		return nil, nil
	}
	return m.premiumSearchFn(ctx, query, k)
}

func (m *mockRetriever) PremiumListing(ctx context.Context, types []tier.DataType, limit int) ([]document.Document, error) {
	if m.listingFn == nil {
		return nil, nil
	}
	return m.listingFn(ctx, types, limit)
}

type mockIngestor struct {
	ingestFn func(ctx context.Context, name string, r io.Reader) (int, error)
}

func (m *mockIngestor) IngestReader(ctx context.Context, name string, r io.Reader) (int, error) {
	if m.ingestFn == nil {
		return 0, nil
	}
	return m.ingestFn(ctx, name, r)
}

type mockAccounts struct {
	registerFn    func(ctx context.Context, email, password string) (authuc.Session, error)
	loginFn       func(ctx context.Context, email, password string) (authuc.Session, error)
	meFn          func(ctx context.Context, email string) (user.User, error)
	upgradeFn     func(ctx context.Context, email string) (authuc.Session, error)
	preferencesFn func(ctx context.Context, email string, prefs map[string]any) error
}

func (m *mockAccounts) Register(ctx context.Context, email, password string) (authuc.Session, error) {
	return m.registerFn(ctx, email, password)
}

func (m *mockAccounts) Login(ctx context.Context, email, password string) (authuc.Session, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAccounts) Me(ctx context.Context, email string) (user.User, error) {
	return m.meFn(ctx, email)
}

func (m *mockAccounts) Upgrade(ctx context.Context, email string) (authuc.Session, error) {
	return m.upgradeFn(ctx, email)
}

func (m *mockAccounts) UpdatePreferences(ctx context.Context, email string, prefs map[string]any) error {
	return m.preferencesFn(ctx, email, prefs)
}

type mockAdvisor struct {
	generateFn func(ctx context.Context, query string, entries []ranked.Entry) string
}

func (m *mockAdvisor) Generate(ctx context.Context, query string, entries []ranked.Entry) string {
	if m.generateFn == nil {
		return "advice"
	}
	return m.generateFn(ctx, query, entries)
}

type mockHealth struct {
	report healthuc.Report
	stats  healthuc.Stats
}

func (m *mockHealth) Check(context.Context) healthuc.Report      { return m.report }
func (m *mockHealth) CorpusStats(context.Context) healthuc.Stats { return m.stats }

// --- Fixtures ---

type testDeps struct {
	retriever *mockRetriever
	ingestor  *mockIngestor
	accounts  *mockAccounts
	advisor   *mockAdvisor
	health    *mockHealth
	tokens    *authuc.TokenIssuer
}

func newTestDeps() *testDeps {
	return &testDeps{
		retriever: &mockRetriever{},
		ingestor:  &mockIngestor{},
		accounts:  &mockAccounts{},
		advisor:   &mockAdvisor{},
		health: &mockHealth{
			report: healthuc.Report{
				Status: healthuc.Healthy,
				Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
			},
		},
		tokens: authuc.NewTokenIssuer("test-secret", time.Hour),
	}
}

type tokenVerifierFunc func(token string) (*authuc.Claims, error)

func (f tokenVerifierFunc) VerifyToken(token string) (*authuc.Claims, error) { return f(token) }

// newTestRouter wires the server plus JWT middleware the way main does.
func newTestRouter(d *testDeps) http.Handler {
	srv := NewServer(d.retriever, d.ingestor, d.accounts, d.advisor, d.health, 15, 100, zap.NewNop())

	r := chiv5.NewRouter()
	r.Use(JWTAuthMiddleware(tokenVerifierFunc(func(token string) (*authuc.Claims, error) {
		return d.tokens.Verify(token)
	})))
	srv.Routes(r)
	return r
}

func bearerToken(d *testDeps, email string, premium bool) string {
	token, err := d.tokens.Issue(email, premium)
	if err != nil {
		panic(err)
	}
	return "Bearer " + token
}

func testCandidate(city string, base float64, t tier.Tier) candidate.Candidate {
	meta := document.Metadata{City: city, Country: "Portugal", Tier: t}
	return candidate.Reconstruct(city, "City: "+city, meta, 1-base, base)
}

func doRequest(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
