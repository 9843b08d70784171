package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nomadmatch/nomadmatch/internal/domain"
	"github.com/nomadmatch/nomadmatch/internal/domain/candidate"
	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/ranked"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
	"github.com/nomadmatch/nomadmatch/internal/domain/user"
	authuc "github.com/nomadmatch/nomadmatch/internal/usecase/auth"
	healthuc "github.com/nomadmatch/nomadmatch/internal/usecase/health"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestQuery_ReturnsRankedTopThree(t *testing.T) {
	d := newTestDeps()
	d.retriever.retrieveFn = func(_ context.Context, query string, tr tier.Tier, k int) ([]candidate.Candidate, error) {
		if tr != tier.Free {
			t.Errorf("tier = %s, want free", tr)
		}
		if k != 15 {
			t.Errorf("k = %d, want default 15", k)
		}
		return []candidate.Candidate{
			testCandidate("Lisbon", 0.9, tier.Free),
			testCandidate("Porto", 0.8, tier.Free),
			testCandidate("Faro", 0.7, tier.Free),
			testCandidate("Braga", 0.6, tier.Free),
		}, nil
	}

	rr := doRequest(newTestRouter(d), jsonRequest("POST", "/api/v1/query", `{"query":"sunny coastal city"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[queryResponse](t, rr)
	if len(resp.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(resp.Results))
	}
	if resp.Results[0].City != "Lisbon" {
		t.Errorf("top city = %s", resp.Results[0].City)
	}
	if resp.TotalSearched != 4 {
		t.Errorf("total_searched = %d, want 4", resp.TotalSearched)
	}
	if resp.Tier != "free" {
		t.Errorf("tier = %s", resp.Tier)
	}
	if resp.Query != "sunny coastal city" {
		t.Errorf("query = %q", resp.Query)
	}
}

func TestQuery_EmptyQueryRejected(t *testing.T) {
	d := newTestDeps()
	d.retriever.retrieveFn = func(context.Context, string, tier.Tier, int) ([]candidate.Candidate, error) {
		return nil, domain.ErrEmptyQuery
	}

	rr := doRequest(newTestRouter(d), jsonRequest("POST", "/api/v1/query", `{"query":"  "}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}

	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Code != CodeValidationFailed {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestQuery_TierResolution(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		premium bool
		want    tier.Tier
	}{
		{name: "anonymous request downgraded", want: tier.Free},
		{name: "free account downgraded", email: "free@x.com", premium: false, want: tier.Free},
		{name: "premium account honored", email: "prem@x.com", premium: true, want: tier.Premium},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDeps()
			var got tier.Tier
			d.retriever.retrieveFn = func(_ context.Context, _ string, tr tier.Tier, _ int) ([]candidate.Candidate, error) {
				got = tr
				return nil, nil
			}

			req := jsonRequest("POST", "/api/v1/query", `{"query":"q","tier":"premium"}`)
			if tc.email != "" {
				req.Header.Set("Authorization", bearerToken(d, tc.email, tc.premium))
			}

			rr := doRequest(newTestRouter(d), req)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			if got != tc.want {
				t.Errorf("tier = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestQuery_NumResultsClamped(t *testing.T) {
	d := newTestDeps()
	var gotK int
	d.retriever.retrieveFn = func(_ context.Context, _ string, _ tier.Tier, k int) ([]candidate.Candidate, error) {
		gotK = k
		return nil, nil
	}

	rr := doRequest(newTestRouter(d), jsonRequest("POST", "/api/v1/query", `{"query":"q","num_results":5000}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if gotK != 100 {
		t.Errorf("k = %d, want max 100", gotK)
	}
}

func TestQuery_StoreDownMapsTo503(t *testing.T) {
	d := newTestDeps()
	d.retriever.retrieveFn = func(context.Context, string, tier.Tier, int) ([]candidate.Candidate, error) {
		return nil, domain.ErrStoreUninitialized
	}

	rr := doRequest(newTestRouter(d), jsonRequest("POST", "/api/v1/query", `{"query":"q"}`))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Code != CodeStoreUnavailable {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestChat_RepliesWithRecommendation(t *testing.T) {
	d := newTestDeps()
	d.retriever.retrieveFn = func(_ context.Context, _ string, tr tier.Tier, k int) ([]candidate.Candidate, error) {
		if tr != tier.Free || k != 5 {
			t.Errorf("retrieve(%s, %d), want (free, 5)", tr, k)
		}
		return []candidate.Candidate{testCandidate("Lisbon", 0.8, tier.Free)}, nil
	}

	rr := doRequest(newTestRouter(d), jsonRequest("POST", "/api/v1/chat", `{"message":"beach city"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	resp := decodeBody[chatResponse](t, rr)
	if !strings.Contains(resp.Response, "Lisbon") {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.SessionID != "default" {
		t.Errorf("session_id = %q, want default", resp.SessionID)
	}
}

func TestChat_NoMatchesKeepsSessionID(t *testing.T) {
	d := newTestDeps()

	rr := doRequest(newTestRouter(d), jsonRequest("POST", "/api/v1/chat", `{"message":"x","session_id":"s1"}`))
	resp := decodeBody[chatResponse](t, rr)

	if !strings.Contains(resp.Response, "couldn't find") {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.SessionID != "s1" {
		t.Errorf("session_id = %q", resp.SessionID)
	}
}

func multipartFile(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUpload_IngestsMultipartFile(t *testing.T) {
	d := newTestDeps()
	var gotName string
	d.ingestor.ingestFn = func(_ context.Context, name string, r io.Reader) (int, error) {
		gotName = name
		data, _ := io.ReadAll(r)
		if !strings.Contains(string(data), "Lisbon") {
			t.Errorf("file content not forwarded: %q", data)
		}
		return 7, nil
	}

	body, contentType := multipartFile(t, "file", "cities.csv", "City,Country\nLisbon,Portugal\n")
	req := httptest.NewRequest("POST", "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)

	rr := doRequest(newTestRouter(d), req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[uploadResponse](t, rr)
	if resp.Status != "success" || resp.ChunksProcessed != 7 {
		t.Errorf("resp = %+v", resp)
	}
	if gotName != "cities.csv" {
		t.Errorf("file name = %q", gotName)
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	d := newTestDeps()

	body, contentType := multipartFile(t, "other", "x.csv", "x")
	req := httptest.NewRequest("POST", "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)

	rr := doRequest(newTestRouter(d), req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestUpload_UnsupportedFileIs400(t *testing.T) {
	d := newTestDeps()
	d.ingestor.ingestFn = func(context.Context, string, io.Reader) (int, error) {
		return 0, errors.New("unsupported source file type: .pdf")
	}

	body, contentType := multipartFile(t, "file", "report.pdf", "%PDF")
	req := httptest.NewRequest("POST", "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)

	rr := doRequest(newTestRouter(d), req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestUpload_EmbeddingOutageIs502(t *testing.T) {
	d := newTestDeps()
	d.ingestor.ingestFn = func(context.Context, string, io.Reader) (int, error) {
		return 0, domain.ErrEmbeddingProviderError
	}

	body, contentType := multipartFile(t, "file", "cities.csv", "City\nLisbon\n")
	req := httptest.NewRequest("POST", "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)

	rr := doRequest(newTestRouter(d), req)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
}

func TestPremiumEndpoints_RequirePremiumAccount(t *testing.T) {
	paths := []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/api/v1/premium/cities", ""},
		{"POST", "/api/v1/premium/advice", `{"query":"visa?"}`},
	}

	for _, p := range paths {
		t.Run(p.path, func(t *testing.T) {
			d := newTestDeps()
			router := newTestRouter(d)

			rr := doRequest(router, jsonRequest(p.method, p.path, p.body))
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("anonymous status = %d, want 401", rr.Code)
			}

			req := jsonRequest(p.method, p.path, p.body)
			req.Header.Set("Authorization", bearerToken(d, "free@x.com", false))
			rr = doRequest(router, req)
			if rr.Code != http.StatusForbidden {
				t.Errorf("free account status = %d, want 403", rr.Code)
			}
			resp := decodeBody[ErrorResponse](t, rr)
			if resp.Code != CodePremiumRequired {
				t.Errorf("code = %s", resp.Code)
			}
		})
	}
}

func TestPremiumAdvice_GroundsOnPremiumRetrieval(t *testing.T) {
	d := newTestDeps()
	d.retriever.retrieveFn = func(context.Context, string, tier.Tier, int) ([]candidate.Candidate, error) {
		t.Fatal("advice must use the premium-pinned search path")
		return nil, nil
	}
	d.retriever.premiumSearchFn = func(_ context.Context, query string, k int) ([]candidate.Candidate, error) {
		if k != 15 {
			t.Errorf("k = %d, want default 15", k)
		}
		return []candidate.Candidate{
			testCandidate("Tallinn", 0.9, tier.Premium),
			testCandidate("Riga", 0.8, tier.Premium),
			testCandidate("Vilnius", 0.7, tier.Premium),
			testCandidate("Tartu", 0.6, tier.Premium),
		}, nil
	}
	d.advisor.generateFn = func(_ context.Context, query string, entries []ranked.Entry) string {
		if query != "where can I get a nomad visa?" {
			t.Errorf("query = %q", query)
		}
		if len(entries) != 4 {
			t.Errorf("entries = %d, want all 4 passed to advisor", len(entries))
		}
		return "Consider Tallinn."
	}

	req := jsonRequest("POST", "/api/v1/premium/advice", `{"query":"where can I get a nomad visa?"}`)
	req.Header.Set("Authorization", bearerToken(d, "prem@x.com", true))

	rr := doRequest(newTestRouter(d), req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[adviceResponse](t, rr)
	if resp.Advice != "Consider Tallinn." {
		t.Errorf("advice = %q", resp.Advice)
	}
	if len(resp.Cities) != 3 {
		t.Errorf("cities = %d, want top 3", len(resp.Cities))
	}
	if resp.Cities[0].Premium == nil {
		t.Error("premium sub-object missing on premium response")
	}
}

func TestPremiumCities_ListsRankedPremiumData(t *testing.T) {
	d := newTestDeps()
	d.retriever.listingFn = func(_ context.Context, types []tier.DataType, limit int) ([]document.Document, error) {
		if limit != 100 {
			t.Errorf("limit = %d, want max 100", limit)
		}
		low := document.Metadata{City: "Riga", Tier: tier.Premium,
			Extra: map[string]string{"Overall_Score": "6.1"}}
		high := document.Metadata{City: "Tallinn", Tier: tier.Premium,
			Extra: map[string]string{"Overall_Score": "8.6"}}
		return []document.Document{
			document.New("visa_premium.csv_1", "City: Riga", low),
			document.New("visa_premium.csv_0", "City: Tallinn", high),
		}, nil
	}

	req := httptest.NewRequest("GET", "/api/v1/premium/cities", http.NoBody)
	req.Header.Set("Authorization", bearerToken(d, "prem@x.com", true))

	rr := doRequest(newTestRouter(d), req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[listingResponse](t, rr)
	if resp.Total != 2 {
		t.Fatalf("total = %d", resp.Total)
	}
	if resp.Cities[0].City != "Tallinn" || resp.Cities[0].Score != 8.6 {
		t.Errorf("top = %s (%.2f), want Tallinn 8.60", resp.Cities[0].City, resp.Cities[0].Score)
	}
	if resp.Cities[0].Premium == nil {
		t.Error("listing entries must carry premium data")
	}
}

func TestRegister_CreatedWithSession(t *testing.T) {
	d := newTestDeps()
	d.accounts.registerFn = func(_ context.Context, email, password string) (authuc.Session, error) {
		if email != "new@x.com" || password != "secret1" {
			t.Errorf("register(%q, %q)", email, password)
		}
		return authuc.Session{AccessToken: "tok", TokenType: "bearer"}, nil
	}

	rr := doRequest(newTestRouter(d), jsonRequest("POST", "/api/v1/auth/register",
		`{"email":"new@x.com","password":"secret1"}`))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[authuc.Session](t, rr)
	if resp.AccessToken != "tok" || resp.TokenType != "bearer" {
		t.Errorf("session = %+v", resp)
	}
}

func TestRegister_DuplicateIs409(t *testing.T) {
	d := newTestDeps()
	d.accounts.registerFn = func(context.Context, string, string) (authuc.Session, error) {
		return authuc.Session{}, domain.ErrUserExists
	}

	rr := doRequest(newTestRouter(d), jsonRequest("POST", "/api/v1/auth/register",
		`{"email":"dup@x.com","password":"secret1"}`))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Code != CodeUserExists {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestLogin_BadCredentialsIs401(t *testing.T) {
	d := newTestDeps()
	d.accounts.loginFn = func(context.Context, string, string) (authuc.Session, error) {
		return authuc.Session{}, domain.ErrInvalidCredentials
	}

	rr := doRequest(newTestRouter(d), jsonRequest("POST", "/api/v1/auth/login",
		`{"email":"a@x.com","password":"wrong"}`))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Code != CodeInvalidCredentials {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestMe_ReturnsAccount(t *testing.T) {
	d := newTestDeps()
	d.accounts.meFn = func(_ context.Context, email string) (user.User, error) {
		return user.User{Email: email, Premium: true}, nil
	}

	req := httptest.NewRequest("GET", "/api/v1/auth/me", http.NoBody)
	req.Header.Set("Authorization", bearerToken(d, "prem@x.com", true))

	rr := doRequest(newTestRouter(d), req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	if !strings.Contains(rr.Body.String(), `"preferences":{}`) {
		t.Errorf("preferences must serialize as an empty object: %s", rr.Body.String())
	}
	resp := decodeBody[meResponse](t, rr)
	if resp.Email != "prem@x.com" || !resp.Premium {
		t.Errorf("resp = %+v", resp)
	}
}

func TestMe_AnonymousIs401(t *testing.T) {
	d := newTestDeps()
	rr := doRequest(newTestRouter(d), httptest.NewRequest("GET", "/api/v1/auth/me", http.NoBody))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestUpgrade_ReturnsFreshSession(t *testing.T) {
	d := newTestDeps()
	d.accounts.upgradeFn = func(_ context.Context, email string) (authuc.Session, error) {
		if email != "free@x.com" {
			t.Errorf("upgrade(%q)", email)
		}
		return authuc.Session{AccessToken: "new-tok", TokenType: "bearer", Premium: true}, nil
	}

	req := jsonRequest("POST", "/api/v1/auth/upgrade", "")
	req.Header.Set("Authorization", bearerToken(d, "free@x.com", false))

	rr := doRequest(newTestRouter(d), req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	resp := decodeBody[authuc.Session](t, rr)
	if !resp.Premium || resp.AccessToken != "new-tok" {
		t.Errorf("session = %+v", resp)
	}
}

func TestPreferences_Updated(t *testing.T) {
	d := newTestDeps()
	var got map[string]any
	d.accounts.preferencesFn = func(_ context.Context, email string, prefs map[string]any) error {
		if email != "a@x.com" {
			t.Errorf("email = %q", email)
		}
		got = prefs
		return nil
	}

	req := jsonRequest("PUT", "/api/v1/auth/preferences",
		`{"preferences":{"budget":"low","visa":true}}`)
	req.Header.Set("Authorization", bearerToken(d, "a@x.com", false))

	rr := doRequest(newTestRouter(d), req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got["budget"] != "low" || got["visa"] != true {
		t.Errorf("prefs = %+v", got)
	}
}

func TestHealth_DegradedMapsTo503(t *testing.T) {
	d := newTestDeps()
	d.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}

	rr := doRequest(newTestRouter(d), httptest.NewRequest("GET", "/health", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestHealth_HealthyIs200(t *testing.T) {
	d := newTestDeps()
	rr := doRequest(newTestRouter(d), httptest.NewRequest("GET", "/api/v1/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestStats(t *testing.T) {
	d := newTestDeps()
	d.health.stats = healthuc.Stats{
		Initialized: true,
		Documents:   128,
		Collection:  "cities",
		Model:       "text-embedding-3-small",
		Dimensions:  1536,
	}

	rr := doRequest(newTestRouter(d), httptest.NewRequest("GET", "/api/v1/stats", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	resp := decodeBody[healthuc.Stats](t, rr)
	if resp.Documents != 128 || !resp.Initialized {
		t.Errorf("stats = %+v", resp)
	}
}
