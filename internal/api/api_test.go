package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/innobridge/platform/internal/auth"
	"github.com/innobridge/platform/internal/catalog"
	"github.com/innobridge/platform/internal/config"
	"github.com/innobridge/platform/internal/events"
	"github.com/innobridge/platform/internal/models"
	"github.com/innobridge/platform/internal/storage"
)

type testEnv struct {
	ts     *httptest.Server
	repo   *storage.MemoryRepository
	tokens *auth.TokenManager
}

func newTestEnv(t *testing.T, listing config.ListingConfig) *testEnv {
	t.Helper()

	repo := storage.NewMemoryRepository()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	server := NewServer(repo, tokens, catalog.New(), events.NewHub(), nil, listing)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, repo: repo, tokens: tokens}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return resp.StatusCode, env
}

// signup creates an account through the API and returns its token and
// principal.
func (e *testEnv) signup(t *testing.T, role models.Role, email, name string) (string, *models.Principal) {
	t.Helper()

	status, env := e.do(t, "POST", "/api/v1/auth/signup", "", models.SignupRequest{
		Email:       email,
		Password:    "password123",
		DisplayName: name,
		Role:        role,
	})
	if status != http.StatusCreated {
		t.Fatalf("signup %s: got status %d", email, status)
	}

	var out models.AuthResponse
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}

	return out.Token, out.Principal
}

func (e *testEnv) createChallenge(t *testing.T, token string, req models.CreateChallengeRequest) *models.Challenge {
	t.Helper()

	status, env := e.do(t, "POST", "/api/v1/industry/challenges", token, req)
	if status != http.StatusCreated {
		t.Fatalf("create challenge: got status %d (error %+v)", status, env.Error)
	}

	var c models.Challenge
	if err := json.Unmarshal(env.Data, &c); err != nil {
		t.Fatalf("decode challenge: %v", err)
	}
	return &c
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	status, env := e.do(t, "GET", "/health", "", nil)
	if status != http.StatusOK || !env.Success {
		t.Errorf("health: got status %d success %v", status, env.Success)
	}

	status, _ = e.do(t, "GET", "/ready", "", nil)
	if status != http.StatusOK {
		t.Errorf("ready: got status %d", status)
	}
}

func TestListDomains(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	status, env := e.do(t, "GET", "/api/v1/domains", "", nil)
	if status != http.StatusOK {
		t.Fatalf("got status %d", status)
	}

	var out struct {
		Domains []catalog.Domain `json:"domains"`
		Total   int              `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 8 {
		t.Errorf("got %d domains, want 8", out.Total)
	}
}

func TestSignupValidation(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	cases := []struct {
		name string
		req  models.SignupRequest
	}{
		{"missing email", models.SignupRequest{Password: "password123", DisplayName: "X", Role: models.RoleStartup}},
		{"short password", models.SignupRequest{Email: "a@b.com", Password: "short", DisplayName: "X", Role: models.RoleStartup}},
		{"missing name", models.SignupRequest{Email: "a@b.com", Password: "password123", Role: models.RoleStartup}},
		{"bad role", models.SignupRequest{Email: "a@b.com", Password: "password123", DisplayName: "X", Role: "admin"}},
	}

	for _, tc := range cases {
		status, env := e.do(t, "POST", "/api/v1/auth/signup", "", tc.req)
		if status != http.StatusBadRequest {
			t.Errorf("%s: got status %d, want 400", tc.name, status)
		}
		if env.Error == nil || env.Error.Code != "validation_error" {
			t.Errorf("%s: got error %+v, want validation_error", tc.name, env.Error)
		}
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})
	e.signup(t, models.RoleIndustry, "taken@example.com", "First")

	status, env := e.do(t, "POST", "/api/v1/auth/signup", "", models.SignupRequest{
		Email:       "taken@example.com",
		Password:    "password123",
		DisplayName: "Second",
		Role:        models.RoleStartup,
	})
	if status != http.StatusConflict || env.Error == nil || env.Error.Code != "email_taken" {
		t.Errorf("got status %d error %+v, want 409 email_taken", status, env.Error)
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})
	e.signup(t, models.RoleStartup, "login@example.com", "Login Co")

	status, _ := e.do(t, "POST", "/api/v1/auth/login", "", models.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("wrong password: got status %d, want 401", status)
	}

	status, env := e.do(t, "POST", "/api/v1/auth/login", "", models.LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("login: got status %d", status)
	}

	var out models.AuthResponse
	json.Unmarshal(env.Data, &out)
	if out.Token == "" || out.Principal == nil || out.Principal.Role != models.RoleStartup {
		t.Errorf("login response incomplete: %+v", out)
	}
}

func TestAccessGate(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	industryToken, _ := e.signup(t, models.RoleIndustry, "ind@example.com", "Acme")
	startupToken, _ := e.signup(t, models.RoleStartup, "st@example.com", "Rocket")

	cases := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"no token on protected route", "/api/v1/industry/challenges", "", http.StatusUnauthorized},
		{"garbage token", "/api/v1/industry/challenges", "garbage", http.StatusUnauthorized},
		{"startup on industry route", "/api/v1/industry/challenges", startupToken, http.StatusForbidden},
		{"industry on startup route", "/api/v1/startup/challenges", industryToken, http.StatusForbidden},
		{"industry on industry route", "/api/v1/industry/challenges", industryToken, http.StatusOK},
		{"startup on startup route", "/api/v1/startup/challenges", startupToken, http.StatusOK},
	}

	for _, tc := range cases {
		status, _ := e.do(t, "GET", tc.path, tc.token, nil)
		if status != tc.status {
			t.Errorf("%s: got status %d, want %d", tc.name, status, tc.status)
		}
	}
}

// A principal whose profile record carries no role passes both role checks:
// the gate only rejects a mismatched role, never a missing one.
func TestEmptyRolePassesRoleCheck(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	roleless := &models.Principal{
		ID:          uuid.NewString(),
		Email:       "noverole@example.com",
		DisplayName: "No Role",
		Role:        "",
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.repo.CreatePrincipal(context.Background(), roleless); err != nil {
		t.Fatalf("create principal: %v", err)
	}

	token, err := e.tokens.Issue(roleless.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	for _, path := range []string{"/api/v1/industry/challenges", "/api/v1/startup/challenges"} {
		status, _ := e.do(t, "GET", path, token, nil)
		if status != http.StatusOK {
			t.Errorf("%s with empty role: got status %d, want 200", path, status)
		}
	}
}

func TestCreateChallengeValidation(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})
	token, _ := e.signup(t, models.RoleIndustry, "ind@example.com", "Acme")

	valid := models.CreateChallengeRequest{
		Title:           "Water Filtration",
		Domain:          "Sustainability",
		Description:     "Low-cost filtration for rural areas",
		ExpectedOutcome: "Working prototype",
		Deadline:        "2025-06-01",
	}

	cases := []struct {
		name   string
		mutate func(*models.CreateChallengeRequest)
	}{
		{"missing title", func(r *models.CreateChallengeRequest) { r.Title = "" }},
		{"unknown domain", func(r *models.CreateChallengeRequest) { r.Domain = "Blockchain" }},
		{"missing description", func(r *models.CreateChallengeRequest) { r.Description = "" }},
		{"bad deadline", func(r *models.CreateChallengeRequest) { r.Deadline = "June 1st" }},
	}

	for _, tc := range cases {
		req := valid
		tc.mutate(&req)
		status, env := e.do(t, "POST", "/api/v1/industry/challenges", token, req)
		if status != http.StatusBadRequest {
			t.Errorf("%s: got status %d, want 400 (error %+v)", tc.name, status, env.Error)
		}
	}

	// The valid request goes through and is stamped open.
	c := e.createChallenge(t, token, valid)
	if c.Status != models.ChallengeOpen {
		t.Errorf("new challenge status: got %s, want open", c.Status)
	}
	if c.CreatedAt.IsZero() {
		t.Error("new challenge has no created_at")
	}
}

func TestMarketplaceFlow(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	industryToken, _ := e.signup(t, models.RoleIndustry, "acme@example.com", "Acme Industries")
	startupToken, startup := e.signup(t, models.RoleStartup, "rocket@example.com", "Rocket Labs")

	challenge := e.createChallenge(t, industryToken, models.CreateChallengeRequest{
		Title:           "Water Filtration",
		Domain:          "Sustainability",
		Description:     "Low-cost filtration for rural areas",
		ExpectedOutcome: "Working prototype",
		Budget:          "$50k",
		Deadline:        "2025-06-01",
	})

	// The startup sees it on the board.
	status, env := e.do(t, "GET", "/api/v1/startup/challenges", startupToken, nil)
	if status != http.StatusOK {
		t.Fatalf("board: got status %d", status)
	}
	var board struct {
		Challenges []*models.Challenge `json:"challenges"`
		Total      int                 `json:"total"`
	}
	json.Unmarshal(env.Data, &board)
	if board.Total != 1 || board.Challenges[0].ID != challenge.ID {
		t.Fatalf("board: got %d challenges", board.Total)
	}
	if board.Challenges[0].OwnerName != "Acme Industries" {
		t.Errorf("owner name not denormalized: %q", board.Challenges[0].OwnerName)
	}

	// Challenge view, nothing submitted yet.
	status, env = e.do(t, "GET", "/api/v1/startup/challenges/"+challenge.ID, startupToken, nil)
	if status != http.StatusOK {
		t.Fatalf("challenge view: got status %d", status)
	}
	var view struct {
		Challenge        *models.Challenge `json:"challenge"`
		AlreadySubmitted bool              `json:"already_submitted"`
	}
	json.Unmarshal(env.Data, &view)
	if view.AlreadySubmitted {
		t.Error("already_submitted true before any submission")
	}

	// Submit a proposal.
	status, env = e.do(t, "POST", "/api/v1/startup/challenges/"+challenge.ID+"/proposals", startupToken,
		models.SubmitProposalRequest{Content: "Use membrane X"})
	if status != http.StatusCreated {
		t.Fatalf("submit proposal: got status %d (error %+v)", status, env.Error)
	}
	var proposal models.Proposal
	json.Unmarshal(env.Data, &proposal)
	if proposal.Status != models.ProposalPending {
		t.Errorf("new proposal status: got %s, want pending", proposal.Status)
	}
	if proposal.ChallengeTitle != "Water Filtration" || proposal.StartupEmail != "rocket@example.com" {
		t.Errorf("proposal denormalized fields missing: %+v", proposal)
	}

	// The view now reports the submission.
	_, env = e.do(t, "GET", "/api/v1/startup/challenges/"+challenge.ID, startupToken, nil)
	json.Unmarshal(env.Data, &view)
	if !view.AlreadySubmitted {
		t.Error("already_submitted false after submission")
	}

	// A second submission is refused outright.
	status, env = e.do(t, "POST", "/api/v1/startup/challenges/"+challenge.ID+"/proposals", startupToken,
		models.SubmitProposalRequest{Content: "Use membrane Y"})
	if status != http.StatusConflict || env.Error == nil || env.Error.Code != "duplicate_proposal" {
		t.Errorf("duplicate submit: got status %d error %+v, want 409 duplicate_proposal", status, env.Error)
	}

	// The industry review view shows exactly one pending proposal.
	status, env = e.do(t, "GET", "/api/v1/industry/challenges/"+challenge.ID, industryToken, nil)
	if status != http.StatusOK {
		t.Fatalf("review view: got status %d", status)
	}
	var review struct {
		Challenge *models.Challenge  `json:"challenge"`
		Proposals []*models.Proposal `json:"proposals"`
	}
	json.Unmarshal(env.Data, &review)
	if len(review.Proposals) != 1 || review.Proposals[0].Status != models.ProposalPending {
		t.Fatalf("review view: got %d proposals", len(review.Proposals))
	}

	// Accept it.
	status, env = e.do(t, "POST", "/api/v1/industry/proposals/"+proposal.ID+"/decision", industryToken,
		models.DecisionRequest{Status: models.ProposalAccepted})
	if status != http.StatusOK {
		t.Fatalf("decision: got status %d (error %+v)", status, env.Error)
	}

	// The startup's tracking view shows the accepted proposal.
	status, env = e.do(t, "GET", "/api/v1/startup/proposals", startupToken, nil)
	if status != http.StatusOK {
		t.Fatalf("my proposals: got status %d", status)
	}
	var mine struct {
		Proposals []*models.Proposal `json:"proposals"`
	}
	json.Unmarshal(env.Data, &mine)
	if len(mine.Proposals) != 1 {
		t.Fatalf("my proposals: got %d, want 1", len(mine.Proposals))
	}
	got := mine.Proposals[0]
	if got.Status != models.ProposalAccepted || got.StartupID != startup.ID {
		t.Errorf("tracked proposal: got status %s startup %s", got.Status, got.StartupID)
	}

	// A second decision on the same proposal is refused.
	status, env = e.do(t, "POST", "/api/v1/industry/proposals/"+proposal.ID+"/decision", industryToken,
		models.DecisionRequest{Status: models.ProposalRejected})
	if status != http.StatusConflict || env.Error == nil || env.Error.Code != "already_decided" {
		t.Errorf("re-decision: got status %d error %+v, want 409 already_decided", status, env.Error)
	}
}

func TestBoardFilters(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	industryToken, _ := e.signup(t, models.RoleIndustry, "ind@example.com", "Acme")
	startupToken, _ := e.signup(t, models.RoleStartup, "st@example.com", "Rocket")

	seed := []models.CreateChallengeRequest{
		{Title: "A Cure for Crop Blight", Domain: "Agriculture", Description: "fungal resistance", ExpectedOutcome: "x", Deadline: "2025-06-01"},
		{Title: "Telemedicine Kiosks", Domain: "Healthcare", Description: "rural CURE delivery", ExpectedOutcome: "x", Deadline: "2025-06-01"},
		{Title: "Cold Chain Logistics", Domain: "Logistics", Description: "vaccine transport", ExpectedOutcome: "x", Deadline: "2025-06-01"},
	}
	for _, req := range seed {
		e.createChallenge(t, industryToken, req)
	}

	fetch := func(query string) []*models.Challenge {
		t.Helper()
		status, env := e.do(t, "GET", "/api/v1/startup/challenges"+query, startupToken, nil)
		if status != http.StatusOK {
			t.Fatalf("board %q: got status %d", query, status)
		}
		var out struct {
			Challenges []*models.Challenge `json:"challenges"`
		}
		json.Unmarshal(env.Data, &out)
		return out.Challenges
	}

	if got := fetch(""); len(got) != 3 {
		t.Errorf("unfiltered board: got %d, want 3", len(got))
	}

	// Case-insensitive over title and description.
	if got := fetch("?search=cure"); len(got) != 2 {
		t.Errorf("search=cure: got %d, want 2", len(got))
	}

	if got := fetch("?domain=Healthcare"); len(got) != 1 || got[0].Domain != "Healthcare" {
		t.Errorf("domain filter: got %d", len(got))
	}

	if got := fetch("?search=cure&domain=Agriculture"); len(got) != 1 || got[0].Title != "A Cure for Crop Blight" {
		t.Errorf("combined filter: got %d", len(got))
	}

	if got := fetch("?search=nomatch"); len(got) != 0 {
		t.Errorf("no-match search: got %d, want 0", len(got))
	}
}

func TestBoardOpenOnly(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{OpenOnly: true})

	industryToken, _ := e.signup(t, models.RoleIndustry, "ind@example.com", "Acme")
	startupToken, _ := e.signup(t, models.RoleStartup, "st@example.com", "Rocket")

	open := e.createChallenge(t, industryToken, models.CreateChallengeRequest{
		Title: "Open One", Domain: "Fintech", Description: "d", ExpectedOutcome: "o", Deadline: "2025-06-01",
	})
	closed := e.createChallenge(t, industryToken, models.CreateChallengeRequest{
		Title: "Closed One", Domain: "Fintech", Description: "d", ExpectedOutcome: "o", Deadline: "2025-06-01",
	})
	if err := e.repo.CloseChallenge(context.Background(), closed.ID); err != nil {
		t.Fatalf("close challenge: %v", err)
	}

	status, env := e.do(t, "GET", "/api/v1/startup/challenges", startupToken, nil)
	if status != http.StatusOK {
		t.Fatalf("board: got status %d", status)
	}
	var out struct {
		Challenges []*models.Challenge `json:"challenges"`
	}
	json.Unmarshal(env.Data, &out)
	if len(out.Challenges) != 1 || out.Challenges[0].ID != open.ID {
		t.Errorf("open-only board: got %d challenges", len(out.Challenges))
	}
}

func TestReviewScopedToOwner(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	ownerToken, _ := e.signup(t, models.RoleIndustry, "owner@example.com", "Owner Co")
	otherToken, _ := e.signup(t, models.RoleIndustry, "other@example.com", "Other Co")
	startupToken, _ := e.signup(t, models.RoleStartup, "st@example.com", "Rocket")

	challenge := e.createChallenge(t, ownerToken, models.CreateChallengeRequest{
		Title: "Water Filtration", Domain: "Sustainability", Description: "d", ExpectedOutcome: "o", Deadline: "2025-06-01",
	})

	status, env := e.do(t, "POST", "/api/v1/startup/challenges/"+challenge.ID+"/proposals", startupToken,
		models.SubmitProposalRequest{Content: "Use membrane X"})
	if status != http.StatusCreated {
		t.Fatalf("submit proposal: got status %d", status)
	}
	var proposal models.Proposal
	json.Unmarshal(env.Data, &proposal)

	// Another industry account cannot open the review view...
	status, _ = e.do(t, "GET", "/api/v1/industry/challenges/"+challenge.ID, otherToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("foreign review view: got status %d, want 404", status)
	}

	// ...and cannot decide its proposals.
	status, env = e.do(t, "POST", "/api/v1/industry/proposals/"+proposal.ID+"/decision", otherToken,
		models.DecisionRequest{Status: models.ProposalAccepted})
	if status != http.StatusForbidden {
		t.Errorf("foreign decision: got status %d error %+v, want 403", status, env.Error)
	}

	// The proposal is still pending for the real owner.
	_, env = e.do(t, "GET", "/api/v1/industry/challenges/"+challenge.ID, ownerToken, nil)
	var review struct {
		Proposals []*models.Proposal `json:"proposals"`
	}
	json.Unmarshal(env.Data, &review)
	if len(review.Proposals) != 1 || review.Proposals[0].Status != models.ProposalPending {
		t.Errorf("proposal state changed by a foreign decision attempt")
	}
}

func TestChallengeNotFound(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	industryToken, _ := e.signup(t, models.RoleIndustry, "ind@example.com", "Acme")
	startupToken, _ := e.signup(t, models.RoleStartup, "st@example.com", "Rocket")

	bogus := uuid.NewString()

	status, _ := e.do(t, "GET", "/api/v1/startup/challenges/"+bogus, startupToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("startup view of missing challenge: got %d, want 404", status)
	}

	status, _ = e.do(t, "GET", "/api/v1/industry/challenges/"+bogus, industryToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("industry view of missing challenge: got %d, want 404", status)
	}

	status, _ = e.do(t, "POST", "/api/v1/startup/challenges/"+bogus+"/proposals", startupToken,
		models.SubmitProposalRequest{Content: "anything"})
	if status != http.StatusNotFound {
		t.Errorf("proposal against missing challenge: got %d, want 404", status)
	}

	status, _ = e.do(t, "POST", fmt.Sprintf("/api/v1/industry/proposals/%s/decision", bogus), industryToken,
		models.DecisionRequest{Status: models.ProposalAccepted})
	if status != http.StatusNotFound {
		t.Errorf("decision on missing proposal: got %d, want 404", status)
	}
}

func TestDecisionValidation(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})

	industryToken, _ := e.signup(t, models.RoleIndustry, "ind@example.com", "Acme")
	startupToken, _ := e.signup(t, models.RoleStartup, "st@example.com", "Rocket")

	challenge := e.createChallenge(t, industryToken, models.CreateChallengeRequest{
		Title: "T", Domain: "Other", Description: "d", ExpectedOutcome: "o", Deadline: "2025-06-01",
	})
	status, env := e.do(t, "POST", "/api/v1/startup/challenges/"+challenge.ID+"/proposals", startupToken,
		models.SubmitProposalRequest{Content: "c"})
	if status != http.StatusCreated {
		t.Fatalf("submit: got %d", status)
	}
	var proposal models.Proposal
	json.Unmarshal(env.Data, &proposal)

	// "pending" is not a decision, nor is anything else.
	for _, bad := range []models.ProposalStatus{models.ProposalPending, "approved", ""} {
		status, _ := e.do(t, "POST", "/api/v1/industry/proposals/"+proposal.ID+"/decision", industryToken,
			models.DecisionRequest{Status: bad})
		if status != http.StatusBadRequest {
			t.Errorf("decision %q: got status %d, want 400", bad, status)
		}
	}
}

type proposalLookupFailingRepo struct {
	storage.Repository
}

func (r *proposalLookupFailingRepo) GetProposalForStartup(ctx context.Context, challengeID, startupID string) (*models.Proposal, error) {
	return nil, errors.New("connection reset")
}

func TestStartupChallengeViewLookupFailure(t *testing.T) {
	repo := storage.NewMemoryRepository()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	server := NewServer(
		&proposalLookupFailingRepo{Repository: repo},
		tokens,
		catalog.New(),
		events.NewHub(),
		nil,
		config.ListingConfig{},
	)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	e := &testEnv{ts: ts, repo: repo, tokens: tokens}

	industryToken, _ := e.signup(t, models.RoleIndustry, "ind@example.com", "Acme")
	startupToken, _ := e.signup(t, models.RoleStartup, "st@example.com", "Rocket")

	challenge := e.createChallenge(t, industryToken, models.CreateChallengeRequest{
		Title: "T", Domain: "Other", Description: "d", ExpectedOutcome: "o", Deadline: "2025-06-01",
	})

	status, env := e.do(t, "GET", "/api/v1/startup/challenges/"+challenge.ID, startupToken, nil)
	if status != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", status)
	}
	if env.Error == nil || env.Error.Code != "internal_error" {
		t.Fatalf("got error %+v, want internal_error", env.Error)
	}
	if env.Error.Message != "failed to check existing proposal" {
		t.Errorf("got message %q, want the proposal-lookup message", env.Error.Message)
	}
}

func TestMeEndpoint(t *testing.T) {
	e := newTestEnv(t, config.ListingConfig{})
	token, principal := e.signup(t, models.RoleIndustry, "me@example.com", "Me Co")

	status, env := e.do(t, "GET", "/api/v1/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: got status %d", status)
	}

	var got models.Principal
	json.Unmarshal(env.Data, &got)
	if got.ID != principal.ID || got.Role != models.RoleIndustry {
		t.Errorf("me: got %+v", got)
	}
	if got.PasswordHash != "" {
		t.Error("password hash leaked in response")
	}
}
