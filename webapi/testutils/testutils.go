// Package testutils runs the full HTTP stack against a throwaway store.
package testutils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amirasaad/finshare/pkg/app"
	"github.com/amirasaad/finshare/pkg/config"
	pkgtestutils "github.com/amirasaad/finshare/pkg/testutils"
	"github.com/amirasaad/finshare/webapi"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// TestUser is a user registered through the API.
type TestUser struct {
	ID       uuid.UUID
	Username string
	Email    string
	Password string
	Token    string
}

// E2ETestSuite gives each test a fresh database, service graph and fiber app.
type E2ETestSuite struct {
	suite.Suite
	Env *pkgtestutils.Env
	App *app.App
	Web *fiber.App
	Cfg *config.App
}

// TestConfig is the configuration the suite boots the app with.
func TestConfig() *config.App {
	return &config.App{
		Env: "test",
		Auth: &config.Auth{
			Strategy: "jwt",
			Jwt:      &config.Jwt{Secret: "test-secret", Expiry: time.Hour},
		},
		RateLimit: &config.RateLimit{MaxRequests: 10000, Window: time.Minute},
		EventBus:  &config.EventBus{Driver: "memory"},
		Ledger: &config.Ledger{
			MaterializedBalance: true,
			HistoryMonths:       6,
			TopCategories:       5,
		},
	}
}

func (s *E2ETestSuite) SetupTest() {
	s.Env = pkgtestutils.NewEnv(s.T())
	s.Cfg = TestConfig()
	s.App = app.New(&app.Deps{
		Uow:      s.Env.UoW,
		EventBus: s.Env.Bus,
		Logger:   s.Env.Logger,
	}, s.Cfg)
	s.Web = webapi.SetupApp(s.App)
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	return pkgtestutils.MakeRequest(s.Web, method, path, body, token)
}

// Decode reads a success envelope and unmarshals its data into out.
func (s *E2ETestSuite) Decode(resp *http.Response, out any) {
	defer resp.Body.Close() //nolint: errcheck
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var envelope struct {
		common.Response
		Data json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(raw, &envelope), string(raw))
	if out != nil {
		s.Require().NoError(json.Unmarshal(envelope.Data, out), string(raw))
	}
}

// Problem reads a problem details body.
func (s *E2ETestSuite) Problem(resp *http.Response) common.ProblemDetails {
	defer resp.Body.Close() //nolint: errcheck
	var pd common.ProblemDetails
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&pd))
	return pd
}

// Do sends a request, requires the given status and decodes the data into out.
func (s *E2ETestSuite) Do(method, path, body, token string, status int, out any) {
	resp := s.MakeRequest(method, path, body, token)
	if resp.StatusCode != status {
		defer resp.Body.Close() //nolint: errcheck
		raw, _ := io.ReadAll(resp.Body)
		s.Require().Failf("unexpected status", "%s %s: want %d, got %d: %s",
			method, path, status, resp.StatusCode, raw)
	}
	if status == fiber.StatusNoContent {
		_ = resp.Body.Close()
		return
	}
	s.Decode(resp, out)
}

// CreateTestUser registers a random user and logs it in.
func (s *E2ETestSuite) CreateTestUser() *TestUser {
	suffix := uuid.New().String()[:8]
	u := &TestUser{
		Username: "user_" + suffix,
		Email:    fmt.Sprintf("user_%s@example.com", suffix),
		Password: "password123",
	}
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, u.Username, u.Email, u.Password)
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	s.Do(fiber.MethodPost, "/auth/register", body, "", fiber.StatusCreated, &out)
	u.ID = out.User.ID
	u.Token = s.LoginUser(u.Email, u.Password)
	return u
}

// LoginUser logs in through the API and returns the token.
func (s *E2ETestSuite) LoginUser(identity, password string) string {
	body := fmt.Sprintf(`{"identity":%q,"password":%q}`, identity, password)
	var out struct {
		Token string `json:"token"`
	}
	s.Do(fiber.MethodPost, "/auth/login", body, "", fiber.StatusOK, &out)
	s.Require().NotEmpty(out.Token)
	return out.Token
}

// IDOf extracts the "id" field of a created resource.
type IDOf struct {
	ID uuid.UUID `json:"id"`
}

// CreateAccount creates a checking account and returns its ID.
func (s *E2ETestSuite) CreateAccount(token, name, initial string) uuid.UUID {
	var out IDOf
	body := fmt.Sprintf(`{"name":%q,"type":"checking","initial_balance":%q}`, name, initial)
	s.Do(fiber.MethodPost, "/accounts", body, token, fiber.StatusCreated, &out)
	return out.ID
}

// CreateCategory creates a category of typ and returns its ID.
func (s *E2ETestSuite) CreateCategory(token, name, typ string) uuid.UUID {
	var out IDOf
	body := fmt.Sprintf(`{"name":%q,"type":%q}`, name, typ)
	s.Do(fiber.MethodPost, "/categories", body, token, fiber.StatusCreated, &out)
	return out.ID
}

// CreateGoal creates a goal with a target and returns its ID.
func (s *E2ETestSuite) CreateGoal(token, name, target string) uuid.UUID {
	var out IDOf
	body := fmt.Sprintf(`{"name":%q,"target_amount":%q}`, name, target)
	s.Do(fiber.MethodPost, "/goals", body, token, fiber.StatusCreated, &out)
	return out.ID
}

// Balance fetches an account's current balance.
func (s *E2ETestSuite) Balance(token string, accountID uuid.UUID) decimal.Decimal {
	var out struct {
		Balance decimal.Decimal `json:"balance"`
	}
	s.Do(fiber.MethodGet, "/accounts/"+accountID.String()+"/balance", "", token, fiber.StatusOK, &out)
	return out.Balance
}

// RequireAmount compares decimals by value.
func (s *E2ETestSuite) RequireAmount(want string, got decimal.Decimal) {
	s.T().Helper()
	s.Require().True(decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
