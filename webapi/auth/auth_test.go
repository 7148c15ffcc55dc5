package auth_test

import (
	"testing"

	"github.com/amirasaad/finshare/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthTestSuite struct {
	testutils.E2ETestSuite
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

func (s *AuthTestSuite) TestRegister() {
	s.Run("Register returns a token and the user", func() {
		var out struct {
			Token string `json:"token"`
			User  struct {
				ID       uuid.UUID `json:"id"`
				Username string    `json:"username"`
				Email    string    `json:"email"`
			} `json:"user"`
		}
		body := `{"username":"alice","email":"Alice@Example.com","password":"password123"}`
		s.Do(fiber.MethodPost, "/auth/register", body, "", fiber.StatusCreated, &out)
		s.NotEmpty(out.Token)
		s.NotEqual(uuid.Nil, out.User.ID)
		s.Equal("alice@example.com", out.User.Email)
	})

	s.Run("Duplicate email conflicts", func() {
		body := `{"username":"alice2","email":"alice@example.com","password":"password123"}`
		resp := s.MakeRequest(fiber.MethodPost, "/auth/register", body, "")
		s.Equal(fiber.StatusConflict, resp.StatusCode)
		s.Equal(fiber.StatusConflict, s.Problem(resp).Status)
	})

	s.Run("Invalid body is rejected", func() {
		body := `{"username":"al","email":"not-an-email","password":"123"}`
		resp := s.MakeRequest(fiber.MethodPost, "/auth/register", body, "")
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
		pd := s.Problem(resp)
		s.NotNil(pd.Errors)
	})
}

func (s *AuthTestSuite) TestLogin() {
	u := s.CreateTestUser()

	s.Run("Login by username", func() {
		s.NotEmpty(s.LoginUser(u.Username, u.Password))
	})

	s.Run("Wrong password is unauthorized", func() {
		body := `{"identity":"` + u.Email + `","password":"wrong-password"}`
		resp := s.MakeRequest(fiber.MethodPost, "/auth/login", body, "")
		s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("Unknown user is unauthorized", func() {
		body := `{"identity":"nobody@example.com","password":"password123"}`
		resp := s.MakeRequest(fiber.MethodPost, "/auth/login", body, "")
		s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func (s *AuthTestSuite) TestMe() {
	u := s.CreateTestUser()

	s.Run("Returns the current user", func() {
		var out struct {
			ID       uuid.UUID `json:"id"`
			Username string    `json:"username"`
		}
		s.Do(fiber.MethodGet, "/auth/me", "", u.Token, fiber.StatusOK, &out)
		s.Equal(u.ID, out.ID)
		s.Equal(u.Username, out.Username)
	})

	s.Run("Missing token", func() {
		resp := s.MakeRequest(fiber.MethodGet, "/auth/me", "", "")
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("Garbage token", func() {
		resp := s.MakeRequest(fiber.MethodGet, "/auth/me", "", "not.a.jwt")
		s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
