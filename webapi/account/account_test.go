package account_test

import (
	"fmt"
	"testing"

	"github.com/amirasaad/finshare/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccountTestSuite struct {
	testutils.E2ETestSuite
	user *testutils.TestUser
}

func (s *AccountTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.user = s.CreateTestUser()
}

func TestAccountTestSuite(t *testing.T) {
	suite.Run(t, new(AccountTestSuite))
}

type accountBody struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	IsActive       bool            `json:"is_active"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

func (s *AccountTestSuite) TestCreateAccount() {
	s.Run("Create account successfully", func() {
		var out accountBody
		body := `{"name":"Main","type":"savings","initial_balance":"250.50"}`
		s.Do(fiber.MethodPost, "/accounts", body, s.user.Token, fiber.StatusCreated, &out)
		s.Equal("Main", out.Name)
		s.Equal("savings", out.Type)
		s.True(out.IsActive)
		s.RequireAmount("250.50", s.Balance(s.user.Token, out.ID))
	})

	s.Run("Unknown type is rejected", func() {
		body := `{"name":"Main","type":"piggy"}`
		resp := s.MakeRequest(fiber.MethodPost, "/accounts", body, s.user.Token)
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("Unauthenticated", func() {
		resp := s.MakeRequest(fiber.MethodPost, "/accounts", `{"name":"x","type":"wallet"}`, "")
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func (s *AccountTestSuite) TestListAndGet() {
	first := s.CreateAccount(s.user.Token, "Checking", "100")
	second := s.CreateAccount(s.user.Token, "Wallet", "20")
	s.Do(fiber.MethodPatch, "/accounts/"+second.String()+"/toggle-active", "", s.user.Token, fiber.StatusOK, nil)

	var all []accountBody
	s.Do(fiber.MethodGet, "/accounts", "", s.user.Token, fiber.StatusOK, &all)
	s.Len(all, 2)

	var active []accountBody
	s.Do(fiber.MethodGet, "/accounts/active", "", s.user.Token, fiber.StatusOK, &active)
	s.Require().Len(active, 1)
	s.Equal(first, active[0].ID)

	var one accountBody
	s.Do(fiber.MethodGet, "/accounts/"+first.String(), "", s.user.Token, fiber.StatusOK, &one)
	s.True(decimal.NewFromInt(100).Equal(one.CurrentBalance))
}

func (s *AccountTestSuite) TestUpdateAccount() {
	id := s.CreateAccount(s.user.Token, "Old", "0")
	var out accountBody
	s.Do(fiber.MethodPut, "/accounts/"+id.String(), `{"name":"New","type":"wallet"}`, s.user.Token, fiber.StatusOK, &out)
	s.Equal("New", out.Name)
	s.Equal("wallet", out.Type)
}

func (s *AccountTestSuite) TestOtherUsersAccount() {
	id := s.CreateAccount(s.user.Token, "Mine", "10")
	other := s.CreateTestUser()

	for _, path := range []string{"/accounts/%s", "/accounts/%s/balance"} {
		resp := s.MakeRequest(fiber.MethodGet, fmt.Sprintf(path, id), "", other.Token)
		s.Equal(fiber.StatusForbidden, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
	resp := s.MakeRequest(fiber.MethodDelete, "/accounts/"+id.String(), "", other.Token)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *AccountTestSuite) TestDeleteAccount() {
	s.Run("Empty account is deleted", func() {
		id := s.CreateAccount(s.user.Token, "Temp", "0")
		s.Do(fiber.MethodDelete, "/accounts/"+id.String(), "", s.user.Token, fiber.StatusNoContent, nil)
		resp := s.MakeRequest(fiber.MethodGet, "/accounts/"+id.String(), "", s.user.Token)
		s.Equal(fiber.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("Account with transactions cannot be deleted", func() {
		id := s.CreateAccount(s.user.Token, "Busy", "0")
		cat := s.CreateCategory(s.user.Token, "Pay", "income")
		body := fmt.Sprintf(`{"account_id":%q,"category_id":%q,"amount":"10","description":"pay","type":"income"}`, id, cat)
		s.Do(fiber.MethodPost, "/transactions", body, s.user.Token, fiber.StatusCreated, nil)

		resp := s.MakeRequest(fiber.MethodDelete, "/accounts/"+id.String(), "", s.user.Token)
		s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("Malformed id", func() {
		resp := s.MakeRequest(fiber.MethodDelete, "/accounts/not-a-uuid", "", s.user.Token)
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
