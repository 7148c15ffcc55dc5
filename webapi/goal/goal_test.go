package goal_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/amirasaad/finshare/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type GoalTestSuite struct {
	testutils.E2ETestSuite
	owner   *testutils.TestUser
	partner *testutils.TestUser
}

func (s *GoalTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.owner = s.CreateTestUser()
	s.partner = s.CreateTestUser()
}

func TestGoalTestSuite(t *testing.T) {
	suite.Run(t, new(GoalTestSuite))
}

type goalBody struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	TargetAmount       decimal.Decimal `json:"target_amount"`
	CurrentAmount      decimal.Decimal `json:"current_amount"`
	IsCompleted        bool            `json:"is_completed"`
	IsOwner            bool            `json:"is_owner"`
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
	TargetDate         *time.Time      `json:"target_date"`
}

type goalUser struct {
	UserID  uuid.UUID `json:"user_id"`
	IsOwner bool      `json:"is_owner"`
}

func (s *GoalTestSuite) linkUsers() {
	var g struct {
		InviteCode string `json:"invite_code"`
	}
	s.Do(fiber.MethodPost, "/groups", `{"name":"Us"}`, s.owner.Token, fiber.StatusCreated, &g)
	s.Do(fiber.MethodPost, "/groups/join", fmt.Sprintf(`{"invite_code":%q}`, g.InviteCode), s.partner.Token, fiber.StatusOK, nil)
}

func (s *GoalTestSuite) TestCreateAndList() {
	s.Run("Create goal", func() {
		var out goalBody
		body := `{"name":"Car","target_amount":"5000","current_amount":"1000","target_date":"2099-12-31"}`
		s.Do(fiber.MethodPost, "/goals", body, s.owner.Token, fiber.StatusCreated, &out)
		s.Equal("Car", out.Name)
		s.True(out.IsOwner)
		s.True(decimal.NewFromInt(20).Equal(out.ProgressPercentage))
	})

	s.Run("Starting complete", func() {
		var out goalBody
		body := `{"name":"Done","target_amount":"10","current_amount":"10"}`
		s.Do(fiber.MethodPost, "/goals", body, s.owner.Token, fiber.StatusCreated, &out)
		s.True(out.IsCompleted)
	})

	s.Run("Non-positive target", func() {
		resp := s.MakeRequest(fiber.MethodPost, "/goals", `{"name":"Bad","target_amount":"0"}`, s.owner.Token)
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})

	var all, active, completed []goalBody
	s.Do(fiber.MethodGet, "/goals", "", s.owner.Token, fiber.StatusOK, &all)
	s.Do(fiber.MethodGet, "/goals/active", "", s.owner.Token, fiber.StatusOK, &active)
	s.Do(fiber.MethodGet, "/goals/completed", "", s.owner.Token, fiber.StatusOK, &completed)
	s.Len(all, 2)
	s.Len(active, 1)
	s.Len(completed, 1)
}

func (s *GoalTestSuite) TestUpdateAndDelete() {
	id := s.CreateGoal(s.owner.Token, "Laptop", "100")
	path := "/goals/" + id.String()

	var out goalBody
	s.Do(fiber.MethodPut, path, `{"name":"New laptop","target_amount":"150"}`, s.owner.Token, fiber.StatusOK, &out)
	s.Equal("New laptop", out.Name)
	s.True(decimal.NewFromInt(150).Equal(out.TargetAmount))

	other := s.CreateTestUser()
	resp := s.MakeRequest(fiber.MethodPut, path, `{"name":"Mine"}`, other.Token)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	s.Do(fiber.MethodPut, path, `{"target_date":"2099-12-31"}`, s.owner.Token, fiber.StatusOK, &out)
	s.Require().NotNil(out.TargetDate)
	s.Equal("2099-12-31", out.TargetDate.Format(time.DateOnly))

	out = goalBody{}
	s.Do(fiber.MethodPut, path, `{"target_date":""}`, s.owner.Token, fiber.StatusOK, &out)
	s.Nil(out.TargetDate)
	s.Equal("New laptop", out.Name)

	s.Do(fiber.MethodPut, path, `{"target_date":"someday"}`, s.owner.Token, fiber.StatusBadRequest, nil)

	s.Do(fiber.MethodDelete, path, "", s.owner.Token, fiber.StatusNoContent, nil)
	resp = s.MakeRequest(fiber.MethodGet, path, "", s.owner.Token)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *GoalTestSuite) TestSharing() {
	id := s.CreateGoal(s.owner.Token, "Holiday", "300")
	path := "/goals/" + id.String()
	share := fmt.Sprintf(`{"user_ids":[%q]}`, s.partner.ID)

	s.Run("Cannot share outside a group", func() {
		resp := s.MakeRequest(fiber.MethodPost, path+"/share", share, s.owner.Token)
		s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.linkUsers()

	s.Run("Partner has no access before sharing", func() {
		resp := s.MakeRequest(fiber.MethodGet, path, "", s.partner.Token)
		s.Equal(fiber.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	var users []goalUser
	s.Do(fiber.MethodPost, path+"/share", share, s.owner.Token, fiber.StatusOK, &users)
	s.Len(users, 2)

	s.Run("Partner sees and funds the goal", func() {
		var shared []goalBody
		s.Do(fiber.MethodGet, "/goals/shared", "", s.partner.Token, fiber.StatusOK, &shared)
		s.Require().Len(shared, 1)
		s.False(shared[0].IsOwner)

		var available []goalBody
		s.Do(fiber.MethodGet, "/goals/for-transaction", "", s.partner.Token, fiber.StatusOK, &available)
		s.Len(available, 1)

		account := s.CreateAccount(s.partner.Token, "Wallet", "500")
		category := s.CreateCategory(s.partner.Token, "Savings", "expense")
		body := fmt.Sprintf(
			`{"account_id":%q,"category_id":%q,"amount":"300","description":"chip in","type":"goal_deposit","goal_id":%q}`,
			account, category, id)
		s.Do(fiber.MethodPost, "/transactions", body, s.partner.Token, fiber.StatusCreated, nil)
		s.RequireAmount("200", s.Balance(s.partner.Token, account))

		var g goalBody
		s.Do(fiber.MethodGet, path, "", s.owner.Token, fiber.StatusOK, &g)
		s.True(g.IsCompleted)
		s.True(decimal.NewFromInt(300).Equal(g.CurrentAmount))
	})

	s.Run("Partner cannot manage sharing", func() {
		resp := s.MakeRequest(fiber.MethodDelete, path+"/share/"+s.owner.ID.String(), "", s.partner.Token)
		s.Equal(fiber.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("Owner cannot be unshared", func() {
		resp := s.MakeRequest(fiber.MethodDelete, path+"/share/"+s.owner.ID.String(), "", s.owner.Token)
		s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
		_ = resp.Body.Close()
	})

	s.Run("Unshare removes access", func() {
		s.Do(fiber.MethodDelete, path+"/share/"+s.partner.ID.String(), "", s.owner.Token, fiber.StatusNoContent, nil)
		s.Do(fiber.MethodGet, path+"/users", "", s.owner.Token, fiber.StatusOK, &users)
		s.Require().Len(users, 1)
		s.True(users[0].IsOwner)

		resp := s.MakeRequest(fiber.MethodGet, path, "", s.partner.Token)
		s.Equal(fiber.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
