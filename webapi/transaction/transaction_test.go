package transaction_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionTestSuite struct {
	testutils.E2ETestSuite
	user    *testutils.TestUser
	main    uuid.UUID
	savings uuid.UUID
	salary  uuid.UUID
	food    uuid.UUID
}

func (s *TransactionTestSuite) SetupTest() {
	s.E2ETestSuite.SetupTest()
	s.user = s.CreateTestUser()
	s.main = s.CreateAccount(s.user.Token, "Main", "1000")
	s.savings = s.CreateAccount(s.user.Token, "Savings", "0")
	s.salary = s.CreateCategory(s.user.Token, "Salary", "income")
	s.food = s.CreateCategory(s.user.Token, "Food", "expense")
}

func TestTransactionTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionTestSuite))
}

type txBody struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

type goalBody struct {
	ID            uuid.UUID       `json:"id"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	IsCompleted   bool            `json:"is_completed"`
	Version       int64           `json:"version"`
}

func (s *TransactionTestSuite) post(body string) uuid.UUID {
	var out txBody
	s.Do(fiber.MethodPost, "/transactions", body, s.user.Token, fiber.StatusCreated, &out)
	return out.ID
}

func (s *TransactionTestSuite) goal(id uuid.UUID) goalBody {
	var out goalBody
	s.Do(fiber.MethodGet, "/goals/"+id.String(), "", s.user.Token, fiber.StatusOK, &out)
	return out
}

func (s *TransactionTestSuite) TestLedgerFlow() {
	income := s.post(fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"amount":"500","description":"salary","type":"income"}`,
		s.main, s.salary))
	s.RequireAmount("1500", s.Balance(s.user.Token, s.main))

	expense := s.post(fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"amount":"200","description":"groceries","type":"expense"}`,
		s.main, s.food))
	s.RequireAmount("1300", s.Balance(s.user.Token, s.main))

	s.post(fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"amount":"300","description":"move","type":"transfer","destination_account_id":%q}`,
		s.main, s.food, s.savings))
	s.RequireAmount("1000", s.Balance(s.user.Token, s.main))
	s.RequireAmount("300", s.Balance(s.user.Token, s.savings))

	s.Do(fiber.MethodPut, "/transactions/"+expense.String(), `{"amount":"50"}`, s.user.Token, fiber.StatusOK, nil)
	s.RequireAmount("1150", s.Balance(s.user.Token, s.main))

	s.Do(fiber.MethodDelete, "/transactions/"+income.String(), "", s.user.Token, fiber.StatusNoContent, nil)
	s.RequireAmount("650", s.Balance(s.user.Token, s.main))

	var reports []struct {
		AccountID uuid.UUID `json:"account_id"`
		Corrected bool      `json:"corrected"`
	}
	s.Do(fiber.MethodPost, "/ledger/rebuild", "", s.user.Token, fiber.StatusOK, &reports)
	s.Len(reports, 2)
	for _, r := range reports {
		s.False(r.Corrected, r.AccountID.String())
	}
}

func (s *TransactionTestSuite) TestGoalContributions() {
	goalID := s.CreateGoal(s.user.Token, "Trip", "1000")
	s.Env.Bus.ClearPublished()

	deposit := s.post(fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"amount":"400","description":"save","type":"goal_deposit","goal_id":%q}`,
		s.main, s.food, goalID))
	s.RequireAmount("600", s.Balance(s.user.Token, s.main))
	g := s.goal(goalID)
	s.True(decimal.NewFromInt(400).Equal(g.CurrentAmount))
	s.False(g.IsCompleted)

	s.Do(fiber.MethodPut, "/transactions/"+deposit.String(), `{"amount":"1000"}`, s.user.Token, fiber.StatusOK, nil)
	s.RequireAmount("0", s.Balance(s.user.Token, s.main))
	g = s.goal(goalID)
	s.True(decimal.NewFromInt(1000).Equal(g.CurrentAmount))
	s.True(g.IsCompleted)

	var completed int
	for _, e := range s.Env.Bus.Published() {
		if _, ok := e.(events.GoalCompleted); ok {
			completed++
		}
	}
	s.Equal(1, completed)

	s.Run("Withdrawing more than saved is rejected", func() {
		resp := s.MakeRequest(fiber.MethodPost, "/transactions", fmt.Sprintf(
			`{"account_id":%q,"category_id":%q,"amount":"1500","description":"take","type":"goal_withdraw","goal_id":%q}`,
			s.main, s.food, goalID), s.user.Token)
		s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
		_ = resp.Body.Close()
		s.True(decimal.NewFromInt(1000).Equal(s.goal(goalID).CurrentAmount))
	})

	s.Do(fiber.MethodDelete, "/transactions/"+deposit.String(), "", s.user.Token, fiber.StatusNoContent, nil)
	s.RequireAmount("1000", s.Balance(s.user.Token, s.main))
	g = s.goal(goalID)
	s.True(g.CurrentAmount.IsZero())
	s.False(g.IsCompleted)
}

func (s *TransactionTestSuite) TestValidation() {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "zero amount",
			body:   fmt.Sprintf(`{"account_id":%q,"category_id":%q,"amount":"0","description":"x","type":"expense"}`, s.main, s.food),
			status: fiber.StatusBadRequest,
		},
		{
			name:   "category type mismatch",
			body:   fmt.Sprintf(`{"account_id":%q,"category_id":%q,"amount":"5","description":"x","type":"income"}`, s.main, s.food),
			status: fiber.StatusUnprocessableEntity,
		},
		{
			name:   "transfer without destination",
			body:   fmt.Sprintf(`{"account_id":%q,"category_id":%q,"amount":"5","description":"x","type":"transfer"}`, s.main, s.food),
			status: fiber.StatusBadRequest,
		},
		{
			name: "transfer to itself",
			body: fmt.Sprintf(`{"account_id":%q,"category_id":%q,"amount":"5","description":"x","type":"transfer","destination_account_id":%q}`,
				s.main, s.food, s.main),
			status: fiber.StatusUnprocessableEntity,
		},
		{
			name:   "unknown type",
			body:   fmt.Sprintf(`{"account_id":%q,"category_id":%q,"amount":"5","description":"x","type":"gift"}`, s.main, s.food),
			status: fiber.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			resp := s.MakeRequest(fiber.MethodPost, "/transactions", tc.body, s.user.Token)
			s.Equal(tc.status, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
	s.RequireAmount("1000", s.Balance(s.user.Token, s.main))
}

func (s *TransactionTestSuite) TestListTransactions() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	for i := 1; i <= 3; i++ {
		s.post(fmt.Sprintf(
			`{"account_id":%q,"category_id":%q,"amount":"%d","description":"e%d","type":"expense","date":%q}`,
			s.main, s.food, i, i, yesterday))
	}
	s.post(fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"amount":"9","description":"pay","type":"income","date":%q}`,
		s.main, s.salary, yesterday))

	var page struct {
		Items    []txBody `json:"items"`
		Total    int64    `json:"total"`
		Page     int      `json:"page"`
		PageSize int      `json:"page_size"`
	}
	s.Do(fiber.MethodGet, "/transactions?type=expense", "", s.user.Token, fiber.StatusOK, &page)
	s.EqualValues(3, page.Total)
	s.Len(page.Items, 3)

	s.Do(fiber.MethodGet, "/transactions?pageSize=2&page=2", "", s.user.Token, fiber.StatusOK, &page)
	s.EqualValues(4, page.Total)
	s.Len(page.Items, 2)
	s.Equal(2, page.Page)

	s.Do(fiber.MethodGet, "/transactions?startDate="+yesterday+"&endDate="+yesterday, "", s.user.Token, fiber.StatusOK, &page)
	s.EqualValues(4, page.Total)

	resp := s.MakeRequest(fiber.MethodGet, "/transactions?accountId=nope", "", s.user.Token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *TransactionTestSuite) TestOtherUserCannotTouch() {
	id := s.post(fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"amount":"10","description":"x","type":"expense"}`, s.main, s.food))
	other := s.CreateTestUser()

	resp := s.MakeRequest(fiber.MethodGet, "/transactions/"+id.String(), "", other.Token)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(fiber.MethodDelete, "/transactions/"+id.String(), "", other.Token)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.MakeRequest(fiber.MethodPost, "/transactions", fmt.Sprintf(
		`{"account_id":%q,"category_id":%q,"amount":"10","description":"x","type":"expense"}`, s.main, s.food), other.Token)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}
