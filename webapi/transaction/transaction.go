package transaction

import (
	"strings"
	"time"

	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/middleware"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	txsvc "github.com/amirasaad/finshare/pkg/service/transaction"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the transaction endpoints. Every write settles goal
// contributions and balances in a single unit of work.
//
// Routes:
//   - GET    /transactions      : List with ?context=, accountId, categoryId, type, startDate, endDate, page, pageSize.
//   - POST   /transactions      : Post a transaction.
//   - GET    /transactions/:id  : Get a transaction visible to the caller.
//   - PUT    /transactions/:id  : Edit a transaction.
//   - DELETE /transactions/:id  : Delete a transaction.
func Routes(app *fiber.App, txSvc *txsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	r := app.Group("/transactions", middleware.JwtProtected(cfg.Auth.Jwt))
	r.Get("/", ListTransactions(txSvc, authSvc))
	r.Post("/", CreateTransaction(txSvc, authSvc))
	r.Get("/:id", GetTransaction(txSvc, authSvc))
	r.Put("/:id", UpdateTransaction(txSvc, authSvc))
	r.Delete("/:id", DeleteTransaction(txSvc, authSvc))
}

// CreateTransaction posts a transaction for the caller.
// @Summary Create transaction
// @Description Posts income, expense, transfer or goal movements. Goal movements update the goal in the same commit.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body CreateTransactionRequest true "Transaction"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /transactions [post]
// @Security Bearer
func CreateTransaction(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateTransactionRequest](c)
		if input == nil {
			return err
		}
		in, err := input.toDTO()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request body", err)
		}
		tx, err := txSvc.CreateTransaction(c.Context(), userID, in)
		if err != nil {
			log.Errorf("Failed to create transaction: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transaction created", tx)
	}
}

// ListTransactions lists transactions newest first.
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param context query string false "own | member | all"
// @Param memberUserId query string false "Member user ID for context=member"
// @Param accountId query string false "Account filter"
// @Param categoryId query string false "Category filter"
// @Param type query string false "Transaction type"
// @Param startDate query string false "First day (inclusive)"
// @Param endDate query string false "Last day (inclusive)"
// @Param page query int false "Page, from 1"
// @Param pageSize query int false "Page size, at most 100"
// @Success 200 {object} common.Response
// @Router /transactions [get]
// @Security Bearer
func ListTransactions(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		filter, err := filterFromQuery(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid filter", err)
		}
		page, err := txSvc.ListTransactions(c.Context(), userID, sc, filter)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", page)
	}
}

// GetTransaction returns a transaction visible to the caller.
// @Summary Get transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /transactions/{id} [get]
// @Security Bearer
func GetTransaction(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		tx, err := txSvc.GetTransaction(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction fetched", tx)
	}
}

// UpdateTransaction edits a transaction, reversing its previous effect
// on balances and goals before applying the new one.
// @Summary Update transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 409 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /transactions/{id} [put]
// @Security Bearer
func UpdateTransaction(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[UpdateTransactionRequest](c)
		if input == nil {
			return err
		}
		update, err := input.toDTO()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request body", err)
		}
		tx, err := txSvc.UpdateTransaction(c.Context(), userID, id, update)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction updated", tx)
	}
}

// DeleteTransaction removes a transaction and reverses its effects.
// @Summary Delete transaction
// @Tags transactions
// @Param id path string true "Transaction ID"
// @Success 204
// @Failure 422 {object} common.ProblemDetails
// @Router /transactions/{id} [delete]
// @Security Bearer
func DeleteTransaction(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		if err := txSvc.DeleteTransaction(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusNoContent, "Transaction deleted", nil)
	}
}

func filterFromQuery(c *fiber.Ctx) (filter dto.TransactionFilter, err error) {
	if filter.AccountID, err = common.QueryUUID(c, "accountId"); err != nil {
		return
	}
	if filter.CategoryID, err = common.QueryUUID(c, "categoryId"); err != nil {
		return
	}
	if raw := c.Query("type"); raw != "" {
		var typ transaction.Type
		if typ, err = transaction.ParseType(raw); err != nil {
			return
		}
		filter.Type = &typ
	}
	if filter.From, err = common.ParseDate(c.Query("startDate")); err != nil {
		return
	}
	endRaw := strings.TrimSpace(c.Query("endDate"))
	if filter.To, err = common.ParseDate(endRaw); err != nil {
		return
	}
	if filter.To != nil && len(endRaw) == len(time.DateOnly) {
		next := filter.To.AddDate(0, 0, 1)
		filter.To = &next
	}
	filter.Page = c.QueryInt("page")
	filter.PageSize = c.QueryInt("pageSize")
	return filter, nil
}
