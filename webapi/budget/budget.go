package budget

import (
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/middleware"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	budgetsvc "github.com/amirasaad/finshare/pkg/service/budget"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest represents the request body for creating a budget.
type CreateBudgetRequest struct {
	CategoryID uuid.UUID       `json:"category_id" validate:"required"`
	Month      int             `json:"month" validate:"required,min=1,max=12"`
	Year       int             `json:"year" validate:"required,min=2000,max=2100"`
	Limit      decimal.Decimal `json:"limit"`
}

// UpdateBudgetRequest changes the limit of a budget.
type UpdateBudgetRequest struct {
	Limit *decimal.Decimal `json:"limit"`
}

func Routes(app *fiber.App, budgetSvc *budgetsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	r := app.Group("/budgets", middleware.JwtProtected(cfg.Auth.Jwt))
	r.Get("/", ListBudgets(budgetSvc, authSvc))
	r.Post("/", CreateBudget(budgetSvc, authSvc))
	r.Get("/month/:year/:month", ListBudgetsForMonth(budgetSvc, authSvc))
	r.Get("/status/:year/:month", Statuses(budgetSvc, authSvc))
	r.Get("/status/:year/:month/:categoryId", Status(budgetSvc, authSvc))
	r.Get("/:id", GetBudget(budgetSvc, authSvc))
	r.Put("/:id", UpdateBudget(budgetSvc, authSvc))
	r.Delete("/:id", DeleteBudget(budgetSvc, authSvc))
}

// CreateBudget sets a monthly limit on an expense category.
// @Summary Create budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param request body CreateBudgetRequest true "Budget"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails "Duplicate budget or non-expense category"
// @Router /budgets [post]
// @Security Bearer
func CreateBudget(budgetSvc *budgetsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateBudgetRequest](c)
		if input == nil {
			return err
		}
		created, err := budgetSvc.CreateBudget(c.Context(), userID, dto.BudgetCreate{
			CategoryID: input.CategoryID,
			Month:      input.Month,
			Year:       input.Year,
			Limit:      input.Limit,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Budget created", created)
	}
}

// ListBudgets lists the budgets visible under the view context.
// @Summary List budgets
// @Tags budgets
// @Produce json
// @Param context query string false "own | member | all"
// @Param memberUserId query string false "Member user ID for context=member"
// @Success 200 {object} common.Response
// @Router /budgets [get]
// @Security Bearer
func ListBudgets(budgetSvc *budgetsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		budgets, err := budgetSvc.ListBudgets(c.Context(), userID, sc, nil, nil)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list budgets", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budgets fetched", budgets)
	}
}

// ListBudgetsForMonth lists the budgets of one month.
// @Summary List budgets for a month
// @Tags budgets
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param context query string false "own | member | all"
// @Param memberUserId query string false "Member user ID for context=member"
// @Success 200 {object} common.Response
// @Router /budgets/month/{year}/{month} [get]
// @Security Bearer
func ListBudgetsForMonth(budgetSvc *budgetsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		year, month, ok, err := period(c)
		if !ok {
			return err
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		budgets, err := budgetSvc.ListBudgets(c.Context(), userID, sc, &month, &year)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list budgets", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budgets fetched", budgets)
	}
}

// Statuses reports every budget of a month, most used first.
// @Summary Budget statuses for a month
// @Tags budgets
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param context query string false "own | member | all"
// @Param memberUserId query string false "Member user ID for context=member"
// @Success 200 {object} common.Response
// @Router /budgets/status/{year}/{month} [get]
// @Security Bearer
func Statuses(budgetSvc *budgetsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		year, month, ok, err := period(c)
		if !ok {
			return err
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		statuses, err := budgetSvc.Statuses(c.Context(), userID, sc, year, month)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to compute budget status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget status fetched", statuses)
	}
}

// Status reports the spending position of one category in a month.
// @Summary Budget status for a category
// @Tags budgets
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param categoryId path string true "Category ID"
// @Success 200 {object} common.Response
// @Router /budgets/status/{year}/{month}/{categoryId} [get]
// @Security Bearer
func Status(budgetSvc *budgetsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		year, month, ok, err := period(c)
		if !ok {
			return err
		}
		categoryID, ok, err := common.ParamUUID(c, "categoryId")
		if !ok {
			return err
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		status, err := budgetSvc.Status(c.Context(), userID, sc, categoryID, month, year)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to compute budget status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget status fetched", status)
	}
}

// GetBudget returns a budget visible to the caller.
// @Summary Get budget
// @Tags budgets
// @Produce json
// @Param id path string true "Budget ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /budgets/{id} [get]
// @Security Bearer
func GetBudget(budgetSvc *budgetsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		found, err := budgetSvc.GetBudget(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget fetched", found)
	}
}

// UpdateBudget changes the limit of a budget.
// @Summary Update budget
// @Tags budgets
// @Accept json
// @Produce json
// @Param id path string true "Budget ID"
// @Param request body UpdateBudgetRequest true "New limit"
// @Success 200 {object} common.Response
// @Router /budgets/{id} [put]
// @Security Bearer
func UpdateBudget(budgetSvc *budgetsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[UpdateBudgetRequest](c)
		if input == nil {
			return err
		}
		updated, err := budgetSvc.UpdateBudget(c.Context(), userID, id, dto.BudgetUpdate{Limit: input.Limit})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Budget updated", updated)
	}
}

// DeleteBudget soft-deletes a budget.
// @Summary Delete budget
// @Tags budgets
// @Param id path string true "Budget ID"
// @Success 204
// @Router /budgets/{id} [delete]
// @Security Bearer
func DeleteBudget(budgetSvc *budgetsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		if err := budgetSvc.DeleteBudget(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete budget", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusNoContent, "Budget deleted", nil)
	}
}

func period(c *fiber.Ctx) (year, month int, ok bool, err error) {
	if year, ok, err = common.ParamInt(c, "year"); !ok {
		return
	}
	month, ok, err = common.ParamInt(c, "month")
	return
}
