package dashboard

import (
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/middleware"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	dashboardsvc "github.com/amirasaad/finshare/pkg/service/dashboard"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// CustomRangeRequest bounds a custom summary. Both days are inclusive.
type CustomRangeRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

func Routes(app *fiber.App, dashboardSvc *dashboardsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	r := app.Group("/dashboard", middleware.JwtProtected(cfg.Auth.Jwt))
	r.Get("/summary", CurrentMonth(dashboardSvc, authSvc))
	r.Get("/summary/:year/:month", ForMonth(dashboardSvc, authSvc))
	r.Post("/summary/custom", Custom(dashboardSvc, authSvc))
}

// CurrentMonth summarizes the current calendar month.
// @Summary Dashboard for the current month
// @Tags dashboard
// @Produce json
// @Param context query string false "own | member | all"
// @Param memberUserId query string false "Member user ID for context=member"
// @Success 200 {object} common.Response
// @Router /dashboard/summary [get]
// @Security Bearer
func CurrentMonth(dashboardSvc *dashboardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		summary, err := dashboardSvc.CurrentMonth(c.Context(), userID, sc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to build dashboard", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Dashboard fetched", summary)
	}
}

// ForMonth summarizes one calendar month.
// @Summary Dashboard for a month
// @Tags dashboard
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param context query string false "own | member | all"
// @Param memberUserId query string false "Member user ID for context=member"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /dashboard/summary/{year}/{month} [get]
// @Security Bearer
func ForMonth(dashboardSvc *dashboardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		year, ok, err := common.ParamInt(c, "year")
		if !ok {
			return err
		}
		month, ok, err := common.ParamInt(c, "month")
		if !ok {
			return err
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		summary, err := dashboardSvc.ForMonth(c.Context(), userID, sc, year, month)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to build dashboard", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Dashboard fetched", summary)
	}
}

// Custom summarizes an inclusive range of days.
// @Summary Dashboard for a custom range
// @Tags dashboard
// @Accept json
// @Produce json
// @Param request body CustomRangeRequest true "Range"
// @Param context query string false "own | member | all"
// @Param memberUserId query string false "Member user ID for context=member"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /dashboard/summary/custom [post]
// @Security Bearer
func Custom(dashboardSvc *dashboardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CustomRangeRequest](c)
		if input == nil {
			return err
		}
		start, err := common.ParseDate(input.StartDate)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid start date", err)
		}
		end, err := common.ParseDate(input.EndDate)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid end date", err)
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		summary, err := dashboardSvc.Custom(c.Context(), userID, sc, *start, *end)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to build dashboard", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Dashboard fetched", summary)
	}
}
