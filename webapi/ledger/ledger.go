package ledger

import (
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/middleware"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	"github.com/amirasaad/finshare/pkg/service/balance"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the ledger maintenance endpoints.
func Routes(app *fiber.App, balanceSvc *balance.Service, authSvc *authsvc.Service, cfg *config.App) {
	app.Post("/ledger/rebuild", middleware.JwtProtected(cfg.Auth.Jwt), Rebuild(balanceSvc, authSvc))
}

// Rebuild replays the caller's accounts and corrects stored balances that
// drifted from the transaction log.
// @Summary Rebuild materialized balances
// @Tags ledger
// @Produce json
// @Success 200 {object} common.Response
// @Failure 422 {object} common.ProblemDetails "Materialized balances are disabled"
// @Router /ledger/rebuild [post]
// @Security Bearer
func Rebuild(balanceSvc *balance.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		reports, err := balanceSvc.Rebuild(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to rebuild balances", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balances rebuilt", reports)
	}
}
