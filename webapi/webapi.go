// Package webapi wires the HTTP surface of the ledger. Each domain registers
// its own routes from a sub-package:
// - auth: registration, login and the current user
// - account, category, transaction: the personal ledger
// - budget, goal, dashboard: planning and reporting
// - group: sharing groups and invite codes
// - ledger: materialized balance maintenance
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/finshare/pkg/app"
	accountweb "github.com/amirasaad/finshare/webapi/account"
	authweb "github.com/amirasaad/finshare/webapi/auth"
	budgetweb "github.com/amirasaad/finshare/webapi/budget"
	categoryweb "github.com/amirasaad/finshare/webapi/category"
	"github.com/amirasaad/finshare/webapi/common"
	dashboardweb "github.com/amirasaad/finshare/webapi/dashboard"
	goalweb "github.com/amirasaad/finshare/webapi/goal"
	groupweb "github.com/amirasaad/finshare/webapi/group"
	ledgerweb "github.com/amirasaad/finshare/webapi/ledger"
	transactionweb "github.com/amirasaad/finshare/webapi/transaction"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gofiber/swagger"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	authSvc := app.AuthService
	cfg := app.Config

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
		OAuth2RedirectUrl:    "/auth/login",
	}))

	// Behind a proxy the client is the first X-Forwarded-For hop.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get(
		"/",
		func(c *fiber.Ctx) error {
			return c.SendString("FinShare API is running! 🚀")
		},
	)

	fiberApp.Get("/debug/routes", func(c *fiber.Ctx) error {
		routes := fiberApp.GetRoutes()
		var routeList []map[string]any
		for _, route := range routes {
			if route.Path != "" {
				routeList = append(routeList, map[string]any{
					"method": route.Method,
					"path":   route.Path,
				})
			}
		}
		return c.JSON(routeList)
	})

	authweb.Routes(fiberApp, authSvc, app.UserService, cfg)
	accountweb.Routes(fiberApp, app.AccountService, authSvc, cfg)
	categoryweb.Routes(fiberApp, app.CategoryService, authSvc, cfg)
	transactionweb.Routes(fiberApp, app.TransactionService, authSvc, cfg)
	budgetweb.Routes(fiberApp, app.BudgetService, authSvc, cfg)
	goalweb.Routes(fiberApp, app.GoalService, authSvc, cfg)
	dashboardweb.Routes(fiberApp, app.DashboardService, authSvc, cfg)
	groupweb.Routes(fiberApp, app.GroupService, authSvc, cfg)
	ledgerweb.Routes(fiberApp, app.BalanceService, authSvc, cfg)
	return fiberApp
}
