package account

import (
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/middleware"
	accountsvc "github.com/amirasaad/finshare/pkg/service/account"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers HTTP routes for account-related operations using the Fiber web framework.
// All routes are protected by authentication middleware and require a valid user context.
//
// Routes:
//   - GET    /accounts                    : List accounts visible under ?context=.
//   - POST   /accounts                    : Create an account.
//   - GET    /accounts/active             : List the caller's active accounts.
//   - GET    /accounts/:id                : Get one account with its balance.
//   - PUT    /accounts/:id                : Update an account.
//   - DELETE /accounts/:id                : Delete an account without transactions.
//   - PATCH  /accounts/:id/toggle-active  : Flip the active flag.
//   - GET    /accounts/:id/balance        : Current balance.
func Routes(app *fiber.App, accountSvc *accountsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	r := app.Group("/accounts", middleware.JwtProtected(cfg.Auth.Jwt))
	r.Get("/", ListAccounts(accountSvc, authSvc))
	r.Post("/", CreateAccount(accountSvc, authSvc))
	r.Get("/active", ListActiveAccounts(accountSvc, authSvc))
	r.Get("/:id", GetAccount(accountSvc, authSvc))
	r.Put("/:id", UpdateAccount(accountSvc, authSvc))
	r.Delete("/:id", DeleteAccount(accountSvc, authSvc))
	r.Patch("/:id/toggle-active", ToggleActive(accountSvc, authSvc))
	r.Get("/:id/balance", GetBalance(accountSvc, authSvc))
}

// CreateAccount returns a Fiber handler for creating a new account for the current user.
// @Summary Create a new account
// @Description Creates an active account for the authenticated user with an optional opening balance.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account details"
// @Success 201 {object} common.Response "Account created successfully"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 429 {object} common.ProblemDetails "Too many requests"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /accounts [post]
// @Security Bearer
func CreateAccount(
	accountSvc *accountsvc.Service,
	authSvc *authsvc.Service,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err // error response already written
		}
		a, err := accountSvc.CreateAccount(c.Context(), userID, input.toDTO())
		if err != nil {
			log.Errorf("Failed to create account: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", a)
	}
}

// ListAccounts lists the accounts visible under the requested view context.
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Param context query string false "own | member | all"
// @Param memberUserId query string false "Member user ID for context=member"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /accounts [get]
// @Security Bearer
func ListAccounts(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		sc, ok, err := common.ScopeFromQuery(c)
		if !ok {
			return err
		}
		accounts, err := accountSvc.ListAccounts(c.Context(), userID, sc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", accounts)
	}
}

// ListActiveAccounts lists the caller's active accounts.
// @Summary List active accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response
// @Router /accounts/active [get]
// @Security Bearer
func ListActiveAccounts(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		accounts, err := accountSvc.ListActiveAccounts(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", accounts)
	}
}

// GetAccount returns one of the caller's accounts.
// @Summary Get account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id} [get]
// @Security Bearer
func GetAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		a, err := accountSvc.GetAccount(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", a)
	}
}

// UpdateAccount changes the mutable fields of an account.
// @Summary Update account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body UpdateAccountRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id} [put]
// @Security Bearer
func UpdateAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[UpdateAccountRequest](c)
		if input == nil {
			return err
		}
		a, err := accountSvc.UpdateAccount(c.Context(), userID, id, input.toDTO())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account updated", a)
	}
}

// ToggleActive flips the active flag of an account.
// @Summary Toggle account active flag
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Router /accounts/{id}/toggle-active [patch]
// @Security Bearer
func ToggleActive(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		a, err := accountSvc.ToggleActive(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to toggle account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account updated", a)
	}
}

// DeleteAccount removes an account that no transaction references.
// @Summary Delete account
// @Tags accounts
// @Param id path string true "Account ID"
// @Success 204
// @Failure 422 {object} common.ProblemDetails "Account still has transactions"
// @Router /accounts/{id} [delete]
// @Security Bearer
func DeleteAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		if err := accountSvc.DeleteAccount(c.Context(), userID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusNoContent, "Account deleted", nil)
	}
}

// GetBalance returns the current balance of an account.
// @Summary Get account balance
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id}/balance [get]
// @Security Bearer
func GetBalance(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		balance, err := accountSvc.GetBalance(c.Context(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", BalanceResponse{
			AccountID: id.String(),
			Balance:   balance,
		})
	}
}
