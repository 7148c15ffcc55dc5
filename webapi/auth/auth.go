package auth

import (
	"errors"

	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/middleware"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	usersvc "github.com/amirasaad/finshare/pkg/service/user"
	"github.com/amirasaad/finshare/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the public login and registration endpoints and the
// protected /auth/me.
func Routes(app *fiber.App, authSvc *authsvc.Service, userSvc *usersvc.Service, cfg *config.App) {
	app.Post("/auth/register", Register(authSvc, userSvc))
	app.Post("/auth/login", Login(authSvc))
	app.Get("/auth/me", middleware.JwtProtected(cfg.Auth.Jwt), Me(authSvc, userSvc))
}

// Login handles user authentication and returns a JWT token.
// @Summary User login
// @Description Authenticate user with identity (username or email) and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /auth/login [post]
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err // Error already written by BindAndValidate
		}
		user, err := authSvc.Login(c.Context(), input.Identity, input.Password)
		if errors.Is(err, domain.ErrUnauthorized) || (err == nil && user == nil) {
			return common.ProblemDetailsJSON(c, "Invalid identity or password", nil, "Identity or password is incorrect", fiber.StatusUnauthorized)
		}
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		token, err := authSvc.GenerateToken(c.Context(), user)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Success login", fiber.Map{"token": token, "user": user})
	}
}

// Register creates a user with the default categories and logs them in.
// @Summary Register a new user
// @Description Create a user account. Email and username must be unused.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterInput true "User registration data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /auth/register [post]
func Register(authSvc *authsvc.Service, userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterInput](c)
		if input == nil {
			return err
		}
		user, err := userSvc.Register(c.Context(), input.Username, input.Email, input.Password, input.Names)
		if err != nil {
			log.Errorf("Failed to register user: %v", err)
			return common.ProblemDetailsJSON(c, "Couldn't create user", err)
		}
		token, err := authSvc.GenerateToken(c.Context(), user)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Created user", fiber.Map{"token": token, "user": user})
	}
}

// Me returns the authenticated user.
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /auth/me [get]
// @Security Bearer
func Me(authSvc *authsvc.Service, userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		user, err := userSvc.GetUser(c.Context(), userID)
		if err != nil {
			// Generic error for not found to prevent user enumeration
			return common.ProblemDetailsJSON(c, "Invalid credentials", nil, fiber.StatusUnauthorized)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", user)
	}
}
