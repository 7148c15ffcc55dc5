// Package common holds the response envelopes, error mapping and request
// helpers shared by the webapi route packages.
package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	authsvc "github.com/amirasaad/finshare/pkg/service/auth"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const problemJSON = "application/problem+json"

var validate = validator.New()

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

// ProblemDetailsJSON writes an RFC 9457 response. The status comes from an
// int in args, otherwise from ErrorToStatusCode(err). A string in args
// replaces the detail; any other value is reported under "errors".
func ProblemDetailsJSON(
	c *fiber.Ctx,
	title string,
	err error,
	args ...any,
) error {
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   ErrorToStatusCode(err),
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			pd.Status = v
		case string:
			pd.Detail = v
		default:
			pd.Errors = v
		}
	}
	return c.Status(pd.Status).JSON(pd, problemJSON)
}

// SuccessResponseJSON writes the standard envelope. 204 carries no body.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	if status == fiber.StatusNoContent {
		return c.SendStatus(status)
	}
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ErrorToStatusCode maps domain errors to appropriate HTTP status codes.
func ErrorToStatusCode(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidOperation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return nil, ProblemDetailsJSON(c, "Validation failed", err, fields, fiber.StatusBadRequest)
		}
		return nil, ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
	}
	return &input, nil
}

// CurrentUserID reads the authenticated user from the JWT stored by the
// middleware. On failure it writes the 401 response and returns ok=false.
func CurrentUserID(c *fiber.Ctx, authSvc *authsvc.Service) (userID uuid.UUID, ok bool, err error) {
	token, isToken := c.Locals("user").(*jwt.Token)
	if !isToken {
		return uuid.Nil, false, ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
	}
	userID, err = authSvc.GetCurrentUserId(token)
	if err != nil {
		log.Errorf("Failed to parse user ID from token: %v", err)
		return uuid.Nil, false, ProblemDetailsJSON(c, "Invalid user ID", err, fiber.StatusUnauthorized)
	}
	return userID, true, nil
}

// ParamUUID parses the named path parameter. On failure it writes the 400
// response and returns ok=false.
func ParamUUID(c *fiber.Ctx, name string) (id uuid.UUID, ok bool, err error) {
	id, perr := uuid.Parse(c.Params(name))
	if perr != nil {
		return uuid.Nil, false, ProblemDetailsJSON(
			c, "Invalid "+name, perr, name+" must be a valid UUID", fiber.StatusBadRequest,
		)
	}
	return id, true, nil
}

// ParamInt parses the named integer path parameter.
func ParamInt(c *fiber.Ctx, name string) (n int, ok bool, err error) {
	n, perr := strconv.Atoi(c.Params(name))
	if perr != nil {
		return 0, false, ProblemDetailsJSON(
			c, "Invalid "+name, perr, name+" must be an integer", fiber.StatusBadRequest,
		)
	}
	return n, true, nil
}

// ScopeFromQuery reads ?context=own|member|all&memberUserId=<uuid>.
func ScopeFromQuery(c *fiber.Ctx) (sc scope.Scope, ok bool, err error) {
	sc, perr := scope.Parse(c.Query("context"), c.Query("memberUserId"))
	if perr != nil {
		return nil, false, ProblemDetailsJSON(c, "Invalid view context", perr)
	}
	return sc, true, nil
}

// ParseDate accepts a calendar day (2006-01-02) or an RFC 3339 timestamp.
// An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not a date", domain.ErrInvalidArgument, s)
}

// QueryUUID parses an optional UUID query parameter.
func QueryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a valid UUID", domain.ErrInvalidArgument, name)
	}
	return &id, nil
}
