package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, fiber.StatusInternalServerError},
		{fiber.NewError(fiber.StatusTeapot, "short and stout"), fiber.StatusTeapot},
		{fmt.Errorf("%w: goal", domain.ErrNotFound), fiber.StatusNotFound},
		{fmt.Errorf("%w: not yours", domain.ErrForbidden), fiber.StatusForbidden},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized},
		{fmt.Errorf("%w: busy", domain.ErrInvalidOperation), fiber.StatusUnprocessableEntity},
		{domain.ErrInvalidArgument, fiber.StatusBadRequest},
		{domain.ErrValidation, fiber.StatusBadRequest},
		{fmt.Errorf("%w: stale", domain.ErrConflict), fiber.StatusConflict},
		{domain.ErrAlreadyExists, fiber.StatusConflict},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ErrorToStatusCode(tc.err), "%v", tc.err)
	}
}

func TestProblemDetailsJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/mapped", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Not here", fmt.Errorf("%w: account", domain.ErrNotFound))
	})
	app.Get("/override", func(c *fiber.Ctx) error {
		return ProblemDetailsJSON(c, "Slow down", errors.New("limit"), "try later", map[string]string{"k": "v"}, fiber.StatusTooManyRequests)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/mapped", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, problemJSON, resp.Header.Get(fiber.HeaderContentType))
	var pd ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	assert.Equal(t, "Not here", pd.Title)
	assert.Equal(t, fiber.StatusNotFound, pd.Status)
	assert.Equal(t, "/mapped", pd.Instance)
	assert.Contains(t, pd.Detail, "account")

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/override", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	pd = ProblemDetails{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	assert.Equal(t, "try later", pd.Detail)
	assert.Equal(t, map[string]any{"k": "v"}, pd.Errors)
}

func TestSuccessResponseJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return SuccessResponseJSON(c, fiber.StatusCreated, "made", fiber.Map{"n": 1})
	})
	app.Get("/empty", func(c *fiber.Ctx) error {
		return SuccessResponseJSON(c, fiber.StatusNoContent, "gone", nil)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "made", body.Message)
	assert.Equal(t, map[string]any{"n": float64(1)}, body.Data)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/empty", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

type sample struct {
	Name string `json:"name" validate:"required,max=5"`
}

func TestBindAndValidate(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		in, err := BindAndValidate[sample](c)
		if in == nil {
			return err
		}
		return c.SendString(in.Name)
	})
	send := func(body string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}
	assert.Equal(t, fiber.StatusOK, send(`{"name":"abc"}`))
	assert.Equal(t, fiber.StatusBadRequest, send(`{"name":""}`))
	assert.Equal(t, fiber.StatusBadRequest, send(`{"name":"too long"}`))
	assert.Equal(t, fiber.StatusBadRequest, send(`{"name":`))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("2024-02-29T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC), *d)

	_, err = ParseDate("29/02/2024")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRequestHelpers(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id/:n", func(c *fiber.Ctx) error {
		id, ok, err := ParamUUID(c, "id")
		if !ok {
			return err
		}
		n, ok, err := ParamInt(c, "n")
		if !ok {
			return err
		}
		sc, ok, err := ScopeFromQuery(c)
		if !ok {
			return err
		}
		return c.JSON(fiber.Map{"id": id, "n": n, "scope": fmt.Sprintf("%T", sc)})
	})

	id := uuid.New()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/items/"+id.String()+"/3?context=all", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, id.String(), out["id"])
	assert.Equal(t, fmt.Sprintf("%T", scope.All{}), out["scope"])

	for _, path := range []string{
		"/items/nope/3",
		"/items/" + id.String() + "/three",
		"/items/" + id.String() + "/3?context=everyone",
		"/items/" + id.String() + "/3?context=member",
	} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
	}
}
