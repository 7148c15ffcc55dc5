// Package testutils builds throwaway stores and fixtures for service and
// handler tests.
package testutils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirasaad/finshare/infra"
	infraeventbus "github.com/amirasaad/finshare/infra/eventbus"
	infrarepo "github.com/amirasaad/finshare/infra/repository"
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/domain/account"
	"github.com/amirasaad/finshare/pkg/domain/category"
	"github.com/amirasaad/finshare/pkg/domain/group"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/repository"
	accountrepo "github.com/amirasaad/finshare/pkg/repository/account"
	categoryrepo "github.com/amirasaad/finshare/pkg/repository/category"
	grouprepo "github.com/amirasaad/finshare/pkg/repository/group"
	userrepo "github.com/amirasaad/finshare/pkg/repository/user"
	"github.com/amirasaad/finshare/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// Env is a migrated store with a unit of work and an in-memory event bus.
type Env struct {
	DB     *gorm.DB
	UoW    repository.UnitOfWork
	Bus    *infraeventbus.MemoryEventBus
	Logger *slog.Logger
}

// NewEnv opens a fresh sqlite database in the test's temp dir.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "finshare.db")
	return newEnv(t, &config.DB{Driver: infra.DriverSQLite, Url: dsn})
}

// NewPostgresEnv runs the SQL migrations against a Postgres container. It
// skips under -short or when no container runtime is available.
func NewPostgresEnv(t *testing.T) *Env {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()
	pg, err := tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("finshare"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pg) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return newEnv(t, &config.DB{Driver: infra.DriverPostgres, Url: dsn})
}

func newEnv(t *testing.T, cfg *config.DB) *Env {
	t.Helper()
	db, err := infra.NewDBConnection(cfg, "test")
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db, cfg.Driver))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Env{
		DB:     db,
		UoW:    infrarepo.NewUoW(db),
		Bus:    infraeventbus.NewWithMemory(logger),
		Logger: logger,
	}
}

// CreateUser inserts a user whose password is "password123".
func (e *Env) CreateUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	repo, err := repository.Get[userrepo.Repository](e.UoW)
	require.NoError(t, err)
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	id := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &dto.UserCreate{
		ID:       id,
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: hash,
	}))
	return id
}

// CreateGroup inserts a group owned by owner.
func (e *Env) CreateGroup(t *testing.T, owner uuid.UUID, name string) uuid.UUID {
	t.Helper()
	repo, err := repository.Get[grouprepo.Repository](e.UoW)
	require.NoError(t, err)
	code, err := group.NewInviteCode()
	require.NoError(t, err)
	id := uuid.New()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, dto.GroupCreate{
		ID:         id,
		Name:       name,
		InviteCode: code,
		CreatedBy:  owner,
	}))
	require.NoError(t, repo.AddMember(ctx, id, owner, group.Owner))
	return id
}

// AddMember adds userID to groupID with role.
func (e *Env) AddMember(t *testing.T, groupID, userID uuid.UUID, role group.Role) {
	t.Helper()
	repo, err := repository.Get[grouprepo.Repository](e.UoW)
	require.NoError(t, err)
	require.NoError(t, repo.AddMember(context.Background(), groupID, userID, role))
}

// RemoveMember soft-deletes the membership of userID in groupID.
func (e *Env) RemoveMember(t *testing.T, groupID, userID uuid.UUID) {
	t.Helper()
	repo, err := repository.Get[grouprepo.Repository](e.UoW)
	require.NoError(t, err)
	require.NoError(t, repo.RemoveMember(context.Background(), groupID, userID))
}

// CreateAccount inserts a checking account with an initial balance. It does
// not seed a materialized balance row.
func (e *Env) CreateAccount(t *testing.T, owner uuid.UUID, name string, initial int64) uuid.UUID {
	t.Helper()
	repo, err := repository.Get[accountrepo.Repository](e.UoW)
	require.NoError(t, err)
	id := uuid.New()
	require.NoError(t, repo.Create(context.Background(), dto.AccountCreate{
		ID:             id,
		UserID:         owner,
		Name:           name,
		Type:           account.Checking,
		InitialBalance: decimal.NewFromInt(initial),
	}))
	return id
}

// CreateCategory inserts a category of typ.
func (e *Env) CreateCategory(t *testing.T, owner uuid.UUID, name string, typ category.Type) uuid.UUID {
	t.Helper()
	repo, err := repository.Get[categoryrepo.Repository](e.UoW)
	require.NoError(t, err)
	id := uuid.New()
	require.NoError(t, repo.Create(context.Background(), dto.CategoryCreate{
		ID:     id,
		UserID: owner,
		Name:   name,
		Type:   typ,
	}))
	return id
}

// Amount is shorthand for a whole-unit decimal.
func Amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// NewRequest builds a request with an optional JSON body and bearer token.
func NewRequest(method, path, body, token string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// MakeRequest sends NewRequest through app.Test.
func MakeRequest(app *fiber.App, method, path, body, token string) *http.Response {
	resp, err := app.Test(NewRequest(method, path, body, token), -1)
	if err != nil {
		panic(err)
	}
	return resp
}
