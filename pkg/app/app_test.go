package app_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/amirasaad/finshare/pkg/app"
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/pkg/dto"
	"github.com/amirasaad/finshare/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWiresServices(t *testing.T) {
	env := testutils.NewEnv(t)
	cfg := &config.App{
		Auth:   &config.Auth{Strategy: "jwt", Jwt: &config.Jwt{Secret: "s"}},
		Ledger: &config.Ledger{MaterializedBalance: true},
	}
	a := app.New(&app.Deps{Uow: env.UoW, EventBus: env.Bus, Logger: env.Logger}, cfg)

	assert.NotNil(t, a.AuthService)
	assert.NotNil(t, a.UserService)
	assert.NotNil(t, a.AccountService)
	assert.NotNil(t, a.TransactionService)
	assert.NotNil(t, a.BudgetService)
	assert.NotNil(t, a.GoalService)
	assert.NotNil(t, a.DashboardService)
	assert.NotNil(t, a.GroupService)
	assert.True(t, a.BalanceService.Materialized())
}

func TestNewFallsBackToBasicAuth(t *testing.T) {
	env := testutils.NewEnv(t)
	cfg := &config.App{Auth: &config.Auth{Strategy: "basic"}}
	a := app.New(&app.Deps{Uow: env.UoW, EventBus: env.Bus, Logger: env.Logger}, cfg)

	token, err := a.AuthService.GenerateToken(context.Background(), &dto.UserRead{ID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.False(t, a.BalanceService.Materialized())
}

func TestSetupBusLogsCommittedEvents(t *testing.T) {
	env := testutils.NewEnv(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	app.SetupBus(app.Dependencies{Bus: env.Bus, Logger: logger})

	ctx := context.Background()
	goalID := uuid.New()
	require.NoError(t, env.Bus.Emit(ctx, events.GoalCompleted{
		Meta:    events.NewMeta(uuid.New()),
		GoalID:  goalID,
		Current: decimal.NewFromInt(100),
		Target:  decimal.NewFromInt(100),
	}))
	require.NoError(t, env.Bus.Emit(ctx, events.BalanceDriftCorrected{
		Meta:      events.NewMeta(uuid.New()),
		AccountID: uuid.New(),
		Stored:    decimal.NewFromInt(10),
		Replayed:  decimal.NewFromInt(5),
	}))

	out := buf.String()
	assert.Contains(t, out, "goal completed")
	assert.Contains(t, out, goalID.String())
	assert.Contains(t, out, "balance drift corrected")
}
