package app

import (
	"log/slog"

	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/eventbus"
	"github.com/amirasaad/finshare/pkg/repository"
	"github.com/amirasaad/finshare/pkg/service/account"
	"github.com/amirasaad/finshare/pkg/service/auth"
	"github.com/amirasaad/finshare/pkg/service/balance"
	"github.com/amirasaad/finshare/pkg/service/budget"
	"github.com/amirasaad/finshare/pkg/service/category"
	"github.com/amirasaad/finshare/pkg/service/dashboard"
	"github.com/amirasaad/finshare/pkg/service/goal"
	"github.com/amirasaad/finshare/pkg/service/group"
	"github.com/amirasaad/finshare/pkg/service/scope"
	"github.com/amirasaad/finshare/pkg/service/transaction"
	"github.com/amirasaad/finshare/pkg/service/user"
)

// Deps contains the infrastructure every service is built from.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Logger   *slog.Logger
}

type App struct {
	Deps               *Deps
	Config             *config.App
	AuthService        *auth.Service
	UserService        *user.Service
	ScopeService       *scope.Service
	BalanceService     *balance.Service
	AccountService     *account.Service
	CategoryService    *category.Service
	TransactionService *transaction.Service
	BudgetService      *budget.Service
	GoalService        *goal.Service
	DashboardService   *dashboard.Service
	GroupService       *group.Service
}

func New(deps *Deps, cfg *config.App) *App {
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	SetupBus(Dependencies{Bus: deps.EventBus, Logger: deps.Logger})

	authMap := map[string]func() *auth.Service{
		"jwt": func() *auth.Service {
			return auth.NewWithJWT(deps.Uow, cfg.Auth.Jwt, deps.Logger)
		},
	}
	if authFactory, ok := authMap[cfg.Auth.Strategy]; ok {
		app.AuthService = authFactory()
	} else {
		app.AuthService = auth.NewWithBasic(deps.Uow, deps.Logger)
	}

	ledger := cfg.Ledger
	if ledger == nil {
		ledger = &config.Ledger{}
	}
	app.UserService = user.New(deps.Uow, deps.Logger)
	app.ScopeService = scope.New(deps.Uow, deps.Logger)
	app.BalanceService = balance.New(deps.Uow, deps.EventBus, deps.Logger, ledger.MaterializedBalance)
	app.AccountService = account.New(deps.Uow, app.BalanceService, deps.Logger)
	app.CategoryService = category.New(deps.Uow, deps.Logger)
	app.TransactionService = transaction.New(deps.Uow, deps.EventBus, app.BalanceService, deps.Logger)
	app.BudgetService = budget.New(deps.Uow, deps.Logger)
	app.GoalService = goal.New(deps.Uow, deps.EventBus, deps.Logger)
	app.DashboardService = dashboard.New(deps.Uow, deps.Logger, dashboard.Options{
		HistoryMonths: ledger.HistoryMonths,
		TopCategories: ledger.TopCategories,
	})
	app.GroupService = group.New(deps.Uow, deps.EventBus, deps.Logger)
	return app
}
