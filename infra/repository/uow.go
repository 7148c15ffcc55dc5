package repository

import (
	"context"
	"fmt"
	"reflect"

	accountrepo "github.com/amirasaad/finshare/infra/repository/account"
	budgetrepo "github.com/amirasaad/finshare/infra/repository/budget"
	categoryrepo "github.com/amirasaad/finshare/infra/repository/category"
	goalrepo "github.com/amirasaad/finshare/infra/repository/goal"
	grouprepo "github.com/amirasaad/finshare/infra/repository/group"
	ledgerrepo "github.com/amirasaad/finshare/infra/repository/ledger"
	transactionrepo "github.com/amirasaad/finshare/infra/repository/transaction"
	userrepo "github.com/amirasaad/finshare/infra/repository/user"
	"github.com/amirasaad/finshare/pkg/repository"
	"github.com/amirasaad/finshare/pkg/repository/account"
	"github.com/amirasaad/finshare/pkg/repository/budget"
	"github.com/amirasaad/finshare/pkg/repository/category"
	"github.com/amirasaad/finshare/pkg/repository/goal"
	"github.com/amirasaad/finshare/pkg/repository/group"
	"github.com/amirasaad/finshare/pkg/repository/ledger"
	"github.com/amirasaad/finshare/pkg/repository/transaction"
	"github.com/amirasaad/finshare/pkg/repository/user"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// All repositories handed out inside Do share the same *gorm.DB transaction.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			reflect.TypeOf((*user.Repository)(nil)):        func(db *gorm.DB) any { return userrepo.New(db) },
			reflect.TypeOf((*account.Repository)(nil)):     func(db *gorm.DB) any { return accountrepo.New(db) },
			reflect.TypeOf((*category.Repository)(nil)):    func(db *gorm.DB) any { return categoryrepo.New(db) },
			reflect.TypeOf((*transaction.Repository)(nil)): func(db *gorm.DB) any { return transactionrepo.New(db) },
			reflect.TypeOf((*budget.Repository)(nil)):      func(db *gorm.DB) any { return budgetrepo.New(db) },
			reflect.TypeOf((*goal.Repository)(nil)):        func(db *gorm.DB) any { return goalrepo.New(db) },
			reflect.TypeOf((*group.Repository)(nil)):       func(db *gorm.DB) any { return grouprepo.New(db) },
			reflect.TypeOf((*ledger.Repository)(nil)):      func(db *gorm.DB) any { return ledgerrepo.New(db) },
		},
	}
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		// Already inside a transaction: join it.
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
}

// GetRepository returns the repository registered for repoType, bound to the
// transaction when called inside Do and to the plain session otherwise.
func (u *UoW) GetRepository(repoType any) (any, error) {
	t := reflect.TypeOf(repoType)
	constructor, ok := u.repoRegistry[t]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", t)
	}
	session := u.tx
	if session == nil {
		session = u.db
	}
	return constructor(session), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
