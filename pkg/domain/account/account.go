package account

import (
	"fmt"
	"strings"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type is the kind of money container an account represents.
type Type string

const (
	Checking   Type = "checking"
	Savings    Type = "savings"
	Wallet     Type = "wallet"
	Investment Type = "investment"
	CreditCard Type = "credit_card"
)

var (
	ErrAccountNotFound = fmt.Errorf("%w: account not found", domain.ErrNotFound)
	ErrNotOwner        = fmt.Errorf("%w: account does not belong to you", domain.ErrForbidden)
	ErrHasTransactions = fmt.Errorf(
		"%w: account has transactions; deactivate it instead",
		domain.ErrInvalidOperation,
	)
	ErrUnknownType  = fmt.Errorf("%w: unknown account type", domain.ErrInvalidArgument)
	ErrNameRequired = fmt.Errorf("%w: account name is required", domain.ErrInvalidArgument)
	ErrNameTooLong  = fmt.Errorf("%w: account name must be at most 100 characters", domain.ErrInvalidArgument)
)

// ParseType accepts the wire name of an account Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Checking, Savings, Wallet, Investment, CreditCard:
		return t, nil
	}
	return "", ErrUnknownType
}

// ValidateName checks the length rules for an account name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if len([]rune(name)) > 100 {
		return ErrNameTooLong
	}
	return nil
}

// Balance replays txs over the initial balance of accountID. The result
// does not depend on the order of txs.
func Balance(
	accountID uuid.UUID,
	initial decimal.Decimal,
	txs []transaction.Transaction,
) decimal.Decimal {
	balance := initial
	for _, tx := range txs {
		balance = balance.Add(tx.EffectOn(accountID))
	}
	return balance
}
