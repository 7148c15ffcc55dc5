package category

import (
	"fmt"
	"strings"

	"github.com/amirasaad/finshare/pkg/domain"
	"github.com/amirasaad/finshare/pkg/domain/transaction"
)

// Type tells whether a category classifies money in or money out.
type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
)

var (
	ErrCategoryNotFound = fmt.Errorf("%w: category not found", domain.ErrNotFound)
	ErrNotOwner         = fmt.Errorf("%w: category does not belong to you", domain.ErrForbidden)
	ErrTypeMismatch     = fmt.Errorf(
		"%w: category type does not match transaction type",
		domain.ErrInvalidOperation,
	)
	ErrNotExpense   = fmt.Errorf("%w: budgets can only track expense categories", domain.ErrInvalidOperation)
	ErrUnknownType  = fmt.Errorf("%w: unknown category type", domain.ErrInvalidArgument)
	ErrNameRequired = fmt.Errorf("%w: category name is required", domain.ErrInvalidArgument)
	ErrNameTooLong  = fmt.Errorf("%w: category name must be at most 100 characters", domain.ErrInvalidArgument)
)

// ParseType accepts the wire name of a category Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Income, Expense:
		return t, nil
	}
	return "", ErrUnknownType
}

// ValidateName checks the length rules for a category name.
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

// CheckCompatible enforces that income and expense entries use a category
// of the same type. Transfers and goal contributions accept any category.
func CheckCompatible(c Type, t transaction.Type) error {
	switch t {
	case transaction.Income:
		if c != Income {
			return ErrTypeMismatch
		}
	case transaction.Expense:
		if c != Expense {
			return ErrTypeMismatch
		}
	}
	return nil
}

// Default is a category seeded for every new user.
type Default struct {
	Name  string
	Type  Type
	Color string
	Icon  string
}

// Defaults lists the starter categories created at registration.
var Defaults = []Default{
	{Name: "Food", Type: Expense, Color: "#FF6B6B", Icon: "restaurant"},
	{Name: "Transport", Type: Expense, Color: "#4ECDC4", Icon: "directions_car"},
	{Name: "Housing", Type: Expense, Color: "#45B7D1", Icon: "home"},
	{Name: "Health", Type: Expense, Color: "#96CEB4", Icon: "local_hospital"},
	{Name: "Education", Type: Expense, Color: "#FFEAA7", Icon: "school"},
	{Name: "Leisure", Type: Expense, Color: "#DDA0DD", Icon: "sports_esports"},
	{Name: "Clothing", Type: Expense, Color: "#98D8C8", Icon: "checkroom"},
	{Name: "Bills", Type: Expense, Color: "#F7DC6F", Icon: "receipt"},
	{Name: "Other Expenses", Type: Expense, Color: "#BDC3C7", Icon: "more_horiz"},
	{Name: "Salary", Type: Income, Color: "#2ECC71", Icon: "work"},
	{Name: "Freelance", Type: Income, Color: "#3498DB", Icon: "laptop"},
	{Name: "Investments", Type: Income, Color: "#9B59B6", Icon: "trending_up"},
	{Name: "Other Income", Type: Income, Color: "#1ABC9C", Icon: "attach_money"},
}
