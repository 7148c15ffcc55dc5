package group

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/amirasaad/finshare/pkg/domain"
)

// Role is a member's standing inside a group.
type Role string

const (
	Owner  Role = "owner"
	Member Role = "member"
)

// InviteCodeLength is the number of characters in an invite code.
const InviteCodeLength = 8

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	ErrGroupNotFound    = fmt.Errorf("%w: group not found", domain.ErrNotFound)
	ErrInvalidInvite    = fmt.Errorf("%w: invalid invite code", domain.ErrNotFound)
	ErrMemberNotFound   = fmt.Errorf("%w: member not found in group", domain.ErrNotFound)
	ErrNotMember        = fmt.Errorf("%w: you are not a member of this group", domain.ErrForbidden)
	ErrNotOwner         = fmt.Errorf("%w: only the group owner may do this", domain.ErrForbidden)
	ErrAlreadyMember    = fmt.Errorf("%w: you are already a member of this group", domain.ErrInvalidOperation)
	ErrOwnerCannotLeave = fmt.Errorf(
		"%w: the owner cannot leave the group; delete it instead",
		domain.ErrInvalidOperation,
	)
	ErrCannotRemoveOwner  = fmt.Errorf("%w: the owner cannot be removed", domain.ErrInvalidOperation)
	ErrNameRequired       = fmt.Errorf("%w: group name is required", domain.ErrInvalidArgument)
	ErrNameTooLong        = fmt.Errorf("%w: group name must be at most 100 characters", domain.ErrInvalidArgument)
	ErrDescriptionTooLong = fmt.Errorf("%w: description must be at most 500 characters", domain.ErrInvalidArgument)
)

// ValidateName checks the length rules for a group name.
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

// ValidateDescription checks the length rule for a group description.
func ValidateDescription(desc string) error {
	if len([]rune(desc)) > 500 {
		return ErrDescriptionTooLong
	}
	return nil
}

// NewInviteCode draws an invite code from crypto/rand.
func NewInviteCode() (string, error) {
	var sb strings.Builder
	sb.Grow(InviteCodeLength)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for range InviteCodeLength {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		sb.WriteByte(inviteAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeInviteCode upper-cases and trims user input.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidInviteCode reports whether code has the invite code shape.
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(inviteAlphabet, r) {
			return false
		}
	}
	return true
}
