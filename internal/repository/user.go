package repository

import (
	"context"

	"medicase/internal/model"
)

// UserRepository defines data access for user accounts using SQL queries only.
// No business logic here, strictly persistence operations. Lookups on missing
// rows return sql.ErrNoRows for the service layer to translate.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by primary key.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by normalized email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByQRCode returns the patient user assigned the given QR identifier.
	FindByQRCode(ctx context.Context, code string) (*model.User, error)

	// ExistsByEmail reports whether an account with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByQRCode reports whether any patient holds the QR identifier.
	ExistsByQRCode(ctx context.Context, code string) (bool, error)

	// Update persists mutable profile fields of an existing user.
	Update(ctx context.Context, u *model.User) (*model.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdateQRCode assigns a new QR identifier, replacing any previous one.
	UpdateQRCode(ctx context.Context, id, code string) error

	// SetEnabled soft-enables or soft-disables an account.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// ListByRole returns users of a role, optionally filtered by a
	// case-insensitive search term over name and email. Disabled accounts are
	// skipped unless includeDisabled is set.
	ListByRole(ctx context.Context, role model.Role, search string, includeDisabled bool, pq PageQuery) (*PageResult[model.User], error)

	// CountByRole counts enabled users per role.
	CountByRole(ctx context.Context, role model.Role) (int, error)
}
