package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/expense-tracker/internal/domain"
)

const pgUniqueViolation = "23505"

// UserRepo persists users in Postgres. It serves the auth and billing ports.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1;`

	ur, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

// ---------- auth.UserRepo ----------

// GetByEmail matches the email exactly; emails are case-sensitive keys.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	return r.getOne(ctx, "email = $1", email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	return r.getOne(ctx, "id = $1", id)
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleUser)
	}

	q := `
INSERT INTO users (id, full_name, email, password_hash, profile_image_url, role)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING ` + userColumns + `;`

	ur, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.ProfileImageURL, u.Role,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE users
SET password_hash = $2,
    updated_at = NOW()
WHERE id = $1;
`
	return r.execOne(ctx, q, userID, newHash)
}

// ---------- billing.UserRepo ----------

func (r *UserRepo) GetByCustomerID(ctx context.Context, customerID string) (domain.User, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.getOne(ctx, "razorpay_customer_id = $1", customerID)
}

func (r *UserRepo) SetCustomerID(ctx context.Context, userID, customerID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET razorpay_customer_id = $2,
    updated_at = NOW()
WHERE id = $1;
`
	return r.execOne(ctx, q, userID, nullString(customerID))
}

// SaveEntitlement writes all entitlement columns in one statement.
func (r *UserRepo) SaveEntitlement(ctx context.Context, u domain.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET is_premium = $2,
    premium_expires_at = $3,
    razorpay_subscription_id = $4,
    updated_at = NOW()
WHERE id = $1;
`
	return r.execOne(ctx, q, u.ID, u.IsPremium, nullTime(u.PremiumExpiresAt), nullString(u.SubscriptionID))
}

func (r *UserRepo) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate")
}
