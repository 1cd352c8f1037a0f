package auth

import (
	"context"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the auth service needs, not HOW it's stored.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	// Create returns domain.ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, u domain.User) (domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies access tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID string
	Role   string
	Exp    time.Time
}

type TokenSigner interface {
	SignAccessToken(userID string, role string, ttl time.Duration) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

/*
ChallengeStore
--------------
Keyed store for pending reset codes. One challenge per email;
Put overwrites. Get returns domain.ErrResetCodeNotFound when absent.
ttl is a retention hint for the backend, expiry itself is decided
by the verifier against OtpChallenge.ExpiresAt.
*/
type ChallengeStore interface {
	Put(ctx context.Context, email string, c domain.OtpChallenge, ttl time.Duration) error
	Get(ctx context.Context, email string) (domain.OtpChallenge, error)
	Delete(ctx context.Context, email string) error
}

/*
Notifier
--------
Delivers reset codes out-of-band (SMTP, broker, log).
Send is synchronous; an error fails the reset request.
*/
type Notifier interface {
	SendResetCode(ctx context.Context, msg ResetCodeMessage) error
}

type ResetCodeMessage struct {
	Email     string
	FullName  string
	Code      string
	ExpiresIn time.Duration
}

// CodeGenerator draws reset codes.
type CodeGenerator interface {
	NewCode() (string, error)
}
