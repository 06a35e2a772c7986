package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// User is the persisted row of the users table.
// The bun tags are used by the sqlite store; the pgx store scans columns explicitly.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID       int64           `bun:"id,pk,autoincrement" db:"id"`
	Email        string          `bun:"email,notnull,unique" db:"email"`
	PasswordHash sql.NullString  `bun:"password" db:"password"`
	DisplayName  sql.NullString  `bun:"display_name" db:"display_name"`
	Balance      decimal.Decimal `bun:"balance,type:numeric,notnull,default:0" db:"balance"`
	XP           int64           `bun:"xp,notnull,default:0" db:"xp"`
	RefreshToken sql.NullString  `bun:"refresh_token" db:"refresh_token"`
	// FederatedSubject is the identity provider's subject (sub claim).
	FederatedSubject sql.NullString `bun:"federated_subject" db:"federated_subject"`
	AuditFields
}

// AuditFields holds row timestamps.
type AuditFields struct {
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" db:"created_at"`
	LastUpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" db:"updated_at"`
}
