package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The UNIQUE constraint on email is load-bearing: it is what resolves
// concurrent registrations with the same address. Application code treats
// the resulting 23505 as the duplicate signal.
const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name          TEXT,
	age_group     TEXT,
	language      TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the users table if it does not exist yet.
// Run once at startup before serving requests.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, usersSchema)
	return err
}
