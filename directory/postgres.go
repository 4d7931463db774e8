package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	goRevoke "github.com/MrEthical07/goRevoke"
)

// Postgres is a read-only [goRevoke.UserDirectory] over a users table with
// columns (id, username, password, active, roles text[]).
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle. The caller owns the pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// LookupByUsername returns the user record for a username, or
// [goRevoke.ErrUserNotFound] when no row matches.
func (p *Postgres) LookupByUsername(ctx context.Context, username string) (*goRevoke.User, error) {
	const query = `
		SELECT id, username, password, active, roles
		FROM users
		WHERE username = $1
	`
	return p.lookup(ctx, query, username)
}

// LookupByID returns the user record for an id, or [goRevoke.ErrUserNotFound]
// when no row matches.
func (p *Postgres) LookupByID(ctx context.Context, id string) (*goRevoke.User, error) {
	const query = `
		SELECT id, username, password, active, roles
		FROM users
		WHERE id = $1
	`
	return p.lookup(ctx, query, id)
}

func (p *Postgres) lookup(ctx context.Context, query string, arg any) (*goRevoke.User, error) {
	user := &goRevoke.User{}

	err := p.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Active,
		pq.Array(&user.Roles),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goRevoke.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	return user, nil
}
