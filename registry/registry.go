// Package registry provides data access objects for the grammar
// compilation service: registered accounts and previously compiled
// grammars, each fronted by a Repository interface with a SQLite
// (registry/sqlite) and in-memory (registry/inmem) implementation.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds every repository the service needs.
type Store interface {
	Users() UserRepository
	Grammars() GrammarRepository
	Close() error
}

// GrammarRepository persists compiled grammars, keyed by a generated UUID.
type GrammarRepository interface {
	Create(ctx context.Context, g Grammar) (Grammar, error)
	GetByID(ctx context.Context, id uuid.UUID) (Grammar, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Grammar, error)
	GetAll(ctx context.Context) ([]Grammar, error)
	Delete(ctx context.Context, id uuid.UUID) (Grammar, error)
	Close() error
}

// Grammar is a registry entry for one successfully compiled grammar: the
// source text that produced it, a REZI-encoded snapshot of the finalized
// grammar.Grammar (see gcio.Encode), and the summary counts a client can
// read without decoding the snapshot.
type Grammar struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Name    string
	Source  string
	Encoded []byte // gcio.Encode output

	StartSymbol     string
	TerminalCount   int
	NonTermCount    int
	ProductionCount int

	Created time.Time
}

// UserRepository persists registered accounts.
type UserRepository interface {
	// Create creates a new User. All attributes except for auto-generated
	// fields are taken from the provided User.
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)

	// Close closes the connection.
	Close() error
}

type Role int

const (
	Guest Role = iota
	Unverified
	Normal

	Admin Role = 100
)

func (r Role) String() string {
	switch r {
	case Guest:
		return "guest"
	case Unverified:
		return "unverified"
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "guest":
		return Guest, nil
	case "unverified":
		return Unverified, nil
	case "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Guest, fmt.Errorf("must be one of 'guest', 'unverified', 'normal', or 'admin'")
	}
}

type User struct {
	ID             uuid.UUID // PK, NOT NULL
	Username       string    // UNIQUE, NOT NULL
	Password       string    // NOT NULL
	Email          *mail.Address
	Role           Role      // NOT NULL
	Created        time.Time // NOT NULL
	Modified       time.Time
	LastLogoutTime time.Time // NOT NULL DEFAULT NOW()
	LastLoginTime  time.Time // NOT NULL
}
