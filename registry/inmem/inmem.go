// Package inmem is a process-memory registry.Store, useful for tests and
// for running the grammar-compilation service with no persistence
// configured.
package inmem

import "github.com/dekarrin/gudgeon/registry"

// NewDatastore returns a registry.Store backed entirely by in-process maps.
func NewDatastore() registry.Store {
	return &store{
		users:    NewUsersRepository(),
		grammars: NewGrammarsRepository(),
	}
}

type store struct {
	users    *UsersRepository
	grammars *GrammarsRepository
}

func (s *store) Users() registry.UserRepository       { return s.users }
func (s *store) Grammars() registry.GrammarRepository { return s.grammars }
func (s *store) Close() error                         { return nil }
