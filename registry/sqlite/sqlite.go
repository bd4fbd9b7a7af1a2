// Package sqlite is a registry.Store backed by modernc.org/sqlite,
// persisting accounts and compiled grammars in a single on-disk database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dekarrin/gudgeon/registry"
	"modernc.org/sqlite"
)

type store struct {
	dbFilename string
	db         *sql.DB

	users    *UsersDB
	grammars *GrammarsDB
}

// NewDatastore opens (creating if necessary) the registry database under
// storageDir.
func NewDatastore(storageDir string) (registry.Store, error) {
	st := &store{dbFilename: "registry.db"}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.users = &UsersDB{db: st.db}
	if err := st.users.init(); err != nil {
		return nil, err
	}

	st.grammars = &GrammarsDB{db: st.db}
	if err := st.grammars.init(); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *store) Users() registry.UserRepository       { return s.users }
func (s *store) Grammars() registry.GrammarRepository { return s.grammars }

func (s *store) Close() error {
	return s.db.Close()
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return registry.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return registry.ErrNotFound
	}
	return err
}
