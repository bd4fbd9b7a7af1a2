package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/gudgeon/registry"
	"github.com/google/uuid"
)

type GrammarsDB struct {
	db *sql.DB
}

func (repo *GrammarsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS grammars (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		encoded TEXT NOT NULL,
		start_symbol TEXT NOT NULL,
		terminal_count INTEGER NOT NULL,
		nonterm_count INTEGER NOT NULL,
		production_count INTEGER NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *GrammarsDB) Create(ctx context.Context, g registry.Grammar) (registry.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return registry.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO grammars
		(id, user_id, name, source, encoded, start_symbol, terminal_count, nonterm_count, production_count, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return registry.Grammar{}, wrapDBError(err)
	}

	now := time.Now()
	_, err = stmt.ExecContext(ctx, newUUID.String(), g.UserID.String(), g.Name, g.Source,
		convertToDB_ByteSlice(g.Encoded), g.StartSymbol, g.TerminalCount, g.NonTermCount, g.ProductionCount, now.Unix())
	if err != nil {
		return registry.Grammar{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *GrammarsDB) scanRow(row interface {
	Scan(dest ...interface{}) error
}) (registry.Grammar, error) {
	var g registry.Grammar
	var id, userID, encoded string
	var created int64

	err := row.Scan(&id, &userID, &g.Name, &g.Source, &encoded, &g.StartSymbol,
		&g.TerminalCount, &g.NonTermCount, &g.ProductionCount, &created)
	if err != nil {
		return g, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &g.ID); err != nil {
		return g, err
	}
	if err := convertFromDB_UUID(userID, &g.UserID); err != nil {
		return g, err
	}
	if err := convertFromDB_ByteSlice(encoded, &g.Encoded); err != nil {
		return g, err
	}
	g.Created = time.Unix(created, 0)

	return g, nil
}

func (repo *GrammarsDB) GetByID(ctx context.Context, id uuid.UUID) (registry.Grammar, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, user_id, name, source, encoded, start_symbol,
		terminal_count, nonterm_count, production_count, created FROM grammars WHERE id = ?;`, id.String())
	return repo.scanRow(row)
}

func (repo *GrammarsDB) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]registry.Grammar, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, name, source, encoded, start_symbol,
		terminal_count, nonterm_count, production_count, created FROM grammars WHERE user_id = ?;`, userID.String())
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return repo.scanAll(rows)
}

func (repo *GrammarsDB) GetAll(ctx context.Context) ([]registry.Grammar, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, name, source, encoded, start_symbol,
		terminal_count, nonterm_count, production_count, created FROM grammars;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return repo.scanAll(rows)
}

func (repo *GrammarsDB) scanAll(rows *sql.Rows) ([]registry.Grammar, error) {
	var all []registry.Grammar
	for rows.Next() {
		g, err := repo.scanRow(rows)
		if err != nil {
			return all, err
		}
		all = append(all, g)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *GrammarsDB) Delete(ctx context.Context, id uuid.UUID) (registry.Grammar, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM grammars WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, registry.ErrNotFound
	}
	return curVal, nil
}

func (repo *GrammarsDB) Close() error { return nil }
