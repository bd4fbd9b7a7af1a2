package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dekarrin/gudgeon/registry"
	"github.com/google/uuid"
)

func NewGrammarsRepository() *GrammarsRepository {
	return &GrammarsRepository{grammars: make(map[uuid.UUID]registry.Grammar)}
}

type GrammarsRepository struct {
	grammars map[uuid.UUID]registry.Grammar
}

func (r *GrammarsRepository) Close() error { return nil }

func (r *GrammarsRepository) Create(ctx context.Context, g registry.Grammar) (registry.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return registry.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}
	g.ID = newUUID
	g.Created = time.Now()

	r.grammars[g.ID] = g
	return g, nil
}

func (r *GrammarsRepository) GetByID(ctx context.Context, id uuid.UUID) (registry.Grammar, error) {
	g, ok := r.grammars[id]
	if !ok {
		return registry.Grammar{}, registry.ErrNotFound
	}
	return g, nil
}

func (r *GrammarsRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]registry.Grammar, error) {
	var all []registry.Grammar
	for _, g := range r.grammars {
		if g.UserID == userID {
			all = append(all, g)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return all, nil
}

func (r *GrammarsRepository) GetAll(ctx context.Context) ([]registry.Grammar, error) {
	all := make([]registry.Grammar, 0, len(r.grammars))
	for _, g := range r.grammars {
		all = append(all, g)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return all, nil
}

func (r *GrammarsRepository) Delete(ctx context.Context, id uuid.UUID) (registry.Grammar, error) {
	g, ok := r.grammars[id]
	if !ok {
		return registry.Grammar{}, registry.ErrNotFound
	}
	delete(r.grammars, id)
	return g, nil
}
