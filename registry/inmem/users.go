package inmem

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dekarrin/gudgeon/registry"
	"github.com/google/uuid"
)

func NewUsersRepository() *UsersRepository {
	return &UsersRepository{
		users:           make(map[uuid.UUID]registry.User),
		byUsernameIndex: make(map[string]uuid.UUID),
	}
}

type UsersRepository struct {
	users           map[uuid.UUID]registry.User
	byUsernameIndex map[string]uuid.UUID
}

func (r *UsersRepository) Close() error { return nil }

func (r *UsersRepository) Create(ctx context.Context, user registry.User) (registry.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return registry.User{}, fmt.Errorf("could not generate ID: %w", err)
	}
	user.ID = newUUID

	if _, ok := r.byUsernameIndex[user.Username]; ok {
		return registry.User{}, registry.ErrConstraintViolation
	}

	user.Created = time.Now()
	user.LastLogoutTime = time.Now()

	r.users[user.ID] = user
	r.byUsernameIndex[user.Username] = user.ID

	return user, nil
}

func (r *UsersRepository) GetAll(ctx context.Context) ([]registry.User, error) {
	all := make([]registry.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return all, nil
}

func (r *UsersRepository) Update(ctx context.Context, id uuid.UUID, user registry.User) (registry.User, error) {
	existing, ok := r.users[id]
	if !ok {
		return registry.User{}, registry.ErrNotFound
	}

	if user.Username != existing.Username {
		if _, ok := r.byUsernameIndex[user.Username]; ok {
			return registry.User{}, registry.ErrConstraintViolation
		}
	} else if user.ID != id {
		if _, ok := r.users[user.ID]; ok {
			return registry.User{}, registry.ErrConstraintViolation
		}
	}

	r.users[user.ID] = user
	r.byUsernameIndex[user.Username] = user.ID
	if user.ID != id {
		delete(r.users, id)
		delete(r.byUsernameIndex, existing.Username)
	}

	return user, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (registry.User, error) {
	user, ok := r.users[id]
	if !ok {
		return registry.User{}, registry.ErrNotFound
	}
	return user, nil
}

func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (registry.User, error) {
	id, ok := r.byUsernameIndex[username]
	if !ok {
		return registry.User{}, registry.ErrNotFound
	}
	return r.users[id], nil
}

func (r *UsersRepository) Delete(ctx context.Context, id uuid.UUID) (registry.User, error) {
	user, ok := r.users[id]
	if !ok {
		return registry.User{}, registry.ErrNotFound
	}
	delete(r.byUsernameIndex, user.Username)
	delete(r.users, user.ID)
	return user, nil
}
