package tunas

import (
	"context"
	"encoding/base64"
	"errors"
	"net/mail"
	"time"

	"github.com/dekarrin/gudgeon/registry"
	"github.com/dekarrin/gudgeon/server/serr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Login verifies the provided username and password against the existing user
// in persistence and returns that user if they match. Returns the user entity
// from the persistence layer that the username and password are valid for.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the credentials do not match
// a user or if the password is incorrect, it will match ErrBadCredentials. If
// the error occured due to an unexpected problem with the DB, it will match
// serr.ErrDB.
func (svc Service) Login(ctx context.Context, username string, password string) (registry.User, error) {
	user, err := svc.DB.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return registry.User{}, serr.ErrBadCredentials
		}
		return registry.User{}, serr.WrapDB("", err)
	}

	// verify password
	bcryptHash, err := base64.StdEncoding.DecodeString(user.Password)
	if err != nil {
		return registry.User{}, err
	}

	err = bcrypt.CompareHashAndPassword(bcryptHash, []byte(password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return registry.User{}, serr.ErrBadCredentials
		}
		return registry.User{}, serr.WrapDB("", err)
	}

	// successful login; update the DB
	user.LastLoginTime = time.Now()
	user, err = svc.DB.Users().Update(ctx, user.ID, user)
	if err != nil {
		return registry.User{}, serr.WrapDB("cannot update user login time", err)
	}

	return user, nil
}

// Logout marks the user with the given ID as having logged out, invalidating
// any login that may be active. Returns the user entity that was logged out.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the user doesn't exist, it
// will match serr.ErrNotFound. If the error occured due to an unexpected
// problem with the DB, it will match serr.ErrDB.
func (svc Service) Logout(ctx context.Context, who uuid.UUID) (registry.User, error) {
	existing, err := svc.DB.Users().GetByID(ctx, who)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return registry.User{}, serr.ErrNotFound
		}
		return registry.User{}, serr.WrapDB("could not retrieve user", err)
	}

	existing.LastLogoutTime = time.Now()

	updated, err := svc.DB.Users().Update(ctx, existing.ID, existing)
	if err != nil {
		return registry.User{}, serr.WrapDB("could not update user", err)
	}

	return updated, nil
}

// GetAllUsers returns every registered account.
func (svc Service) GetAllUsers(ctx context.Context) ([]registry.User, error) {
	users, err := svc.DB.Users().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("could not retrieve users", err)
	}
	return users, nil
}

// GetUser retrieves one account by its string-encoded UUID.
func (svc Service) GetUser(ctx context.Context, id string) (registry.User, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return registry.User{}, serr.New("", err, serr.ErrBadArgument)
	}

	user, err := svc.DB.Users().GetByID(ctx, parsedID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return registry.User{}, serr.ErrNotFound
		}
		return registry.User{}, serr.WrapDB("could not retrieve user", err)
	}
	return user, nil
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (svc Service) CreateUser(ctx context.Context, username, password, email string, role registry.Role) (registry.User, error) {
	var storedEmail *mail.Address
	if email != "" {
		var err error
		storedEmail, err = mail.ParseAddress(email)
		if err != nil {
			return registry.User{}, serr.New("email is not valid", err, serr.ErrBadArgument)
		}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return registry.User{}, serr.New("password is too long", err, serr.ErrBadArgument)
		}
		return registry.User{}, serr.New("password could not be encrypted", err)
	}

	newUser := registry.User{
		Username: username,
		Password: base64.StdEncoding.EncodeToString(passHash),
		Email:    storedEmail,
		Role:     role,
	}

	user, err := svc.DB.Users().Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, registry.ErrConstraintViolation) {
			return registry.User{}, serr.ErrAlreadyExists
		}
		return registry.User{}, serr.WrapDB("could not create user", err)
	}

	return user, nil
}

// UpdateUser modifies the non-password fields of an existing account.
func (svc Service) UpdateUser(ctx context.Context, curID, newID, username, email string, role registry.Role) (registry.User, error) {
	parsedCurID, err := uuid.Parse(curID)
	if err != nil {
		return registry.User{}, serr.New("", err, serr.ErrBadArgument)
	}

	existing, err := svc.DB.Users().GetByID(ctx, parsedCurID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return registry.User{}, serr.ErrNotFound
		}
		return registry.User{}, serr.WrapDB("could not retrieve user", err)
	}

	if newID != "" && newID != curID {
		parsedNewID, err := uuid.Parse(newID)
		if err != nil {
			return registry.User{}, serr.New("id: not a valid UUID", err, serr.ErrBadArgument)
		}
		existing.ID = parsedNewID
	}
	existing.Username = username
	existing.Role = role
	if email != "" {
		parsedEmail, err := mail.ParseAddress(email)
		if err != nil {
			return registry.User{}, serr.New("email is not valid", err, serr.ErrBadArgument)
		}
		existing.Email = parsedEmail
	} else {
		existing.Email = nil
	}
	existing.Modified = time.Now()

	updated, err := svc.DB.Users().Update(ctx, parsedCurID, existing)
	if err != nil {
		if errors.Is(err, registry.ErrConstraintViolation) {
			return registry.User{}, serr.ErrAlreadyExists
		} else if errors.Is(err, registry.ErrNotFound) {
			return registry.User{}, serr.ErrNotFound
		}
		return registry.User{}, serr.WrapDB("could not update user", err)
	}

	return updated, nil
}

// UpdatePassword sets a new bcrypt-hashed password for the account with the
// given ID.
func (svc Service) UpdatePassword(ctx context.Context, id, newPassword string) (registry.User, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return registry.User{}, serr.New("", err, serr.ErrBadArgument)
	}

	existing, err := svc.DB.Users().GetByID(ctx, parsedID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return registry.User{}, serr.ErrNotFound
		}
		return registry.User{}, serr.WrapDB("could not retrieve user", err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return registry.User{}, serr.New("password is too long", err, serr.ErrBadArgument)
		}
		return registry.User{}, serr.New("password could not be encrypted", err)
	}
	existing.Password = base64.StdEncoding.EncodeToString(passHash)

	updated, err := svc.DB.Users().Update(ctx, parsedID, existing)
	if err != nil {
		return registry.User{}, serr.WrapDB("could not update user", err)
	}
	return updated, nil
}

// DeleteUser removes the account with the given ID.
func (svc Service) DeleteUser(ctx context.Context, id string) (registry.User, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return registry.User{}, serr.New("", err, serr.ErrBadArgument)
	}

	deleted, err := svc.DB.Users().Delete(ctx, parsedID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return registry.User{}, serr.ErrNotFound
		}
		return registry.User{}, serr.WrapDB("could not delete user", err)
	}
	return deleted, nil
}
