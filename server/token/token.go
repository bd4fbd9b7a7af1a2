// Package token issues and validates the JWT bearer tokens used to
// authenticate API clients.
package token

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/gudgeon/registry"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// issuer is embedded in every token minted by Generate and required of every
// token accepted by Validate.
const issuer = "gudgeon"

// Get extracts the bearer token from the Authorization header of req. It
// returns an error if the header is missing or not in "Bearer TOKEN" format.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	tok := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return tok, nil
}

// Validate parses tok, checks its signature against a key derived from
// secret and the signed-in user's current password and logout time, and
// returns the user it names.
//
// Deriving the signing key from the user's password hash and last-logout
// timestamp means that changing the password or logging out invalidates
// every token issued before that point, without needing a revocation list.
func Validate(ctx context.Context, tok string, secret []byte, db registry.UserRepository) (registry.User, error) {
	var user registry.User

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}

		id, err := uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}

		user, err = db.GetByID(ctx, id)
		if err != nil {
			if err == registry.ErrNotFound {
				return nil, fmt.Errorf("subject does not exist")
			}
			return nil, fmt.Errorf("subject could not be validated")
		}

		return signingKey(secret, user), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return registry.User{}, err
	}

	return user, nil
}

// Generate mints a new bearer token for u, valid for one hour.
func Generate(secret []byte, u registry.User) (string, error) {
	claims := &jwt.MapClaims{
		"iss":        issuer,
		"exp":        time.Now().Add(time.Hour).Unix(),
		"sub":        u.ID.String(),
		"authorized": true,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(signingKey(secret, u))
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

func signingKey(secret []byte, u registry.User) []byte {
	var key []byte
	key = append(key, secret...)
	key = append(key, []byte(u.Password)...)
	key = append(key, []byte(fmt.Sprintf("%d", u.LastLogoutTime.Unix()))...)
	return key
}
