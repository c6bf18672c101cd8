// Package auth guards parts with HTTP authentication. A guard wraps the
// part it protects: the request only reaches the protected part once the
// credentials check out, otherwise the guard answers with a challenge.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/kildevaeld/strong"
	"golang.org/x/crypto/bcrypt"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
	"github.com/kildevaeld/ruter/status"
)

// UserKey is the user value under which guards store the authenticated
// principal.
const UserKey = "auth.user"

var (
	ErrBadScheme = errors.New("authorization scheme is not basic")
	ErrBadToken  = errors.New("malformed authorization token")
)

// ParseToken splits a basic Authorization header value into user and
// password. The scheme check is case insensitive.
func ParseToken(token string) (string, string, error) {
	parts := strings.SplitN(token, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "basic") {
		return "", "", ErrBadScheme
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", ErrBadToken
	}

	creds := strings.SplitN(string(raw), ":", 2)
	if len(creds) != 2 {
		return "", "", ErrBadToken
	}

	return creds[0], creds[1], nil
}

// Challenge answers 401 with a basic authentication challenge for realm.
func Challenge(realm string) ruter.Part {
	return ruter.Compose(
		ruter.SetHeader(strong.HeaderWWWAuthenticate, fmt.Sprintf("Basic realm=%q", realm)),
		ruter.Respond(status.Unauthorized, []byte(status.Unauthorized.Message())),
	)
}

// Basic protects a part with basic authentication. Missing or invalid
// credentials, and credentials validate rejects, are answered with a
// challenge; accepted requests carry the user name as a user value and
// continue into protected.
func Basic(realm string, validate func(user, password string) bool, protected ruter.Part) ruter.Part {
	challenge := Challenge(realm)

	return func(ctx *httpcontext.Context) (ruter.Result, error) {
		header := ctx.Request().Header.Get(strong.HeaderAuthorization)
		if header == "" {
			return challenge(ctx)
		}

		user, password, err := ParseToken(header)
		if err != nil {
			return challenge(ctx)
		}

		if !validate(user, password) {
			return challenge(ctx)
		}

		ctx.SetUserValue(UserKey, user)
		return protected(ctx)
	}
}

// BasicBcrypt is Basic validating against a map of user names to bcrypt
// hashes.
func BasicBcrypt(realm string, users map[string]string, protected ruter.Part) ruter.Part {
	return Basic(realm, func(user, password string) bool {
		hash, ok := users[user]
		if !ok {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}, protected)
}

// User returns the principal stored by a guard, or the empty string.
func User(ctx *httpcontext.Context) string {
	if v, ok := ctx.UserValue(UserKey).(string); ok {
		return v
	}
	return ""
}
