package auth

import (
	"fmt"
	"strings"

	jwtgo "github.com/dgrijalva/jwt-go"
	"github.com/kildevaeld/strong"

	"github.com/kildevaeld/ruter"
	"github.com/kildevaeld/ruter/httpcontext"
	"github.com/kildevaeld/ruter/status"
)

// ClaimsKey is the user value under which JWT stores the verified claims.
const ClaimsKey = "auth.claims"

// JWT protects a part with a bearer token signed with an HMAC key. The
// optional validate callback can reject tokens based on their claims. The
// sub claim, when present, becomes the authenticated principal.
func JWT(realm string, key []byte, validate func(claims jwtgo.MapClaims) bool, protected ruter.Part) ruter.Part {
	challenge := ruter.Compose(
		ruter.SetHeader(strong.HeaderWWWAuthenticate, fmt.Sprintf("Bearer realm=%q", realm)),
		ruter.Respond(status.Unauthorized, []byte(status.Unauthorized.Message())),
	)

	return func(ctx *httpcontext.Context) (ruter.Result, error) {
		header := ctx.Request().Header.Get(strong.HeaderAuthorization)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return challenge(ctx)
		}

		token, err := jwtgo.Parse(strings.TrimSpace(parts[1]), func(t *jwtgo.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwtgo.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			return challenge(ctx)
		}

		claims, ok := token.Claims.(jwtgo.MapClaims)
		if !ok {
			return challenge(ctx)
		}
		if validate != nil && !validate(claims) {
			return challenge(ctx)
		}

		if sub, ok := claims["sub"].(string); ok {
			ctx.SetUserValue(UserKey, sub)
		}
		ctx.SetUserValue(ClaimsKey, claims)

		return protected(ctx)
	}
}
