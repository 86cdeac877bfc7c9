package identity

import (
	"context"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var _ Verifier = (*JWTVerifier)(nil)

// JWTVerifier validates HMAC-signed bearer tokens issued by the platform's
// own auth service. Expected claims: "id" (or "sub") for the user, "tenant"
// for the tenant, optionally "email".
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	token, err := jwtlib.Parse(rawToken, func(token *jwtlib.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if errors.Is(err, jwtlib.ErrTokenMalformed) {
		return nil, errors.Wrap(MalformedCredentialErr, err.Error())
	}
	if err != nil || !token.Valid {
		return nil, errors.Wrap(InvalidCredentialErr, "[JWTVerifier.Verify] token rejected")
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrap(InvalidCredentialErr, "[JWTVerifier.Verify] error extracting claims")
	}

	userID, _ := mapClaims["id"].(string)
	if userID == "" {
		userID, _ = mapClaims["sub"].(string)
	}
	tenantID, _ := mapClaims["tenant"].(string)
	email, _ := mapClaims["email"].(string)

	return &Claims{UserID: userID, TenantID: tenantID, Email: email}, nil
}
