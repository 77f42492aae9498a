package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
)

// LocalAuthProvider verifies HMAC-signed JWTs without calling out to the
// identity provider. The token subject is the user ID.
type LocalAuthProvider struct {
	secret []byte
	logger internal.Logger
}

func NewLocalAuthProvider(secret string, logger internal.Logger) *LocalAuthProvider {
	return &LocalAuthProvider{secret: []byte(secret), logger: logger}
}

func (a *LocalAuthProvider) ValidateTokenLocal(token string) (*internal.User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		a.logger.Warnf("invalid token: %v", err)
		return nil, errors.New("invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		a.logger.Warnf("token missing subject claim")
		return nil, errors.New("invalid token")
	}
	name, _ := claims["name"].(string)
	return &internal.User{ID: sub, Token: token, Name: name}, nil
}

func (a *LocalAuthProvider) ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error) {
	a.logger.Warnf("ValidateTokenRemote not implemented in LocalAuthProvider")
	return nil, errors.New("not implemented in LocalAuthProvider")
}
