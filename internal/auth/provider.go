package auth

import (
	"context"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
)

type Provider interface {
	ValidateTokenLocal(token string) (*internal.User, error)
	ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error)
}
