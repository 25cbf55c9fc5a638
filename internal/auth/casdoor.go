package auth

import (
	"context"
	"fmt"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/quizdeck/quiz-service/internal/models"
)

// CasdoorConfig holds the connection settings for the Casdoor deployment
// that issues tokens for this service.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// CasdoorResolver validates Casdoor-issued JWTs and maps them to identities.
type CasdoorResolver struct {
	client *casdoorsdk.Client
}

func NewCasdoorResolver(cfg CasdoorConfig) *CasdoorResolver {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorResolver{client: client}
}

func (r *CasdoorResolver) Resolve(_ context.Context, credential string) (*Identity, error) {
	claims, err := r.client.ParseJwtToken(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Identity{
		ID:        claims.User.Id,
		Role:      roleFromClaims(claims),
		FirstName: claims.User.FirstName,
		LastName:  claims.User.LastName,
	}, nil
}

// roleFromClaims maps Casdoor user attributes onto service roles. Creators
// are tagged in Casdoor; everyone else takes quizzes.
func roleFromClaims(claims *casdoorsdk.Claims) models.UserRole {
	if claims.User.IsAdmin {
		return models.RoleAdmin
	}
	if claims.User.Tag == string(models.RoleCreator) {
		return models.RoleCreator
	}
	return models.RoleTaker
}
