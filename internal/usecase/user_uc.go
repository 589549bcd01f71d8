package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

// UserUseCase manages accounts. Credential verification happens upstream at
// the identity provider; this service only maintains the account record a
// verified identity maps onto.
type UserUseCase interface {
	// FindOrRegister returns the account for a verified identity, creating it
	// on first sight.
	FindOrRegister(ctx context.Context, email, displayName string) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
}

var _ UserUseCase = (*userUC)(nil)

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) UserUseCase {
	l := logger.With().Str("component", "UserUseCase").Logger()
	return &userUC{users: users, log: &l}
}

func (uc *userUC) FindOrRegister(ctx context.Context, email, displayName string) (*model.User, error) {
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	existing, err := uc.users.FindByEmail(ctx, repository.NoTX, email)
	switch {
	case err == nil:
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, err
	}

	u, err := model.NewUser(uuid.NewString(), email, displayName)
	if err != nil {
		return nil, err
	}
	if err := uc.users.Save(ctx, repository.NoTX, u); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

func (uc *userUC) Get(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return uc.users.FindByID(ctx, repository.NoTX, userID)
}
