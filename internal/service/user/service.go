package user

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository"
	apperrors "github.com/carewire/hospital-api/pkg/errors"
)

type Service struct {
	userRepo repository.UserRepository
}

func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// ListNonAdmin returns every user except admins, credentials excluded.
func (s *Service) ListNonAdmin(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.userRepo.List(ctx, &model.UserFilters{ExcludeAdmin: true})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}
