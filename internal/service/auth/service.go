package auth

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository"
	"github.com/carewire/hospital-api/pkg/auth"
	apperrors "github.com/carewire/hospital-api/pkg/errors"
	"github.com/carewire/hospital-api/pkg/security"
)

const bcryptCost = 10

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	expiry   time.Duration

	// revoked holds logged-out tokens until their natural expiry. The token
	// itself stays stateless; this is the only server-side session state.
	revoked *gocache.Cache
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   security.NewBcryptHasher(bcryptCost),
		expiry:   expiry,
		revoked:  gocache.New(expiry, 10*time.Minute),
	}
}

// Signup creates a user record with a hashed password. No token is issued;
// the user logs in afterwards.
func (s *Service) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, apperrors.Validation("invalid role", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password", err)
	}

	user := &model.User{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  hash,
		Role:          role,
		Age:           req.Age,
		Gender:        req.Gender,
		ContactNumber: req.ContactNumber,
		BloodGroup:    req.BloodGroup,
		Address:       req.Address,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.DuplicateEmail(req.Email)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are deliberately indistinguishable.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	token, err := s.jwtSvc.GenerateToken(user.ID.Hex(), user.Email, user.Role.String())
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.expiry.Seconds()),
	}, nil
}

// ResolveToken validates a bearer token and re-fetches the subject from
// storage. The token is a lookup key only; role and identity always come
// from the freshest user record.
func (s *Service) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	if _, found := s.revoked.Get(token); found {
		return nil, apperrors.InvalidToken(errors.New("token revoked"))
	}

	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, apperrors.InvalidToken(err)
	}

	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("user no longer exists")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *Service) Logout(_ context.Context, token string) error {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return err
	}

	ttl := s.expiry
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	s.revoked.Set(token, struct{}{}, ttl)
	return nil
}
