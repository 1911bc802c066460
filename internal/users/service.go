package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/foodorder-backend/internal/roles"
	"github.com/angelmondragon/foodorder-backend/pkg/db/models"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByLevel(ctx context.Context, level enums.RoleLevel) ([]models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, address string) (bool, error)
}

// Service exposes profile and identity lookups.
type Service interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*roles.Identity, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*UserDTO, error)
	ListOwners(ctx context.Context) ([]UserDTO, error)
}

type service struct {
	repo userRepository
}

func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

// Resolve loads the identity of userID. A user without a valid level resolves
// to an identity whose Role is Unresolved.
func (s *service) Resolve(ctx context.Context, userID uuid.UUID) (*roles.Identity, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return IdentityFromModel(user), nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*UserDTO, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	address := strings.TrimSpace(input.Address)
	if name == "" || phone == "" || address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, phone and address are required")
	}
	ok, err := s.repo.UpdateProfile(ctx, userID, name, phone, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return s.GetProfile(ctx, userID)
}

func (s *service) ListOwners(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.ListByLevel(ctx, enums.RoleLevelOwner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owners")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) find(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
