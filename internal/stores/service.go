package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/foodorder-backend/internal/orders"
	"github.com/angelmondragon/foodorder-backend/internal/users"
	"github.com/angelmondragon/foodorder-backend/pkg/config"
	"github.com/angelmondragon/foodorder-backend/pkg/db/models"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/angelmondragon/foodorder-backend/pkg/logger"
	"github.com/angelmondragon/foodorder-backend/pkg/money"
	"github.com/angelmondragon/foodorder-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

const tempPasswordLength = 16

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SessionRevoker ends every session of an account, forcing a fresh login so
// a changed role or store shows up in new tokens.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID uuid.UUID) error
}

type storeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	List(ctx context.Context) ([]models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// Service exposes store operations for every role.
type Service interface {
	List(ctx context.Context) ([]StoreDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	Create(ctx context.Context, input CreateStoreInput) (*CreateStoreResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateSettings(ctx context.Context, id uuid.UUID, input UpdateSettingsInput) (*StoreDTO, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*orders.StoreProfile, error)
}

type service struct {
	repo        storeRepository
	tx          txRunner
	passwordCfg config.PasswordConfig
	sessions    SessionRevoker
	logg        *logger.Logger
}

// NewService builds a store service. Creation and deletion run inside tx.
// sessions may be nil when no session store is available.
func NewService(repo storeRepository, tx txRunner, passwordCfg config.PasswordConfig, sessions SessionRevoker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, passwordCfg: passwordCfg, sessions: sessions, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]StoreDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(store)
	return &dto, nil
}

// GetProfile loads the data checkout prices against.
func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*orders.StoreProfile, error) {
	store, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return ProfileFromModel(store), nil
}

// Create adds a store. When an email is given the matching account becomes the
// store owner, or a new owner account is provisioned with a temporary password.
func (s *service) Create(ctx context.Context, input CreateStoreInput) (*CreateStoreResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" && !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}

	var result CreateStoreResult
	var promoted uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		storeRepo := NewRepository(tx)
		userRepo := users.NewRepository(tx)

		store, err := storeRepo.Create(ctx, CreateStoreDTO{Name: name, Email: email})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
		}
		if email != "" {
			ownerID, tempPassword, err := s.linkOwner(ctx, userRepo, email, store.ID)
			if err != nil {
				return err
			}
			if err := storeRepo.SetOwner(ctx, store.ID, ownerID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set store owner")
			}
			store.OwnerUserID = &ownerID
			result.OwnerUserID = &ownerID
			result.OwnerTempPassword = tempPassword
			if tempPassword == "" {
				promoted = ownerID
			}
		}
		result.Store = FromModel(store)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithStoreID(ctx, result.Store.ID.String())
	if promoted != uuid.Nil {
		s.endSessions(ctx, promoted)
	}
	s.logg.Info(ctx, "store created")
	return &result, nil
}

func (s *service) linkOwner(ctx context.Context, repo *users.Repository, email string, storeID uuid.UUID) (uuid.UUID, string, error) {
	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Level != nil && *existing.Level == enums.RoleLevelAdmin {
			return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeConflict, "an admin account cannot own a store")
		}
		if existing.StoreID != nil {
			return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeConflict, "account already owns a store")
		}
		if err := repo.AssignStore(ctx, existing.ID, storeID); err != nil {
			return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign store owner")
		}
		return existing.ID, "", nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup owner")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	level := enums.RoleLevelOwner
	user, err := repo.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Level:        &level,
		StoreID:      &storeID,
	})
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner")
	}
	return user.ID, tempPassword, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	var detached []uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ids, err := users.NewRepository(tx).ClearStore(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach owner")
		}
		detached = ids
		found, err := NewRepository(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete store")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	ctx = s.logg.WithStoreID(ctx, id.String())
	for _, userID := range detached {
		s.endSessions(ctx, userID)
	}
	s.logg.Info(ctx, "store deleted")
	return nil
}

// endSessions runs after the role change is committed, so a failure is logged
// rather than undoing the store change. Tokens already issued still carry the
// old identity until they expire.
func (s *service) endSessions(ctx context.Context, userID uuid.UUID) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeUser(ctx, userID); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "revoke owner sessions", err)
	}
}

func (s *service) UpdateSettings(ctx context.Context, id uuid.UUID, input UpdateSettingsInput) (*StoreDTO, error) {
	store, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
		}
		store.Name = name
	}
	if input.DeliveryFee != nil {
		store.DeliveryFeeCents = int64(money.ParseOrZero(*input.DeliveryFee))
	}
	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	dto := FromModel(store)
	return &dto, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}
