package stores

import (
	"context"

	"github.com/angelmondragon/foodorder-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists stores.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error) {
	store := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// List returns every store ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Store, error) {
	var out []models.Store
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

// SetOwner records ownerID as the owner of the store.
func (r *Repository) SetOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", id).
		UpdateColumn("owner_user_id", ownerID).Error
}

// Delete removes the store and its catalog, returning whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("store_id = ?", id).Delete(&models.Product{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("store_id = ?", id).Delete(&models.Category{}).Error; err != nil {
		return false, err
	}
	res := db.Delete(&models.Store{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
