package catalog

import (
	"context"

	"github.com/angelmondragon/foodorder-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists products and categories.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns the store's products by name. A non-empty category
// narrows the result to that category.
func (r *Repository) ListProducts(ctx context.Context, storeID uuid.UUID, category string) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []models.Product
	err := q.Order("name ASC").Order("id ASC").Find(&out).Error
	return out, err
}

func (r *Repository) UpdateProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *Repository) DeleteProduct(ctx context.Context, storeID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("store_id = ?", storeID).Delete(&models.Product{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) ListCategories(ctx context.Context, storeID uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *Repository) DeleteCategory(ctx context.Context, storeID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("store_id = ?", storeID).Delete(&models.Category{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
