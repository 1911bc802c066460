package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/foodorder-backend/internal/cart"
	"github.com/angelmondragon/foodorder-backend/pkg/db"
	"github.com/angelmondragon/foodorder-backend/pkg/db/models"
	"github.com/angelmondragon/foodorder-backend/pkg/logger"
	"github.com/angelmondragon/foodorder-backend/pkg/metrics"
	"github.com/angelmondragon/foodorder-backend/pkg/money"
	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

type catalogRepository interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, storeID uuid.UUID, category string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, storeID, id uuid.UUID) (bool, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	ListCategories(ctx context.Context, storeID uuid.UUID) ([]models.Category, error)
	DeleteCategory(ctx context.Context, storeID, id uuid.UUID) (bool, error)
}

// storeChecker confirms a store exists before its catalog is read.
type storeChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service manages store catalogs and their live snapshots.
type Service interface {
	ListProducts(ctx context.Context, storeID uuid.UUID, category string) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, storeID uuid.UUID, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, storeID, id uuid.UUID, input ProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, storeID, id uuid.UUID) error

	ListCategories(ctx context.Context, storeID uuid.UUID) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, storeID uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, storeID, id uuid.UUID) error

	Snapshot(ctx context.Context, storeID uuid.UUID) (Snapshot, error)
	Subscribe(ctx context.Context, storeID uuid.UUID) (<-chan Snapshot, error)

	// CartProduct adapts a stored product for the cart.
	CartProduct(ctx context.Context, id uuid.UUID) (cart.Product, uuid.UUID, error)

	// Close ends every open subscription.
	Close()
}

type service struct {
	repo   catalogRepository
	stores storeChecker
	hub    *Hub
	logg   *logger.Logger
}

func NewService(repo catalogRepository, stores storeChecker, m *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &service{repo: repo, stores: stores, logg: logg}
	s.hub = NewHub(s.load, m, logg)
	return s, nil
}

func (s *service) ListProducts(ctx context.Context, storeID uuid.UUID, category string) ([]ProductDTO, error) {
	rows, err := s.repo.ListProducts(ctx, storeID, strings.TrimSpace(category))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, productFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	p, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := productFromModel(p)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, storeID uuid.UUID, input ProductInput) (*ProductDTO, error) {
	if err := s.ensureStore(ctx, storeID); err != nil {
		return nil, err
	}
	p := &models.Product{StoreID: storeID}
	if err := applyProductInput(p, input); err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	s.hub.Publish(ctx, storeID)
	dto := productFromModel(p)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, storeID, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	p, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err := applyProductInput(p, input); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	s.hub.Publish(ctx, storeID)
	dto := productFromModel(p)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, storeID, id uuid.UUID) error {
	found, err := s.repo.DeleteProduct(ctx, storeID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.hub.Publish(ctx, storeID)
	return nil
}

func (s *service) ListCategories(ctx context.Context, storeID uuid.UUID) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, categoryFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, storeID uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if err := s.ensureStore(ctx, storeID); err != nil {
		return nil, err
	}
	c := &models.Category{StoreID: storeID, Name: name}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	s.hub.Publish(ctx, storeID)
	dto := categoryFromModel(c)
	return &dto, nil
}

func (s *service) DeleteCategory(ctx context.Context, storeID, id uuid.UUID) error {
	found, err := s.repo.DeleteCategory(ctx, storeID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	s.hub.Publish(ctx, storeID)
	return nil
}

func (s *service) Snapshot(ctx context.Context, storeID uuid.UUID) (Snapshot, error) {
	if err := s.ensureStore(ctx, storeID); err != nil {
		return Snapshot{}, err
	}
	return s.load(ctx, storeID)
}

func (s *service) Subscribe(ctx context.Context, storeID uuid.UUID) (<-chan Snapshot, error) {
	if err := s.ensureStore(ctx, storeID); err != nil {
		return nil, err
	}
	return s.hub.Subscribe(ctx, storeID)
}

func (s *service) CartProduct(ctx context.Context, id uuid.UUID) (cart.Product, uuid.UUID, error) {
	p, err := s.findProduct(ctx, id)
	if err != nil {
		return cart.Product{}, uuid.Nil, err
	}
	price := money.Cents(p.PriceCents)
	return cart.Product{ID: p.ID, Name: p.Name, Price: &price}, p.StoreID, nil
}

func (s *service) Close() {
	s.hub.Close()
}

func (s *service) load(ctx context.Context, storeID uuid.UUID) (Snapshot, error) {
	products, err := s.ListProducts(ctx, storeID, "")
	if err != nil {
		return Snapshot{}, err
	}
	categories, err := s.ListCategories(ctx, storeID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{StoreID: storeID, Products: products, Categories: categories}, nil
}

func (s *service) ensureStore(ctx context.Context, storeID uuid.UUID) error {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return nil
}

func (s *service) findProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return p, nil
}

func applyProductInput(p *models.Product, input ProductInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	price, err := money.Parse(input.Price)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price").
			WithDetails(map[string]string{"price": input.Price})
	}
	image := strings.TrimSpace(input.ImageURL)
	if image == "" {
		image = PlaceholderImageURL
	}
	p.Name = name
	p.PriceCents = int64(price)
	p.Description = strings.TrimSpace(input.Description)
	p.Category = strings.TrimSpace(input.Category)
	p.ImageURL = image
	return nil
}
