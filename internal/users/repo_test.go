package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/foodorder-backend/pkg/db"
	"github.com/angelmondragon/foodorder-backend/pkg/db/dbtest"
	"github.com/angelmondragon/foodorder-backend/pkg/db/models"
	"github.com/angelmondragon/foodorder-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func levelPtr(l enums.RoleLevel) *enums.RoleLevel { return &l }

func seedStore(t *testing.T, client *db.Client) uuid.UUID {
	t.Helper()
	store := models.Store{Name: "Pizzaria"}
	if err := client.DB().Create(&store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store.ID
}

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "ana@example.com",
		PasswordHash: "hash",
		Name:         "Ana",
		Phone:        "1199999",
		Address:      "Rua A, 123",
		Level:        levelPtr(enums.RoleLevelCustomer),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	byEmail, err := repo.FindByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != created.ID || byEmail.Level == nil || *byEmail.Level != enums.RoleLevelCustomer {
		t.Fatalf("unexpected user %+v", byEmail)
	}

	if _, err := repo.FindByID(ctx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())

	if _, err := repo.Create(ctx, CreateUserDTO{Email: "dup@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := repo.Create(ctx, CreateUserDTO{Email: "dup@example.com", PasswordHash: "y"})
	if !db.IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestRepositoryNullLevelRoundTrips(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())

	created, err := repo.Create(ctx, CreateUserDTO{Email: "nolevel@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Level != nil {
		t.Fatalf("expected nil level, got %v", *got.Level)
	}
}

func TestRepositoryAssignAndClearStore(t *testing.T) {
	ctx := context.Background()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	storeID := seedStore(t, client)

	user, err := repo.Create(ctx, CreateUserDTO{Email: "owner@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.AssignStore(ctx, user.ID, storeID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	owners, err := repo.ListByLevel(ctx, enums.RoleLevelOwner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(owners) != 1 || owners[0].StoreID == nil || *owners[0].StoreID != storeID {
		t.Fatalf("unexpected owners %+v", owners)
	}

	cleared, err := repo.ClearStore(ctx, storeID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(cleared) != 1 || cleared[0] != user.ID {
		t.Fatalf("expected cleared owner %s, got %v", user.ID, cleared)
	}
	got, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.StoreID != nil {
		t.Fatalf("expected store cleared, got %v", got.StoreID)
	}
}

func TestRepositoryUpdateProfileAndLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())

	user, err := repo.Create(ctx, CreateUserDTO{Email: "p@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, err := repo.UpdateProfile(ctx, user.ID, "Paula", "11", "Rua B, 45")
	if err != nil || !ok {
		t.Fatalf("update profile ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateProfile(ctx, uuid.New(), "x", "y", "z")
	if err != nil || ok {
		t.Fatalf("expected no match, ok=%v err=%v", ok, err)
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.UpdateLastLogin(ctx, user.ID, at); err != nil {
		t.Fatalf("last login: %v", err)
	}
	got, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Name != "Paula" || got.Address != "Rua B, 45" {
		t.Fatalf("unexpected profile %+v", got)
	}
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(at) {
		t.Fatalf("unexpected last login %v", got.LastLoginAt)
	}
}
