package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"rescuetrack/internal/models"
	"rescuetrack/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TestDB holds the database connection for integration tests.
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema.
// The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db := &TestDB{Pool: pool}
	db.Cleanup = func() { pool.Close() }
	return db
}

// SetupTestOrganization inserts an organization with one admin and returns both.
// Deleting the organization cascades to everything created under it.
func SetupTestOrganization(t *testing.T, db *TestDB) (*models.Organization, *models.Staff) {
	t.Helper()
	ctx := context.Background()

	org := &models.Organization{
		ID:         uuid.New(),
		Name:       "Test Shelter",
		Address:    "1 Test Lane",
		Email:      uuid.NewString()[:8] + "@shelter.test",
		InviteCode: uuid.NewString()[:8],
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO organizations (id, name, address, email, invite_code) VALUES ($1, $2, $3, $4, $5)`,
		org.ID, org.Name, org.Address, org.Email, org.InviteCode)
	if err != nil {
		t.Fatalf("Failed to create test organization: %v", err)
	}

	admin := &models.Staff{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Name:           "Test Admin",
		Email:          org.Email,
		PasswordHash:   "x",
		Role:           models.RoleAdmin,
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO staff (id, organization_id, name, email, password_hash, role) VALUES ($1, $2, $3, $4, $5, $6)`,
		admin.ID, admin.OrganizationID, admin.Name, admin.Email, admin.PasswordHash, admin.Role)
	if err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}

	t.Cleanup(func() {
		if _, err := db.Pool.Exec(context.Background(), `DELETE FROM organizations WHERE id = $1`, org.ID); err != nil {
			t.Logf("Failed to clean up organization %s: %v", org.ID, err)
		}
	})
	return org, admin
}

// SetupTestSpecies creates a species in the organization.
func SetupTestSpecies(t *testing.T, db *TestDB, orgID, createdBy uuid.UUID, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO species (id, organization_id, name, created_by) VALUES ($1, $2, $3, $4)`,
		id, orgID, name, createdBy)
	if err != nil {
		t.Fatalf("Failed to create test species: %v", err)
	}
	return id
}

// SetupTestAnimal creates an active animal with the given creation time.
func SetupTestAnimal(t *testing.T, db *TestDB, orgID, speciesID, createdBy uuid.UUID, name string, createdAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO animals (id, organization_id, species_id, name, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 'active', $5, $6, $6)`,
		id, orgID, speciesID, name, createdBy, createdAt)
	if err != nil {
		t.Fatalf("Failed to create test animal: %v", err)
	}
	return id
}

// SetupTestBehavior records a behavior observation for an animal.
func SetupTestBehavior(t *testing.T, db *TestDB, orgID, animalID, staffID uuid.UUID, behavior string, createdAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO behaviors (id, organization_id, animal_id, staff_id, behavior, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		id, orgID, animalID, staffID, behavior, createdAt)
	if err != nil {
		t.Fatalf("Failed to create test behavior: %v", err)
	}
	return id
}
