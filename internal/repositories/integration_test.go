package repositories

import (
	"context"
	"testing"
	"time"

	"rescuetrack/internal/models"
	"rescuetrack/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_AnimalKeysetWalk(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	defer db.Cleanup()
	ctx := context.Background()

	org, admin := testhelpers.SetupTestOrganization(t, db)
	speciesID := testhelpers.SetupTestSpecies(t, db, org.ID, admin.ID, "Red fox")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		want = append(want, testhelpers.SetupTestAnimal(t, db, org.ID, speciesID, admin.ID, "Fox", base.Add(time.Duration(i)*time.Hour)))
	}

	repo := NewAnimalRepository(db.Pool)
	var got []uuid.UUID
	req := models.PageRequest{Limit: 2}
	for {
		page, err := repo.ListByOrganization(ctx, org.ID, nil, req)
		require.NoError(t, err)
		for _, a := range page.Page {
			got = append(got, a.ID)
		}
		if page.IsDone {
			assert.Nil(t, page.ContinueCursor)
			break
		}
		require.NotNil(t, page.ContinueCursor)
		req.Cursor = *page.ContinueCursor
	}

	require.Len(t, got, 5)
	for i := range got {
		assert.Equal(t, want[len(want)-1-i], got[i], "newest first")
	}

	n, err := repo.CountByOrganization(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	has, err := NewSpeciesRepository(db.Pool).HasAnimals(ctx, speciesID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestIntegration_OrganizationIsolation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	defer db.Cleanup()
	ctx := context.Background()

	orgA, adminA := testhelpers.SetupTestOrganization(t, db)
	orgB, _ := testhelpers.SetupTestOrganization(t, db)
	speciesID := testhelpers.SetupTestSpecies(t, db, orgA.ID, adminA.ID, "Badger")
	animalID := testhelpers.SetupTestAnimal(t, db, orgA.ID, speciesID, adminA.ID, "Brock", time.Now())

	repo := NewAnimalRepository(db.Pool)
	owned, err := repo.GetByIDs(ctx, orgB.ID, []uuid.UUID{animalID})
	require.NoError(t, err)
	assert.Empty(t, owned)

	page, err := repo.ListByOrganization(ctx, orgB.ID, nil, models.PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Page)
	assert.True(t, page.IsDone)
}

func TestIntegration_BehaviorFilters(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	defer db.Cleanup()
	ctx := context.Background()

	org, admin := testhelpers.SetupTestOrganization(t, db)
	speciesID := testhelpers.SetupTestSpecies(t, db, org.ID, admin.ID, "Otter")
	animalID := testhelpers.SetupTestAnimal(t, db, org.ID, speciesID, admin.ID, "Slick", time.Now())
	march := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	testhelpers.SetupTestBehavior(t, db, org.ID, animalID, admin.ID, "Pacing along fence", march)
	testhelpers.SetupTestBehavior(t, db, org.ID, animalID, admin.ID, "Swimming", march.Add(24*time.Hour))
	testhelpers.SetupTestBehavior(t, db, org.ID, animalID, admin.ID, "Pacing at dusk", march.AddDate(0, 1, 0))

	repo := NewBehaviorRepository(db.Pool)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	page, err := repo.List(ctx, models.RecordFilter{OrganizationID: org.ID, Start: &start, End: &end}, models.PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Page, 2)

	page, err = repo.List(ctx, models.RecordFilter{OrganizationID: org.ID, Search: "PACING"}, models.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Page, 2)
	assert.Equal(t, "Pacing at dusk", page.Page[0].Behavior)

	n, err := repo.Count(ctx, models.RecordFilter{OrganizationID: org.ID, AnimalID: &animalID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
