package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoreau/nutritrack/internal/models"
)

func TestCodeFromLabel(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Diabète Type 2", "D2"},
		{"Hypertension", "HY"},
		{"Maladie cœliaque", "MC"},
		{"Goutte", "GO"},
		{"X", "XU"},
		{"---", "CU"},
		{"", "CU"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CodeFromLabel(tc.label), "label %q", tc.label)
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fruits-a-coque", Slugify("Fruits à coque"))
	assert.Equal(t, "diabete-type-2", Slugify("Diabète Type 2"))
	assert.Equal(t, "abc", Slugify("  abc  "))
	assert.Equal(t, "", Slugify("---"))
}

func TestAddCustomRevivesHidden(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewPathologyService(db)
	ctx := context.Background()

	entry, err := svc.AddCustom(ctx, user.ID, "Migraine chronique", nil)
	require.NoError(t, err)

	require.NoError(t, svc.SetCustomHidden(ctx, user.ID, entry.ID, true))

	// Re-adding the same label, case-insensitively, revives instead of duplicating.
	revived, err := svc.AddCustom(ctx, user.ID, "MIGRAINE CHRONIQUE", nil)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, revived.ID)
	assert.False(t, revived.IsHidden)

	rows, err := svc.ListCustom(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAddCustomRejectsShortLabel(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewPathologyService(db)

	_, err := svc.AddCustom(context.Background(), user.ID, " x ", nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPromoteCreatesDefaultWithDerivedCode(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewPathologyService(db)
	ctx := context.Background()

	entry, err := svc.AddCustom(ctx, user.ID, "Diabète Type 2", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Promote(ctx, []uuid.UUID{entry.ID}))

	defaults, err := svc.ListDefaults(ctx)
	require.NoError(t, err)
	require.Len(t, defaults, 1)
	assert.Equal(t, "D2", defaults[0].Code)
	assert.Equal(t, "Diabète Type 2", defaults[0].Label)

	// The custom row is left in place.
	customs, err := svc.ListCustom(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, customs, 1)
}

func TestPromoteSkipsConflicts(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewPathologyService(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Pathology{Code: "D2", Label: "Diabète Type 2"}).Error)

	sameLabel, err := svc.AddCustom(ctx, user.ID, "diabète type 2", nil)
	require.NoError(t, err)
	sameCode, err := svc.AddCustom(ctx, user.ID, "Dystonie 2aire", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Promote(ctx, []uuid.UUID{sameLabel.ID, sameCode.ID}))

	defaults, err := svc.ListDefaults(ctx)
	require.NoError(t, err)
	assert.Len(t, defaults, 1)
}

func TestDemoteCopiesAndKeepsDefault(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewPathologyService(db)
	ctx := context.Background()

	def := models.Pathology{Code: "HY", Label: "Hypertension"}
	require.NoError(t, db.Create(&def).Error)

	require.NoError(t, svc.Demote(ctx, user.ID, def.ID))

	customs, err := svc.ListCustom(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, customs, 1)
	assert.Equal(t, "Hypertension", customs[0].Label)
	require.NotNil(t, customs[0].Code)
	assert.Equal(t, "HY", *customs[0].Code)

	// The default row stays.
	defaults, err := svc.ListDefaults(ctx)
	require.NoError(t, err)
	assert.Len(t, defaults, 1)

	// Demoting again does not duplicate.
	require.NoError(t, svc.Demote(ctx, user.ID, def.ID))
	customs, err = svc.ListCustom(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, customs, 1)
}

func TestUserPathologyLinks(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewPathologyService(db)
	ctx := context.Background()

	def := models.Pathology{Code: "AN", Label: "Anémie"}
	require.NoError(t, db.Create(&def).Error)

	link, err := svc.AddMine(ctx, user.ID, def.ID)
	require.NoError(t, err)
	require.NotNil(t, link.Pathology)
	assert.Equal(t, "Anémie", link.Pathology.Label)

	// Linking twice violates the pair uniqueness.
	_, err = svc.AddMine(ctx, user.ID, def.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, svc.RemoveMine(ctx, user.ID, def.ID))
	mine, err := svc.ListMine(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
