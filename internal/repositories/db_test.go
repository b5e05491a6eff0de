package repositories

import (
	"testing"
	"time"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)
	id := uuid.New()

	gotAt, gotID, err := DecodeCursor(EncodeCursor(at, id))
	require.NoError(t, err)
	assert.True(t, at.Equal(gotAt))
	assert.Equal(t, id, gotID)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%"},
		{"missing separator", "MTIzNDU"},
		{"bad nanos", "YWJjOjU1MGU4NDAwLWUyOWItNDFkNC1hNzE2LTQ0NjY1NTQ0MDAwMA"},
		{"bad uuid", "MTIzOm5vdC1hLXV1aWQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeCursor(tt.cursor)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}

func TestBuildPage(t *testing.T) {
	now := time.Now()
	items := []*models.Species{
		{ID: uuid.New(), CreatedAt: now},
		{ID: uuid.New(), CreatedAt: now.Add(-time.Second)},
	}

	done := buildPage(items, 2)
	assert.True(t, done.IsDone)
	assert.Nil(t, done.ContinueCursor)
	assert.Len(t, done.Page, 2)

	more := buildPage(items, 1)
	assert.False(t, more.IsDone)
	require.NotNil(t, more.ContinueCursor)
	assert.Len(t, more.Page, 1)

	empty := buildPage[*models.Species](nil, 10)
	assert.NotNil(t, empty.Page)
	assert.True(t, empty.IsDone)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%fox%", likePattern(" fox "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestWhereBuilder(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "", w.sql())

	org := uuid.New()
	w.add("organization_id = $%d", org)
	w.add("created_at BETWEEN $%d AND $%d", time.Unix(0, 0), time.Unix(10, 0))
	assert.Equal(t, "WHERE organization_id = $1 AND created_at BETWEEN $2 AND $3", w.sql())
	assert.Equal(t, "$4", w.next(5))
	assert.Len(t, w.args, 4)
}
