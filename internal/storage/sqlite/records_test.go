// ABOUTME: Tests for record import, listing and lookup
package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/docchat/internal/models"
)

func newTestRecordStore(t *testing.T) *RecordStore {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.Records()
}

func scienceRecord() models.Record {
	return models.Record{
		Board:   "CBSE",
		Class:   "10",
		Subject: "Science",
		Contents: []models.ChapterContent{
			{Chapter: "Light", Content: "Light travels in straight lines."},
			{Chapter: "Electricity", Content: "Current is the flow of charge."},
		},
	}
}

func TestRecordStore_ImportAndGet(t *testing.T) {
	store := newTestRecordStore(t)
	ctx := context.Background()

	n, err := store.ImportRecords(ctx, []models.Record{scienceRecord()})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := store.GetRecord(ctx, "cbse", "10", "science")
	require.NoError(t, err)
	assert.Equal(t, "CBSE", rec.Board)
	assert.Equal(t, []string{"Light", "Electricity"}, rec.Chapters())
	assert.Equal(t, "Current is the flow of charge.", rec.Contents[1].Content)
}

func TestRecordStore_GetMissing(t *testing.T) {
	store := newTestRecordStore(t)

	_, err := store.GetRecord(context.Background(), "ICSE", "9", "Maths")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestRecordStore_ReimportReplacesChapters(t *testing.T) {
	store := newTestRecordStore(t)
	ctx := context.Background()

	_, err := store.ImportRecords(ctx, []models.Record{scienceRecord()})
	require.NoError(t, err)

	updated := scienceRecord()
	updated.Contents = []models.ChapterContent{{Chapter: "Magnetism", Content: "Magnets attract iron."}}
	_, err = store.ImportRecords(ctx, []models.Record{updated})
	require.NoError(t, err)

	rec, err := store.GetRecord(ctx, "CBSE", "10", "Science")
	require.NoError(t, err)
	assert.Equal(t, []string{"Magnetism"}, rec.Chapters())

	list, err := store.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordStore_List(t *testing.T) {
	store := newTestRecordStore(t)
	ctx := context.Background()

	empty, err := store.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	maths := models.Record{Board: "CBSE", Class: "10", Subject: "Maths"}
	_, err = store.ImportRecords(ctx, []models.Record{scienceRecord(), maths})
	require.NoError(t, err)

	list, err := store.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "CBSE/10/Maths", list[0].Key())
	assert.Empty(t, list[0].Chapters)
	assert.Equal(t, "CBSE/10/Science", list[1].Key())
	assert.Equal(t, []string{"Light", "Electricity"}, list[1].Chapters)
	assert.False(t, list[1].Updated.IsZero())
}

func TestRecordStore_ImportValidation(t *testing.T) {
	store := newTestRecordStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  models.Record
	}{
		{"missing board", models.Record{Class: "10", Subject: "Science"}},
		{"unnamed chapter", models.Record{Board: "B", Class: "1", Subject: "S", Contents: []models.ChapterContent{{Content: "x"}}}},
		{"duplicate chapter", models.Record{Board: "B", Class: "1", Subject: "S", Contents: []models.ChapterContent{{Chapter: "A"}, {Chapter: "a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.ImportRecords(ctx, []models.Record{scienceRecord(), tt.rec})
			assert.True(t, errors.Is(err, models.ErrInvalidInput))
		})
	}

	// nothing from a rejected batch is stored
	list, err := store.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecordStore_Delete(t *testing.T) {
	store := newTestRecordStore(t)
	ctx := context.Background()

	_, err := store.ImportRecords(ctx, []models.Record{scienceRecord()})
	require.NoError(t, err)

	require.NoError(t, store.DeleteRecord(ctx, "CBSE", "10", "Science"))
	_, err = store.GetRecord(ctx, "CBSE", "10", "Science")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.True(t, errors.Is(store.DeleteRecord(ctx, "CBSE", "10", "Science"), models.ErrNotFound))
}
