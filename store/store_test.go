package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvr-ai/go-yolov5/images"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func detection(class int, label string, score, x1, y1, x2, y2 float32) Detection {
	return Detection{
		Result: postprocess.Result{
			Box:   images.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2},
			Score: score,
			Class: class,
		},
		Label: label,
	}
}

func sampleBatch(id string) *Batch {
	return &Batch{
		ID:         id,
		Model:      "yolov5",
		Confidence: 0.25,
		IoU:        0.45,
		Duration:   42 * time.Millisecond,
		Images: []Image{
			{ID: id + "-a", Source: "a.jpg", Width: 1920, Height: 1080, Detections: []Detection{}},
			{
				ID: id + "-b", Source: "b.jpg", Width: 640, Height: 480,
				Detections: []Detection{
					detection(0, "person", 0.9, 10, 20, 110, 220),
					detection(16, "dog", 0.7, 300, 30, 600, 330),
				},
			},
		},
	}
}

func TestNew_RunsMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	_, err := os.Stat(dbPath)
	require.True(t, os.IsNotExist(err))

	s, err := New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, s.Path())

	for _, table := range []string{"batches", "images", "detections"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// Migrations are idempotent.
	s2, err := New(dbPath)
	require.NoError(t, err)
	s2.Close()
}

func TestBatchRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Batches()

	in := sampleBatch("batch-1")
	require.NoError(t, repo.Save(ctx, in))
	assert.False(t, in.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, "batch-1")
	require.NoError(t, err)

	assert.Equal(t, "yolov5", got.Model)
	assert.InDelta(t, 0.25, got.Confidence, 1e-6)
	assert.InDelta(t, 0.45, got.IoU, 1e-6)
	assert.Equal(t, 42*time.Millisecond, got.Duration)
	assert.WithinDuration(t, in.CreatedAt, got.CreatedAt, time.Second)

	require.Len(t, got.Images, 2)
	assert.Equal(t, "batch-1-a", got.Images[0].ID)
	assert.NotNil(t, got.Images[0].Detections)
	assert.Empty(t, got.Images[0].Detections)

	b := got.Images[1]
	assert.Equal(t, "b.jpg", b.Source)
	assert.Equal(t, 640, b.Width)
	assert.Equal(t, in.Images[1].Detections, b.Detections)
}

func TestBatchRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Batches()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)
}

func TestBatchRepository_SaveRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := s.Batches()

	bad := sampleBatch("batch-bad")
	bad.Images[1].Width = 0 // violates the CHECK constraint
	assert.Error(t, repo.Save(ctx, bad))

	_, err := repo.GetByID(ctx, "batch-bad")
	assert.ErrorIs(t, err, ErrNotFound)

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM images").Scan(&n))
	assert.Zero(t, n)

	assert.Error(t, repo.Save(ctx, &Batch{}), "id is required")
}

func TestBatchRepository_ListCountDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := s.Batches()

	older := sampleBatch("batch-1")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, sampleBatch("batch-2")))

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "batch-2", list[0].ID, "newest first")
	assert.Empty(t, list[0].Images)

	list, err = repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	counts, err := repo.CountByClass(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ClassCount{
		{Class: 0, Label: "person", Count: 2},
		{Class: 16, Label: "dog", Count: 2},
	}, counts)

	require.NoError(t, repo.Delete(ctx, "batch-1"))

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM detections").Scan(&n))
	assert.Equal(t, 2, n, "detections of the deleted batch cascade")
}
