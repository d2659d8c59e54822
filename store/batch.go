package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/nvr-ai/go-yolov5/images"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"github.com/pkg/errors"
)

// Batch is a stored Detect call.
type Batch struct {
	ID         string        `json:"id"`
	Model      string        `json:"model"`
	Confidence float32       `json:"confidence"`
	IoU        float32       `json:"iou"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
	Images     []Image       `json:"images"`
}

// Image is one image of a stored batch.
type Image struct {
	ID         string      `json:"id"`
	Source     string      `json:"source"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Detections []Detection `json:"detections"`
}

// Detection is a stored result with its resolved label.
type Detection struct {
	postprocess.Result
	Label string `json:"label"`
}

// ClassCount is the number of stored detections of one class.
type ClassCount struct {
	Class int    `json:"class"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BatchRepository stores and reads detection batches.
type BatchRepository struct {
	db *sql.DB
}

// Batches returns the batch repository for this store.
func (s *Store) Batches() *BatchRepository {
	return &BatchRepository{db: s.db}
}

// Save inserts b with all its images and detections in a single transaction.
// A zero CreatedAt is set to the current time.
func (r *BatchRepository) Save(ctx context.Context, b *Batch) error {
	if b.ID == "" {
		return errors.New("batch id is required")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, model, confidence, iou, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Model, b.Confidence, b.IoU, b.Duration.Milliseconds(), b.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert batch %s", b.ID)
	}

	imageStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO images (id, batch_id, position, source, width, height) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare image insert")
	}
	defer imageStmt.Close()

	detectionStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO detections (image_id, seq, class, label, score, x1, y1, x2, y2)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare detection insert")
	}
	defer detectionStmt.Close()

	for i, img := range b.Images {
		if _, err := imageStmt.ExecContext(ctx, img.ID, b.ID, i, img.Source, img.Width, img.Height); err != nil {
			return errors.Wrapf(err, "insert image %s", img.ID)
		}
		for rank, d := range img.Detections {
			box := d.Box
			if _, err := detectionStmt.ExecContext(ctx, img.ID, rank, d.Class, d.Label, d.Score,
				box.X1, box.Y1, box.X2, box.Y2); err != nil {
				return errors.Wrapf(err, "insert detection %d of image %s", rank, img.ID)
			}
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// GetByID reads a batch with its images and detections, in their saved order.
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*Batch, error) {
	b := &Batch{}
	var durationMS int64

	err := r.db.QueryRowContext(ctx,
		`SELECT id, model, confidence, iou, duration_ms, created_at FROM batches WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.Model, &b.Confidence, &b.IoU, &durationMS, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotFound, "batch %s", id)
		}
		return nil, err
	}
	b.Duration = time.Duration(durationMS) * time.Millisecond

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source, width, height FROM images WHERE batch_id = ? ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.Source, &img.Width, &img.Height); err != nil {
			return nil, err
		}
		img.Detections = []Detection{}
		index[img.ID] = len(b.Images)
		b.Images = append(b.Images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	detRows, err := r.db.QueryContext(ctx,
		`SELECT d.image_id, d.class, d.label, d.score, d.x1, d.y1, d.x2, d.y2
		 FROM detections d JOIN images i ON i.id = d.image_id
		 WHERE i.batch_id = ?
		 ORDER BY i.position, d.seq`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer detRows.Close()

	for detRows.Next() {
		var imageID string
		var d Detection
		var box images.Rect
		if err := detRows.Scan(&imageID, &d.Class, &d.Label, &d.Score,
			&box.X1, &box.Y1, &box.X2, &box.Y2); err != nil {
			return nil, err
		}
		d.Box = box
		i := index[imageID]
		b.Images[i].Detections = append(b.Images[i].Detections, d)
	}

	return b, detRows.Err()
}

// List returns the most recent batches without their images, newest first.
// A limit of zero or less returns all of them.
func (r *BatchRepository) List(ctx context.Context, limit int) ([]*Batch, error) {
	query := `SELECT id, model, confidence, iou, duration_ms, created_at FROM batches
		 ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*Batch
	for rows.Next() {
		b := &Batch{}
		var durationMS int64
		if err := rows.Scan(&b.ID, &b.Model, &b.Confidence, &b.IoU, &durationMS, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Duration = time.Duration(durationMS) * time.Millisecond
		batches = append(batches, b)
	}

	return batches, rows.Err()
}

// CountByClass returns the number of stored detections per class, most
// frequent first.
func (r *BatchRepository) CountByClass(ctx context.Context) ([]ClassCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT class, MAX(label), COUNT(*) FROM detections
		 GROUP BY class ORDER BY COUNT(*) DESC, class`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ClassCount
	for rows.Next() {
		var c ClassCount
		if err := rows.Scan(&c.Class, &c.Label, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// Delete removes a batch and, through the foreign keys, its images and
// detections.
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "batch %s", id)
	}
	return nil
}
