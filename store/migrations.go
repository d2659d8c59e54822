package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per Detect call
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			model TEXT NOT NULL DEFAULT '',
			confidence REAL NOT NULL,
			iou REAL NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Images of a batch, in batch order
		`CREATE TABLE IF NOT EXISTS images (
			id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			width INTEGER NOT NULL CHECK(width > 0),
			height INTEGER NOT NULL CHECK(height > 0)
		)`,

		// Boxes in original image pixel coordinates
		`CREATE TABLE IF NOT EXISTS detections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			image_id TEXT NOT NULL REFERENCES images(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			class INTEGER NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			score REAL NOT NULL,
			x1 REAL NOT NULL,
			y1 REAL NOT NULL,
			x2 REAL NOT NULL,
			y2 REAL NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_images_batch_id ON images(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_image_id ON detections(image_id)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_class ON detections(class)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
