package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Events table - durable backup of the detection history
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			material TEXT NOT NULL CHECK(material IN ('Cardboard', 'Metal', 'Paper', 'Plastic')),
			credits INTEGER NOT NULL CHECK(credits >= 0)
		)`,

		// Ledger table - single-row point ledger for the kiosk user
		`CREATE TABLE IF NOT EXISTS ledger (
			id INTEGER PRIMARY KEY CHECK(id = 1),
			earned_points INTEGER NOT NULL DEFAULT 0 CHECK(earned_points >= 0),
			spent_points INTEGER NOT NULL DEFAULT 0 CHECK(spent_points >= 0),
			avatar TEXT NOT NULL DEFAULT '',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Redeemed vouchers table - one row per redeemed voucher, ordered
		`CREATE TABLE IF NOT EXISTS redeemed_vouchers (
			position INTEGER PRIMARY KEY AUTOINCREMENT,
			voucher TEXT NOT NULL UNIQUE
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_events_material ON events(material)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
