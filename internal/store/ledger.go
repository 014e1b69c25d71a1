package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ecosortai/ecosort/internal/ledger"
)

// LedgerRepository stores the kiosk's single-user point ledger.
// It implements ledger.Store as the embedded-database alternative to the
// JSON file store.
type LedgerRepository struct {
	db *sql.DB
}

// Ledger returns the ledger repository for this store.
func (s *Store) Ledger() *LedgerRepository {
	return &LedgerRepository{db: s.db}
}

// Load reads the persisted ledger record. A missing row yields the
// default record.
func (r *LedgerRepository) Load() (ledger.Record, error) {
	record := ledger.DefaultRecord()

	err := r.db.QueryRow(
		`SELECT earned_points, spent_points, avatar FROM ledger WHERE id = 1`,
	).Scan(&record.EarnedPoints, &record.SpentPoints, &record.Avatar)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.DefaultRecord(), nil
		}
		return ledger.DefaultRecord(), err
	}

	rows, err := r.db.Query(
		`SELECT voucher FROM redeemed_vouchers ORDER BY position`,
	)
	if err != nil {
		return ledger.DefaultRecord(), err
	}
	defer rows.Close()

	for rows.Next() {
		var voucher string
		if err := rows.Scan(&voucher); err != nil {
			return ledger.DefaultRecord(), err
		}
		record.Vouchers = append(record.Vouchers, voucher)
	}
	if err := rows.Err(); err != nil {
		return ledger.DefaultRecord(), err
	}

	return record, nil
}

// Save writes the full record in a single transaction so a failure
// never leaves it half-written.
func (r *LedgerRepository) Save(record ledger.Record) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO ledger (id, earned_points, spent_points, avatar, updated_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			earned_points = excluded.earned_points,
			spent_points = excluded.spent_points,
			avatar = excluded.avatar,
			updated_at = excluded.updated_at`,
		record.EarnedPoints, record.SpentPoints, record.Avatar, time.Now(),
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM redeemed_vouchers`); err != nil {
		return err
	}
	for _, voucher := range record.Vouchers {
		if _, err := tx.Exec(
			`INSERT INTO redeemed_vouchers (voucher) VALUES (?)`, voucher,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
