// Package history journals every applied transaction to an embedded SQLite
// database, giving the node a queryable audit trail that survives restarts.
package history

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/LeJamon/goRWAd/internal/core/tx"
)

// ErrNotFound is returned when a journal entry does not exist.
var ErrNotFound = errors.New("history: entry not found")

const schema = `
CREATE TABLE IF NOT EXISTS journal (
	seq        INTEGER PRIMARY KEY,
	tx_type    TEXT    NOT NULL,
	account    TEXT    NOT NULL,
	result     TEXT    NOT NULL,
	close_time INTEGER NOT NULL,
	payload    BLOB
);
CREATE INDEX IF NOT EXISTS journal_account ON journal (account, seq);
CREATE INDEX IF NOT EXISTS journal_type ON journal (tx_type, seq);
`

// Journal stores applied-transaction records in SQLite. It implements
// tx.Journal.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path. ":memory:" works for
// tests.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal at %s: %w", path, err)
	}
	// SQLite serializes writers; a single connection avoids lock errors.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error { return j.db.Close() }

// Record appends one journal entry.
func (j *Journal) Record(entry tx.JournalEntry) error {
	_, err := j.db.Exec(
		`INSERT INTO journal (seq, tx_type, account, result, close_time, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Seq, entry.TxType, entry.Account, entry.Result, entry.CloseTime, entry.Payload,
	)
	return err
}

// Entry returns the journal entry at seq.
func (j *Journal) Entry(seq uint64) (*tx.JournalEntry, error) {
	row := j.db.QueryRow(
		`SELECT seq, tx_type, account, result, close_time, payload
		 FROM journal WHERE seq = ?`, seq)
	return scanEntry(row)
}

// LastSeq returns the highest recorded sequence, zero when empty.
func (j *Journal) LastSeq() (uint64, error) {
	var seq sql.NullInt64
	if err := j.db.QueryRow(`SELECT MAX(seq) FROM journal`).Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

// Range returns entries with from <= seq <= to, in sequence order.
func (j *Journal) Range(from, to uint64) ([]tx.JournalEntry, error) {
	rows, err := j.db.Query(
		`SELECT seq, tx_type, account, result, close_time, payload
		 FROM journal WHERE seq >= ? AND seq <= ? ORDER BY seq`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ByAccount returns up to limit most recent entries for an account.
func (j *Journal) ByAccount(account string, limit int) ([]tx.JournalEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.db.Query(
		`SELECT seq, tx_type, account, result, close_time, payload
		 FROM journal WHERE account = ? ORDER BY seq DESC LIMIT ?`, account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*tx.JournalEntry, error) {
	var e tx.JournalEntry
	err := row.Scan(&e.Seq, &e.TxType, &e.Account, &e.Result, &e.CloseTime, &e.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]tx.JournalEntry, error) {
	var entries []tx.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
