package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eduai/assistant/internal/model"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL,
		roll_number TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		grade TEXT NOT NULL,
		percentage TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		record TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_roll_number ON submissions(roll_number);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertSubmission stores a graded submission and returns its generated ID.
// The full record is serialized as JSON alongside the indexed columns.
func (s *Store) InsertSubmission(rec model.GradingRecord, subject string) (string, error) {
	record, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO submissions (id, student_name, roll_number, subject, grade, percentage, summary, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.StudentName, rec.RollNumber, subject, string(rec.Grade), rec.Percentage, rec.Summary, string(record), time.Now().UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetSubmission returns a stored submission by ID, or nil if none exists.
func (s *Store) GetSubmission(id string) (*model.StoredSubmission, error) {
	row := s.db.QueryRow(
		`SELECT id, student_name, roll_number, subject, grade, percentage, summary, record, created_at
		 FROM submissions WHERE id = ?`, id,
	)
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubmissions returns all stored submissions, newest first.
func (s *Store) ListSubmissions() ([]model.StoredSubmission, error) {
	rows, err := s.db.Query(
		`SELECT id, student_name, roll_number, subject, grade, percentage, summary, record, created_at
		 FROM submissions ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subs []model.StoredSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// ListSubmissionsByRoll returns all submissions for a roll number, newest first.
func (s *Store) ListSubmissionsByRoll(rollNumber string) ([]model.StoredSubmission, error) {
	rows, err := s.db.Query(
		`SELECT id, student_name, roll_number, subject, grade, percentage, summary, record, created_at
		 FROM submissions WHERE roll_number = ? ORDER BY created_at DESC, id`, rollNumber,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subs []model.StoredSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// SubmissionCount returns the number of stored submissions.
func (s *Store) SubmissionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM submissions`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*model.StoredSubmission, error) {
	var sub model.StoredSubmission
	var grade, record string
	if err := row.Scan(&sub.ID, &sub.StudentName, &sub.RollNumber, &sub.Subject,
		&grade, &sub.Percentage, &sub.Summary, &record, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.Grade = model.Grade(grade)
	if err := json.Unmarshal([]byte(record), &sub.Record); err != nil {
		return nil, fmt.Errorf("unmarshal record %s: %w", sub.ID, err)
	}
	return &sub, nil
}
