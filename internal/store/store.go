// Package store persists generated quizzes in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"github.com/dgallion1/quizgest/internal/nlp"
	"github.com/dgallion1/quizgest/internal/quiz"
	"github.com/dgallion1/quizgest/internal/store/migrations"
)

// ErrNotFound is returned when a quiz does not exist.
var ErrNotFound = errors.New("not found")

// Quiz statuses.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Quiz is a stored set of questions generated from one document.
type Quiz struct {
	ID            string          `json:"id" yaml:"id"`
	Title         string          `json:"title" yaml:"title"`
	Filename      string          `json:"filename,omitempty" yaml:"filename,omitempty"`
	ContentHash   string          `json:"content_hash" yaml:"content_hash"`
	Status        string          `json:"status" yaml:"status"`
	Seed          uint64          `json:"seed" yaml:"seed"`
	QuestionCount int             `json:"question_count" yaml:"question_count"`
	CreatedAt     time.Time       `json:"created_at" yaml:"created_at"`
	Questions     []quiz.Question `json:"questions,omitempty" yaml:"questions,omitempty"`
}

// Store is a SQLite-backed quiz repository.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn, applies pragmas and runs
// migrations. ":memory:" opens a private in-memory database.
func Open(dsn string) (*Store, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dsn == ":memory:" {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withPragmas adds per-connection pragmas to a file DSN; applyPragmas
// only reaches the first pooled connection.
func withPragmas(dsn string) string {
	if dsn == ":memory:" {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate applies NNN_name.up.sql files newer than the recorded version.
func (s *Store) migrate(fsys fs.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UTC().Format(timeLayout)); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// CreateQuiz inserts q with status pending, assigning an ID and creation
// time when unset.
func (s *Store) CreateQuiz(ctx context.Context, q *Quiz) error {
	prepareQuiz(q, StatusPending)
	return insertQuiz(ctx, s.db, q)
}

// SaveQuiz inserts q and its questions in one transaction, marked
// complete. If any insert fails nothing is written.
func (s *Store) SaveQuiz(ctx context.Context, q *Quiz, questions []quiz.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	prepareQuiz(q, StatusComplete)
	q.QuestionCount = len(questions)
	if err := insertQuiz(ctx, tx, q); err != nil {
		return err
	}
	if err := insertQuestions(ctx, tx, q.ID, questions); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveQuestions replaces the questions of a quiz and marks it complete.
func (s *Store) SaveQuestions(ctx context.Context, quizID string, questions []quiz.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE quizzes SET status = ?, question_count = ? WHERE id = ?",
		StatusComplete, len(questions), quizID)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE quiz_id = ?", quizID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	if err := insertQuestions(ctx, tx, quizID, questions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

func prepareQuiz(q *Quiz, status string) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if q.Status == "" {
		q.Status = status
	}
}

func insertQuiz(ctx context.Context, db execer, q *Quiz) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO quizzes (id, title, filename, content_hash, status, seed, question_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.Title, q.Filename, q.ContentHash, q.Status, int64(q.Seed), q.QuestionCount,
		q.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func insertQuestions(ctx context.Context, db execer, quizID string, questions []quiz.Question) error {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO questions (quiz_id, num, kind, prompt, options, answer, entity_type, assertion, reason, sentence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, q := range questions {
		opts := q.Options
		if opts == nil {
			opts = []string{}
		}
		optsJSON, err := json.Marshal(opts)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, quizID, i+1, string(q.Kind), q.Prompt, string(optsJSON),
			q.Answer, string(q.EntityType), q.Assertion, q.Reason, q.Sentence); err != nil {
			return fmt.Errorf("insert question %d: %w", i+1, err)
		}
	}
	return nil
}

const quizColumns = "id, title, filename, content_hash, status, seed, question_count, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row scanner) (*Quiz, error) {
	var q Quiz
	var seed int64
	var created string
	if err := row.Scan(&q.ID, &q.Title, &q.Filename, &q.ContentHash, &q.Status, &seed, &q.QuestionCount, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan quiz: %w", err)
	}
	q.Seed = uint64(seed)
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	q.CreatedAt = t
	return &q, nil
}

// GetQuiz returns a quiz with its questions in order.
func (s *Store) GetQuiz(ctx context.Context, id string) (*Quiz, error) {
	q, err := scanQuiz(s.db.QueryRowContext(ctx, "SELECT "+quizColumns+" FROM quizzes WHERE id = ?", id))
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, prompt, options, answer, entity_type, assertion, reason, sentence
		FROM questions WHERE quiz_id = ? ORDER BY num
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var qq quiz.Question
		var kind, optsJSON, entityType string
		if err := rows.Scan(&kind, &qq.Prompt, &optsJSON, &qq.Answer, &entityType, &qq.Assertion, &qq.Reason, &qq.Sentence); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		qq.Kind = quiz.Kind(kind)
		qq.EntityType = nlp.EntityType(entityType)
		if err := json.Unmarshal([]byte(optsJSON), &qq.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		if len(qq.Options) == 0 {
			qq.Options = nil
		}
		q.Questions = append(q.Questions, qq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return q, nil
}

// ListQuizzes returns quizzes newest first, without their questions.
// limit <= 0 returns all.
func (s *Store) ListQuizzes(ctx context.Context, limit, offset int) ([]Quiz, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+quizColumns+" FROM quizzes ORDER BY created_at DESC, id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()

	out := []Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return out, nil
}

// FindByContentHash returns the most recent complete quiz generated from
// text with the given hash.
func (s *Store) FindByContentHash(ctx context.Context, hash string) (*Quiz, error) {
	return scanQuiz(s.db.QueryRowContext(ctx,
		"SELECT "+quizColumns+" FROM quizzes WHERE content_hash = ? AND status = ? ORDER BY created_at DESC LIMIT 1",
		hash, StatusComplete))
}

// DeleteQuiz removes a quiz and its questions.
func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE quiz_id = ?", id); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM quizzes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
