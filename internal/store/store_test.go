package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/quizgest/internal/nlp"
	"github.com/dgallion1/quizgest/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "quizgest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleQuestions() []quiz.Question {
	return []quiz.Question{
		{
			Kind:       quiz.KindMCQ,
			Prompt:     "_____ discovered radium in 1898.",
			Options:    []string{"Albert Einstein", "Marie Curie"},
			Answer:     "Marie Curie",
			EntityType: nlp.Person,
			Sentence:   "Marie Curie discovered radium in 1898.",
		},
		quiz.NewAssertionReason("The treaty was signed because both nations wanted peace."),
		quiz.NewTrueFalse("Water boils at one hundred degrees at sea level."),
	}
}

func TestOpen_PragmasAndMigrations(t *testing.T) {
	s := openTestStore(t)

	var fk string
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, "1", fk)

	var version int
	require.NoError(t, s.DB().QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestOpen_ReopenSkipsApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizgest.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.CreateQuiz(ctx, &Quiz{Title: "mem"}))
	list, err := s.ListQuizzes(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateSaveGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := &Quiz{Title: "Physics", Filename: "physics.pdf", ContentHash: "abc123", Seed: 42}
	require.NoError(t, s.CreateQuiz(ctx, q))
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, StatusPending, q.Status)

	require.NoError(t, s.SaveQuestions(ctx, q.ID, sampleQuestions()))

	got, err := s.GetQuiz(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Physics", got.Title)
	assert.Equal(t, "physics.pdf", got.Filename)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, uint64(42), got.Seed)
	assert.Equal(t, 3, got.QuestionCount)
	assert.WithinDuration(t, q.CreatedAt, got.CreatedAt, time.Microsecond)
	assert.Equal(t, sampleQuestions(), got.Questions)
}

func TestSaveQuiz(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := &Quiz{Title: "Physics", ContentHash: "h2", Seed: 3}
	require.NoError(t, s.SaveQuiz(ctx, q, sampleQuestions()))
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, StatusComplete, q.Status)

	got, err := s.GetQuiz(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, 3, got.QuestionCount)
	assert.Equal(t, sampleQuestions(), got.Questions)

	found, err := s.FindByContentHash(ctx, "h2")
	require.NoError(t, err)
	assert.Equal(t, q.ID, found.ID)
}

func TestSaveQuiz_FailedQuestionLeavesNoQuiz(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.DB().Exec(`
		CREATE TRIGGER reject_questions BEFORE INSERT ON questions
		BEGIN SELECT RAISE(ABORT, 'questions table is read-only'); END
	`)
	require.NoError(t, err)

	err = s.SaveQuiz(ctx, &Quiz{Title: "Physics", ContentHash: "h3"}, sampleQuestions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert question 1")

	list, err := s.ListQuizzes(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaveQuestions_Replaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := &Quiz{Title: "t"}
	require.NoError(t, s.CreateQuiz(ctx, q))
	require.NoError(t, s.SaveQuestions(ctx, q.ID, sampleQuestions()))
	require.NoError(t, s.SaveQuestions(ctx, q.ID, sampleQuestions()[:1]))

	got, err := s.GetQuiz(ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, got.Questions, 1)
	assert.Equal(t, 1, got.QuestionCount)
}

func TestSaveQuestions_UnknownQuiz(t *testing.T) {
	s := openTestStore(t)
	err := s.SaveQuestions(context.Background(), "missing", sampleQuestions())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetQuiz_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetQuiz(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListQuizzes_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		require.NoError(t, s.CreateQuiz(ctx, &Quiz{Title: title, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	all, err := s.ListQuizzes(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Title)
	assert.Equal(t, "first", all[2].Title)

	page, err := s.ListQuizzes(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Title)
}

func TestFindByContentHash(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pending := &Quiz{Title: "pending", ContentHash: "h1"}
	require.NoError(t, s.CreateQuiz(ctx, pending))

	_, err := s.FindByContentHash(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound, "pending quizzes are not reusable")

	require.NoError(t, s.SaveQuestions(ctx, pending.ID, sampleQuestions()))
	got, err := s.FindByContentHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)
	assert.Empty(t, got.Questions)
}

func TestDeleteQuiz(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := &Quiz{Title: "doomed"}
	require.NoError(t, s.CreateQuiz(ctx, q))
	require.NoError(t, s.SaveQuestions(ctx, q.ID, sampleQuestions()))

	require.NoError(t, s.DeleteQuiz(ctx, q.ID))
	_, err := s.GetQuiz(ctx, q.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM questions WHERE quiz_id = ?", q.ID).Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, s.DeleteQuiz(ctx, q.ID), ErrNotFound)
}
