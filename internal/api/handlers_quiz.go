package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/quizgest/internal/pipeline"
	"github.com/dgallion1/quizgest/internal/quiz"
	"github.com/dgallion1/quizgest/internal/selector"
	"github.com/dgallion1/quizgest/internal/store"
	"github.com/go-chi/chi/v5"
)

type generateRequest struct {
	Text   string `json:"text"`
	Title  string `json:"title"`
	TopN   int    `json:"top_n"`
	Seed   uint64 `json:"seed"`
	Format string `json:"format"`
}

// handleGenerate runs the pipeline synchronously on pasted text. Nothing
// is stored.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.TopN < 0 {
		jsonError(w, "top_n must not be negative", http.StatusBadRequest)
		return
	}
	format := quiz.FormatJSON
	if req.Format != "" {
		f, err := quiz.ParseFormat(req.Format)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	res, err := s.orchestrator.GenerateText(r.Context(), req.Title, req.Text, pipeline.Request{
		TopN: req.TopN,
		Seed: req.Seed,
	})
	if errors.Is(err, selector.ErrInsufficientSentences) {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		s.log.Error("generate failed", "error", err)
		jsonError(w, "generation failed", http.StatusInternalServerError)
		return
	}

	if format == quiz.FormatJSON {
		if res.Questions == nil {
			res.Questions = []quiz.Question{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"title":        res.Title,
			"seed":         res.Seed,
			"content_hash": res.ContentHash,
			"sentences":    res.Sentences,
			"questions":    res.Questions,
			"dropped":      res.Dropped,
		})
		return
	}
	s.writeQuestions(w, res.Questions, format)
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	quizzes, err := s.quizzes.ListQuizzes(r.Context(), limit, offset)
	if err != nil {
		s.log.Error("list quizzes failed", "error", err)
		jsonError(w, "failed to list quizzes", http.StatusInternalServerError)
		return
	}
	if quizzes == nil {
		quizzes = []store.Quiz{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	format := quiz.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := quiz.ParseFormat(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	q, err := s.quizzes.GetQuiz(r.Context(), quizID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "quiz not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get quiz failed", "quiz_id", quizID, "error", err)
		jsonError(w, "failed to load quiz", http.StatusInternalServerError)
		return
	}

	if format == quiz.FormatJSON {
		if q.Questions == nil {
			q.Questions = []quiz.Question{}
		}
		writeJSON(w, http.StatusOK, q)
		return
	}
	s.writeQuestions(w, q.Questions, format)
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	err := s.quizzes.DeleteQuiz(r.Context(), quizID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "quiz not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete quiz failed", "quiz_id", quizID, "error", err)
		jsonError(w, "failed to delete quiz", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": quizID})
}

func (s *Server) handlePipelineStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.orchestrator.Stats(),
	})
}

// writeQuestions renders questions in a non-JSON format. The body is
// buffered so an encoding error can still become a 500.
func (s *Server) writeQuestions(w http.ResponseWriter, questions []quiz.Question, f quiz.Format) {
	var buf bytes.Buffer
	if err := quiz.Write(&buf, questions, f); err != nil {
		s.log.Error("encode questions failed", "format", f, "error", err)
		jsonError(w, "failed to encode questions", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key + ": " + strconv.Quote(v))
	}
	return n, nil
}
