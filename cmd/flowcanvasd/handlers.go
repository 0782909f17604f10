package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/llm"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/store"
)

// server holds the handler dependencies.
type server struct {
	store  store.Store
	runner *flowcanvas.Runner
	logger *slog.Logger
}

func newServer(st store.Store, runner *flowcanvas.Runner, logger *slog.Logger) *server {
	return &server{store: st, runner: runner, logger: logger}
}

// routes builds the REST router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Post("/import", s.handleImport)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleLoad)
			r.Put("/", s.handleSave)
			r.Delete("/", s.handleDelete)
			r.Get("/export", s.handleExport)
			r.Post("/nodes/{nodeID}/run", s.handleRun)
		})
	})

	return r
}

// workflowRequest is the body of create and save requests.
type workflowRequest struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "flowcanvasd"})
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	summaries, err := s.store.List(limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Data == nil {
		req.Data = json.RawMessage(`{"nodes":[],"edges":[]}`)
	}

	wf, err := s.store.Create(req.Name, req.Data)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

func (s *server) handleLoad(w http.ResponseWriter, r *http.Request) {
	wf, err := s.store.Load(chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	wf, err := s.store.Save(chi.URLParam(r, "id"), req.Name, req.Data)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	wf, err := s.store.Load(chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}

	g := flowcanvas.NewGraph()
	if err := json.Unmarshal(wf.Data, g); err != nil {
		writeError(w, http.StatusInternalServerError, "stored workflow is corrupted")
		return
	}

	file, err := flowcanvas.Export(wf.Name, g)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+wf.Name+`.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(file)
}

func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	name, g, err := flowcanvas.Import(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if name == "" {
		name = "Imported workflow"
	}

	data, err := json.Marshal(g)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode workflow failed")
		return
	}

	wf, err := s.store.Create(name, data)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

// runResponse is the body returned by the run endpoint.
type runResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nodeID := chi.URLParam(r, "nodeID")

	wf, err := s.store.Load(id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	g := flowcanvas.NewGraph()
	if err := json.Unmarshal(wf.Data, g); err != nil {
		writeError(w, http.StatusInternalServerError, "stored workflow is corrupted")
		return
	}

	result, runErr := s.runner.RunNode(r.Context(), nodeID, g.Nodes(), g.Edges())
	if runErr != nil {
		status := http.StatusBadGateway
		var resolveErr *flowcanvas.ResolveError
		switch {
		case errors.Is(runErr, flowcanvas.ErrNodeNotFound),
			errors.Is(runErr, flowcanvas.ErrNotRunnable):
			status = http.StatusNotFound
		case errors.Is(runErr, flowcanvas.ErrRunInFlight):
			status = http.StatusConflict
		case errors.As(runErr, &resolveErr):
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, runResponse{Error: userFacing(runErr)})
		return
	}

	writeJSON(w, http.StatusOK, runResponse{Output: result.Output})
}

// storeError maps a persistence failure to an HTTP response.
func (s *server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}
	s.logger.Error("store operation failed", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "storage failure")
}

// userFacing extracts the single message shown for a failed run.
func userFacing(err error) string {
	var resolveErr *flowcanvas.ResolveError
	if errors.As(err, &resolveErr) && len(resolveErr.Messages) > 0 {
		return resolveErr.Messages[0]
	}
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return llmErr.Message
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 32<<20))
}
