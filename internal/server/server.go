// Package server exposes the staffing store over a small JSON API plus a
// websocket change stream, so remote grid sessions can load snapshots,
// commit hours, and follow everyone else's edits.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"staffgrid/internal/model"
	"staffgrid/internal/store"
	"staffgrid/internal/week"
)

type Config struct {
	Addr string
	Dir  string

	// WeekHorizon is the default number of week columns served when a
	// snapshot request does not say how many it wants.
	WeekHorizon int

	// PollInterval controls how often the change log is scanned for new
	// entries to broadcast. Zero means the default.
	PollInterval time.Duration
}

type Server struct {
	cfg Config
	st  store.Store
	hub *hub
}

func NewServer(cfg Config) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	if cfg.Addr == "" {
		return nil, errors.New("server: addr is empty")
	}
	if cfg.Dir == "" {
		return nil, errors.New("server: dir is empty")
	}
	if cfg.WeekHorizon <= 0 {
		cfg.WeekHorizon = 12
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}

	st := store.Store{Dir: cfg.Dir}
	if err := st.Ensure(); err != nil {
		return nil, err
	}
	srv := &Server{cfg: cfg, st: st, hub: newHub(st, cfg.PollInterval)}
	go srv.hub.pollLoop()
	return srv, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Stop ends the change-log poll loop. Open websocket clients are closed by
// their own read errors once the listener shuts down.
func (s *Server) Stop() { s.hub.Stop() }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/people", s.handlePeopleList)
	mux.HandleFunc("POST /api/people", s.handlePersonCreate)
	mux.HandleFunc("GET /api/projects", s.handleProjectsList)
	mux.HandleFunc("POST /api/projects", s.handleProjectCreate)
	mux.HandleFunc("POST /api/assignments", s.handleAssignmentCreate)
	mux.HandleFunc("POST /api/assignments/bulk", s.handleHoursBulk)
	mux.HandleFunc("GET /api/assignments/{assignmentId}", s.handleAssignmentGet)
	mux.HandleFunc("DELETE /api/assignments/{assignmentId}", s.handleAssignmentDelete)
	mux.HandleFunc("PATCH /api/assignments/{assignmentId}/hours", s.handleHoursPatch)
	mux.HandleFunc("GET /api/changes", s.handleChanges)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	department := strings.TrimSpace(r.URL.Query().Get("department"))
	weeks := s.cfg.WeekHorizon
	if raw := strings.TrimSpace(r.URL.Query().Get("weeks")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid weeks", http.StatusBadRequest)
			return
		}
		weeks = n
	}
	start := time.Now()
	if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
		t, err := week.Parse(raw)
		if err != nil {
			http.Error(w, "invalid start week", http.StatusBadRequest)
			return
		}
		start = t
	}

	snap, err := s.st.Snapshot(r.Context(), department, week.Horizon(start, weeks))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePeopleList(w http.ResponseWriter, r *http.Request) {
	people, err := s.st.ListPeople(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handlePersonCreate(w http.ResponseWriter, r *http.Request) {
	var p model.Person
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	created, err := s.st.CreatePerson(r.Context(), p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleProjectsList(w http.ResponseWriter, r *http.Request) {
	projects, err := s.st.ListProjects(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	var p model.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}
	created, err := s.st.CreateProject(r.Context(), p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type assignmentCreateReq struct {
	PersonID  string `json:"personId"`
	ProjectID string `json:"projectId"`
}

func (s *Server) handleAssignmentCreate(w http.ResponseWriter, r *http.Request) {
	var req assignmentCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PersonID) == "" || strings.TrimSpace(req.ProjectID) == "" {
		http.Error(w, "missing personId or projectId", http.StatusBadRequest)
		return
	}
	a, err := s.st.CreateAssignment(r.Context(), req.PersonID, req.ProjectID, originFor(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleAssignmentGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("assignmentId"))
	if id == "" {
		http.Error(w, "missing assignment id", http.StatusBadRequest)
		return
	}
	a, err := s.st.GetAssignment(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAssignmentDelete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("assignmentId"))
	if id == "" {
		http.Error(w, "missing assignment id", http.StatusBadRequest)
		return
	}
	if err := s.st.DeleteAssignment(r.Context(), id, originFor(r)); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type hoursPatchReq struct {
	WeekKey string  `json:"weekKey"`
	Hours   float64 `json:"hours"`
}

func (s *Server) handleHoursPatch(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("assignmentId"))
	if id == "" {
		http.Error(w, "missing assignment id", http.StatusBadRequest)
		return
	}
	var req hoursPatchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := week.Parse(req.WeekKey); err != nil {
		http.Error(w, "invalid weekKey", http.StatusBadRequest)
		return
	}
	if req.Hours < 0 {
		http.Error(w, "hours must be >= 0", http.StatusBadRequest)
		return
	}
	a, err := s.st.SetHours(r.Context(), id, req.WeekKey, req.Hours, originFor(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type hoursBulkReq struct {
	Cells []model.CellRef `json:"cells"`
	Hours float64         `json:"hours"`
}

func (s *Server) handleHoursBulk(w http.ResponseWriter, r *http.Request) {
	var req hoursBulkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Cells) == 0 {
		http.Error(w, "empty cell set", http.StatusBadRequest)
		return
	}
	if req.Hours < 0 {
		http.Error(w, "hours must be >= 0", http.StatusBadRequest)
		return
	}
	for _, c := range req.Cells {
		if _, err := week.Parse(c.WeekKey); err != nil {
			http.Error(w, "invalid weekKey "+c.WeekKey, http.StatusBadRequest)
			return
		}
	}
	updated, err := s.st.SetHoursBulk(r.Context(), req.Cells, req.Hours, originFor(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	after := int64(0)
	if raw := strings.TrimSpace(r.URL.Query().Get("after")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			http.Error(w, "invalid after cursor", http.StatusBadRequest)
			return
		}
		after = n
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	changes, err := s.st.ChangesSince(r.Context(), after, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

// originFor identifies the session behind a write so its own change events
// can be recognized on the way back down the stream.
func originFor(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get("X-Session-ID")); o != "" {
		return o
	}
	return strings.TrimSpace(r.URL.Query().Get("origin"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
