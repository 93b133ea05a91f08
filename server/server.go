// Package server exposes the studio HTTP API: a small JSON surface for
// creating, inspecting and running agents from a browser UI or curl. Agent
// definitions persist to disk and are rebuilt at startup.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/agentapps/agentapps/agent"
	"github.com/agentapps/agentapps/logging"
	"github.com/agentapps/agentapps/team"
)

// AgentFactory builds a runnable agent from a persisted definition. The
// factory owns model selection and tool wiring; the server only stores
// definitions and routes requests.
type AgentFactory func(def Definition) (*agent.Agent, error)

// Options configures the Server.
type Options struct {
	// Logger receives request and lifecycle events. Defaults to a no-op
	// logger.
	Logger logging.Logger
	// AllowedOrigins restricts CORS. Empty allows all origins.
	AllowedOrigins []string
}

// Server is the studio HTTP handler. It is safe for concurrent use.
type Server struct {
	store   *Store
	factory AgentFactory
	logger  logging.Logger
	router  *mux.Router
	handler http.Handler

	mu     sync.RWMutex
	agents map[string]*agent.Agent
	teams  map[string]*team.Team
}

// New creates a server over the given store, rebuilding an agent for every
// persisted definition and a team for every persisted team definition. A
// definition the factory can no longer build (for example a removed tool) is
// logged and skipped rather than failing startup.
func New(store *Store, factory AgentFactory, optFns ...func(o *Options)) *Server {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		store:   store,
		factory: factory,
		logger:  logging.OrNoOp(opts.Logger),
		agents:  make(map[string]*agent.Agent),
		teams:   make(map[string]*team.Team),
	}

	for _, def := range store.List() {
		a, err := factory(def)
		if err != nil {
			s.logger.Warn("server.agent.rebuild_failed", "agent", def.Name, "error", err.Error())
			continue
		}
		s.agents[def.Name] = a
	}
	for _, def := range store.ListTeams() {
		tm, err := s.buildTeam(def)
		if err != nil {
			s.logger.Warn("server.team.rebuild_failed", "team", def.Name, "error", err.Error())
			continue
		}
		s.teams[def.Name] = tm
	}

	s.router = mux.NewRouter()
	s.routes()

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(s.router)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/agents", s.handleListAgents).Methods(http.MethodGet)
	api.HandleFunc("/agents", s.handleCreateAgent).Methods(http.MethodPost)
	api.HandleFunc("/agents/{name}", s.handleGetAgent).Methods(http.MethodGet)
	api.HandleFunc("/agents/{name}", s.handleDeleteAgent).Methods(http.MethodDelete)
	api.HandleFunc("/agents/{name}/run", s.handleRunAgent).Methods(http.MethodPost)
	api.HandleFunc("/agents/{name}/clear", s.handleClearHistory).Methods(http.MethodPost)
	api.HandleFunc("/teams", s.handleListTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams", s.handleCreateTeam).Methods(http.MethodPost)
	api.HandleFunc("/teams/{name}", s.handleGetTeam).Methods(http.MethodGet)
	api.HandleFunc("/teams/{name}", s.handleDeleteTeam).Methods(http.MethodDelete)
	api.HandleFunc("/teams/{name}/run", s.handleRunTeam).Methods(http.MethodPost)
}

// buildTeam resolves a persisted team definition against the live agents.
// Callers must hold s.mu or run before the server starts serving.
func (s *Server) buildTeam(def TeamDefinition) (*team.Team, error) {
	members := make([]*agent.Agent, 0, len(def.Agents))
	for _, name := range def.Agents {
		a, ok := s.agents[name]
		if !ok {
			return nil, fmt.Errorf("agent %q not found", name)
		}
		members = append(members, a)
	}
	return team.New(def.Name, members, func(o *team.Options) {
		o.Instructions = def.Instructions
	})
}

func (s *Server) agent(name string) (*agent.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[name]
	return a, ok
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]agent.Info, 0, len(s.agents))
	for _, def := range s.store.List() {
		if a, ok := s.agents[def.Name]; ok {
			infos = append(infos, a.Info())
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": infos})
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var def Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if def.Name == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("agent name is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.agents[def.Name]; exists {
		writeError(w, http.StatusConflict, fmt.Errorf("agent %q already exists", def.Name))
		return
	}

	a, err := s.factory(def)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.Put(def); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.agents[def.Name] = a

	s.logger.Info("server.agent.created", "agent", def.Name, "model", def.Model)
	writeJSON(w, http.StatusCreated, a.Info())
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	a, ok := s.agent(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("agent %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, a.Info())
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[name]; !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("agent %q not found", name))
		return
	}
	if teams := s.store.TeamsWithMember(name); len(teams) > 0 {
		writeError(w, http.StatusConflict, fmt.Errorf("agent %q is a member of teams %v", name, teams))
		return
	}
	if err := s.store.Delete(name); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	delete(s.agents, name)

	s.logger.Info("server.agent.deleted", "agent", name)
	w.WriteHeader(http.StatusNoContent)
}

type runRequest struct {
	Message string `json:"message"`
}

type runResponse struct {
	Agent  string `json:"agent"`
	Answer string `json:"answer"`
}

func (s *Server) handleRunAgent(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	a, ok := s.agent(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("agent %q not found", name))
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("message is required"))
		return
	}

	answer, err := a.Run(r.Context(), req.Message)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{Agent: name, Answer: answer})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	a, ok := s.agent(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("agent %q not found", name))
		return
	}
	a.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) team(name string) (*team.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tm, ok := s.teams[name]
	return tm, ok
}

func (s *Server) handleListTeams(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]team.Info, 0, len(s.teams))
	for _, def := range s.store.ListTeams() {
		if tm, ok := s.teams[def.Name]; ok {
			infos = append(infos, tm.Info())
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"teams": infos})
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var def TeamDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if def.Name == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("team name is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.teams[def.Name]; exists {
		writeError(w, http.StatusConflict, fmt.Errorf("team %q already exists", def.Name))
		return
	}

	tm, err := s.buildTeam(def)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.PutTeam(def); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.teams[def.Name] = tm

	s.logger.Info("server.team.created", "team", def.Name, "agents", len(def.Agents))
	writeJSON(w, http.StatusCreated, tm.Info())
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	tm, ok := s.team(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("team %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, tm.Info())
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[name]; !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("team %q not found", name))
		return
	}
	if err := s.store.DeleteTeam(name); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	delete(s.teams, name)

	s.logger.Info("server.team.deleted", "team", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunTeam(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	tm, ok := s.team(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("team %q not found", name))
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("message is required"))
		return
	}

	answer, err := tm.Run(r.Context(), req.Message)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"team": name, "answer": answer})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
