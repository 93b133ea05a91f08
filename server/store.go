package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Definition is the persistable description of an agent: everything needed to
// rebuild it at startup. Definitions are stored as JSON in the data
// directory.
type Definition struct {
	Name          string   `json:"name"`
	Role          string   `json:"role,omitempty"`
	Instructions  []string `json:"instructions,omitempty"`
	Model         string   `json:"model"`
	Provider      string   `json:"provider"`
	Tools         []string `json:"tools,omitempty"`
	MaxIterations int      `json:"max_iterations,omitempty"`
	Temperature   float64  `json:"temperature,omitempty"`
	ShowToolCalls bool     `json:"show_tool_calls,omitempty"`
}

// TeamDefinition is the persistable description of a team: its member agent
// names in execution order plus team-level instructions. Members are resolved
// against agent definitions when the team is rebuilt.
type TeamDefinition struct {
	Name         string   `json:"name"`
	Agents       []string `json:"agents"`
	Instructions []string `json:"instructions,omitempty"`
}

// Store persists agent and team definitions to JSON files under dir. Writes
// are atomic (temp file + rename).
type Store struct {
	mu        sync.Mutex
	agentPath string
	teamPath  string
	defs      map[string]Definition
	teams     map[string]TeamDefinition
}

// NewStore opens (or creates) the definition store under dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	s := &Store{
		agentPath: filepath.Join(dir, "agents.json"),
		teamPath:  filepath.Join(dir, "teams.json"),
		defs:      make(map[string]Definition),
		teams:     make(map[string]TeamDefinition),
	}
	if err := load(s.agentPath, s.defs, func(d Definition) string { return d.Name }); err != nil {
		return nil, err
	}
	if err := load(s.teamPath, s.teams, func(d TeamDefinition) string { return d.Name }); err != nil {
		return nil, err
	}
	return s, nil
}

func load[T any](path string, into map[string]T, key func(T) string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}
	var defs []T
	if err := json.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("failed to parse store: %w", err)
	}
	for _, d := range defs {
		into[key(d)] = d
	}
	return nil
}

func flush[T any](path string, from map[string]T, less func(a, b T) bool) error {
	defs := make([]T, 0, len(from))
	for _, d := range from {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return less(defs[i], defs[j]) })

	data, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	return os.Rename(tmp, path)
}

func (s *Store) flush() error {
	return flush(s.agentPath, s.defs, func(a, b Definition) bool { return a.Name < b.Name })
}

func (s *Store) flushTeams() error {
	return flush(s.teamPath, s.teams, func(a, b TeamDefinition) bool { return a.Name < b.Name })
}

// List returns all definitions sorted by name.
func (s *Store) List() []Definition {
	s.mu.Lock()
	defer s.mu.Unlock()
	defs := make([]Definition, 0, len(s.defs))
	for _, d := range s.defs {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Get returns the definition by name.
func (s *Store) Get(name string) (Definition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.defs[name]
	return d, ok
}

// Put inserts or replaces a definition and persists the store.
func (s *Store) Put(def Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[def.Name] = def
	return s.flush()
}

// Delete removes a definition and persists the store. Deleting an absent name
// is a no-op.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.defs[name]; !ok {
		return nil
	}
	delete(s.defs, name)
	return s.flush()
}

// ListTeams returns all team definitions sorted by name.
func (s *Store) ListTeams() []TeamDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	defs := make([]TeamDefinition, 0, len(s.teams))
	for _, d := range s.teams {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// GetTeam returns the team definition by name.
func (s *Store) GetTeam(name string) (TeamDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.teams[name]
	return d, ok
}

// PutTeam inserts or replaces a team definition and persists the store.
func (s *Store) PutTeam(def TeamDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[def.Name] = def
	return s.flushTeams()
}

// DeleteTeam removes a team definition and persists the store. Deleting an
// absent name is a no-op.
func (s *Store) DeleteTeam(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[name]; !ok {
		return nil
	}
	delete(s.teams, name)
	return s.flushTeams()
}

// TeamsWithMember returns the names of teams that include the given agent.
func (s *Store) TeamsWithMember(agent string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, d := range s.teams {
		for _, member := range d.Agents {
			if member == agent {
				names = append(names, d.Name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}
