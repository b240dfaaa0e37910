package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wricardo/treasure-path/game/engine"
	"github.com/wricardo/treasure-path/game/service"
)

var (
	ErrScenarioNotFound = service.ErrScenarioNotFound
	ErrInvalidScenario  = engine.ErrInvalidScenario
	ErrInvalidName      = service.ErrInvalidScenarioName
)

// Manager handles scenario loading and caching
type Manager struct {
	dir             string
	defaultScenario *engine.Scenario
	scenarios       map[string]*engine.Scenario
	logger          *zap.Logger
	mu              sync.RWMutex
}

// NewManager creates a scenario manager over dir. A nil logger discards logs.
func NewManager(dir string, logger *zap.Logger) (*Manager, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("scenario directory does not exist: %s", dir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		dir:       dir,
		scenarios: make(map[string]*engine.Scenario),
		logger:    logger,
	}
	m.defaultScenario = m.resolveDefault()
	return m, nil
}

// scenarioPath maps a scenario name to its file, rejecting names that escape the directory
func (m *Manager) scenarioPath(name string) (string, string, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, filepath.Join(m.dir, name+".json"), nil
}

// LoadScenario loads a scenario by name
func (m *Manager) LoadScenario(name string) (*engine.Scenario, error) {
	name, path, err := m.scenarioPath(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	// Check cache first
	if s, exists := m.scenarios[name]; exists {
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if s, exists := m.scenarios[name]; exists {
		return s, nil
	}

	s, err := engine.LoadScenario(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, name)
		}
		return nil, err
	}

	m.scenarios[name] = s
	return s, nil
}

// ListScenarios returns information about all valid scenarios, sorted by ID
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var infos []*service.ScenarioInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		s, err := m.LoadScenario(id)
		if err != nil {
			m.logger.Warn("skipping invalid scenario", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		info := &service.ScenarioInfo{
			Filename:    entry.Name(),
			ScenarioID:  id,
			Name:        s.Name,
			Description: s.Description,
			Random:      s.Random != nil,
			CostPolicy:  s.CostPolicy,
		}
		if s.Random != nil {
			info.Width, info.Height = s.Random.Width, s.Random.Height
		} else {
			info.Width, info.Height = len(s.Layout[0]), len(s.Layout)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ScenarioID < infos[j].ScenarioID })
	return infos, nil
}

// GetDefault returns the default scenario
func (m *Manager) GetDefault() *engine.Scenario {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultScenario
}

// SetDefault sets the default scenario by name
func (m *Manager) SetDefault(name string) error {
	s, err := m.LoadScenario(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultScenario = s
	return nil
}

// RefreshCache drops every cached scenario and re-resolves the default from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.scenarios = make(map[string]*engine.Scenario)
	m.mu.Unlock()

	def := m.resolveDefault()

	m.mu.Lock()
	m.defaultScenario = def
	m.mu.Unlock()
}

// resolveDefault picks classic.json, then the first valid scenario, then a built-in random board
func (m *Manager) resolveDefault() *engine.Scenario {
	if s, err := m.LoadScenario("classic"); err == nil {
		return s
	}

	infos, err := m.ListScenarios()
	if err == nil && len(infos) > 0 {
		if s, err := m.LoadScenario(infos[0].ScenarioID); err == nil {
			return s
		}
	}

	m.logger.Info("no scenario files found, using built-in random scenario", zap.String("dir", m.dir))
	return engine.DefaultScenario()
}

// SaveScenario validates and writes a scenario to disk
func (m *Manager) SaveScenario(name string, s *engine.Scenario) error {
	if err := engine.ValidateScenario(s); err != nil {
		return err
	}

	name, path, err := m.scenarioPath(name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[name] = s
	m.mu.Unlock()

	m.logger.Info("scenario saved", zap.String("scenario", name), zap.String("path", path))
	return nil
}
