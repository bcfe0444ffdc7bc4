package library

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Setting names used in the settings store.
const (
	settingRoots     = "roots"
	settingExpanded  = "expanded"
	settingSelection = "selection"
)

// storedRoot is the persisted form of one root: the path for restore
// reports plus the sealed token that actually restores access.
type storedRoot struct {
	Path  string `json:"path"`
	Token []byte `json:"token"`
}

// Persistence is best-effort: failures log and the triggering
// operation proceeds.

func (s *Service) saveRoots() {
	s.mu.Lock()
	stored := make([]storedRoot, 0, len(s.roots))
	for _, r := range s.roots {
		stored = append(stored, storedRoot{Path: r.Path(), Token: r.Token()})
	}
	s.mu.Unlock()

	data, err := json.Marshal(stored)
	if err == nil {
		err = s.settings.Put(settingRoots, data)
	}
	if err != nil {
		s.logger.Warn("persisting roots", "error", err)
	}
}

func (s *Service) loadRoots() ([]storedRoot, error) {
	data, err := s.settings.Get(settingRoots)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var stored []storedRoot
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decoding stored roots: %w", err)
	}
	return stored, nil
}

func (s *Service) saveExpanded() {
	s.mu.Lock()
	paths := make([]string, 0, len(s.expanded))
	for p := range s.expanded {
		paths = append(paths, p)
	}
	s.mu.Unlock()

	sort.Strings(paths)
	data, err := json.Marshal(paths)
	if err == nil {
		err = s.settings.Put(settingExpanded, data)
	}
	if err != nil {
		s.logger.Warn("persisting expanded folders", "error", err)
	}
}

func (s *Service) loadExpanded() {
	data, err := s.settings.Get(settingExpanded)
	if err != nil {
		s.logger.Warn("loading expanded folders", "error", err)
		return
	}
	if data == nil {
		return
	}
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		s.logger.Warn("decoding expanded folders", "error", err)
		return
	}
	s.mu.Lock()
	for _, p := range paths {
		s.expanded[p] = true
	}
	s.mu.Unlock()
}

func (s *Service) saveSelection(path string) {
	var err error
	if path == "" {
		err = s.settings.Delete(settingSelection)
	} else {
		err = s.settings.Put(settingSelection, []byte(path))
	}
	if err != nil {
		s.logger.Warn("persisting selection", "error", err)
	}
}

// LastSelection returns the folder path selected when the previous
// session ended, empty when none was stored.
func (s *Service) LastSelection() string {
	data, err := s.settings.Get(settingSelection)
	if err != nil {
		s.logger.Warn("loading selection", "error", err)
		return ""
	}
	return string(data)
}
