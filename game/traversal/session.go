package traversal

import (
	"fmt"

	"github.com/wricardo/treasure-path/game/grid"
)

// Session walks a path over a grid it mutates
type Session struct {
	grid     *grid.Grid
	path     grid.Path
	rules    Rules
	player   PlayerState
	index    int
	dead     bool
	observer func(StepEvent)
}

// Option configures a Session
type Option func(*Session)

// WithObserver registers fn to receive every StepEvent after it is applied.
func WithObserver(fn func(StepEvent)) Option {
	return func(s *Session) { s.observer = fn }
}

// NewSession prepares a replay of path over g. The session owns g for writes
// until it is done.
func NewSession(g *grid.Grid, path grid.Path, rules Rules, opts ...Option) *Session {
	s := &Session{
		grid:   g,
		path:   path,
		rules:  rules,
		player: PlayerState{Health: rules.StartingHealth},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step processes the next path node.
func (s *Session) Step() (StepEvent, error) {
	if s.Done() {
		return StepEvent{}, ErrSessionFinished
	}

	node := s.path[s.index]
	kind, err := s.grid.At(node)
	if err != nil {
		return StepEvent{}, fmt.Errorf("step %d: %w", s.index, err)
	}

	effect := ApplyCellEffect(kind, &s.player, s.rules)
	if err := s.grid.Set(node, grid.Visited); err != nil {
		return StepEvent{}, fmt.Errorf("step %d: %w", s.index, err)
	}

	event := StepEvent{
		Index:    s.index,
		Position: node,
		Effect:   effect,
		Message:  effect.Message,
	}
	s.index++

	if !s.player.Alive() {
		s.dead = true
		event.Message = fmt.Sprintf("Game Over! You lost all your health. Total gold collected: %d", s.player.Gold)
	} else if s.index == len(s.path) {
		event.Message = fmt.Sprintf("Game Over! Total gold collected: %d", s.player.Gold)
	}

	event.Player = s.player
	event.Done = s.Done()

	if s.observer != nil {
		s.observer(event)
	}
	return event, nil
}

// Done reports whether no further steps will be processed
func (s *Session) Done() bool {
	return s.dead || s.index >= len(s.path)
}

// Player returns the current player state
func (s *Session) Player() PlayerState {
	return s.player
}

// StepsTaken returns how many path nodes have been processed
func (s *Session) StepsTaken() int {
	return s.index
}

// Position returns the last processed node, or the first node before any step.
func (s *Session) Position() (grid.Coordinate, bool) {
	if len(s.path) == 0 {
		return grid.Coordinate{}, false
	}
	if s.index == 0 {
		return s.path[0], true
	}
	return s.path[s.index-1], true
}

// Report summarizes the session so far.
// The goal counts as reached only when every node was processed and the player is alive.
func (s *Session) Report() Report {
	return Report{
		Player:          s.player,
		TerminatedEarly: s.dead,
		ReachedGoal:     len(s.path) > 0 && s.index == len(s.path) && s.player.Alive(),
		StepsTaken:      s.index,
		PathLength:      len(s.path),
	}
}

// Replay runs a full session over path and returns its report.
func Replay(g *grid.Grid, path grid.Path, rules Rules, opts ...Option) (Report, error) {
	s := NewSession(g, path, rules, opts...)
	for !s.Done() {
		if _, err := s.Step(); err != nil {
			return s.Report(), err
		}
	}
	return s.Report(), nil
}
