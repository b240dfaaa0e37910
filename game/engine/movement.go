package engine

import (
	"time"

	"github.com/wricardo/treasure-path/game/grid"
	"github.com/wricardo/treasure-path/game/traversal"
)

// applyStep folds a processed route node into the game state
func (e *GameEngine) applyStep(event traversal.StepEvent) {
	gs := e.state

	gs.Position = event.Position
	gs.StepIndex = event.Index + 1
	gs.Health = event.Player.Health
	gs.Gold = event.Player.Gold
	gs.Grid = e.grid.Rows()
	gs.TotalSteps++

	// Keep the previous message on plain steps so the last event stays visible
	if event.Message != "" {
		gs.Message = event.Message
	}

	gs.History = append(gs.History, HistoryEntry{
		Index:     event.Index,
		Position:  event.Position,
		Cell:      event.Effect.Kind,
		Health:    event.Player.Health,
		Gold:      event.Player.Gold,
		Message:   event.Message,
		Timestamp: time.Now().Unix(),
	})

	if event.Done {
		report := e.session.Report()
		gs.GameOver = true
		gs.ReachedGoal = report.ReachedGoal
		gs.TerminatedEarly = report.TerminatedEarly
		gs.Runs++
	}
}

// Snapshot returns a deep copy of the state that later steps cannot change
func (gs *GameState) Snapshot() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.Grid = append([]string(nil), gs.Grid...)
	if gs.Path != nil {
		c.Path = append(grid.Path(nil), gs.Path...)
	}
	c.History = append(make([]HistoryEntry, 0, len(gs.History)), gs.History...)
	return &c
}

// Remaining returns how many route nodes are still to be processed
func (gs *GameState) Remaining() int {
	if gs.GameOver {
		return 0
	}
	return len(gs.Path) - gs.StepIndex
}
