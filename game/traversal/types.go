package traversal

import (
	"errors"
	"fmt"

	"github.com/wricardo/treasure-path/game/grid"
)

// ErrSessionFinished is returned by Step once the route is exhausted or the player died.
var ErrSessionFinished = errors.New("traversal: session already finished")

// PlayerState is the accumulator mutated by replay
type PlayerState struct {
	Health int `json:"health"`
	Gold   int `json:"gold"`
}

// Alive reports whether health is still above zero
func (p PlayerState) Alive() bool {
	return p.Health > 0
}

// Rules holds the numbers replay applies
type Rules struct {
	StartingHealth int `json:"starting_health"`
	HazardDamage   int `json:"hazard_damage"`
	RewardGold     int `json:"reward_gold"`
}

// DefaultRules returns 100 health, 10 damage per hazard and 1 gold per reward.
func DefaultRules() Rules {
	return Rules{
		StartingHealth: 100,
		HazardDamage:   10,
		RewardGold:     1,
	}
}

// Effect describes what a single cell did to the player
type Effect struct {
	Kind        grid.CellKind `json:"kind"`
	GoldDelta   int           `json:"gold_delta,omitempty"`
	HealthDelta int           `json:"health_delta,omitempty"`
	Message     string        `json:"message,omitempty"`
}

// ApplyCellEffect mutates player for a cell of the given kind and returns what changed.
// Open, visited and obstacle cells change nothing.
func ApplyCellEffect(kind grid.CellKind, player *PlayerState, rules Rules) Effect {
	effect := Effect{Kind: kind}

	switch kind {
	case grid.Reward:
		player.Gold += rules.RewardGold
		effect.GoldDelta = rules.RewardGold
		effect.Message = fmt.Sprintf("Gold collected! Total gold: %d", player.Gold)

	case grid.Hazard:
		player.Health -= rules.HazardDamage
		effect.HealthDelta = -rules.HazardDamage
		effect.Message = fmt.Sprintf("Ouch! Lost %d health. Current health: %d", rules.HazardDamage, player.Health)
	}

	return effect
}

// StepEvent is emitted for every processed path node
type StepEvent struct {
	Index    int             `json:"index"`
	Position grid.Coordinate `json:"position"`
	Effect   Effect          `json:"effect"`
	Player   PlayerState     `json:"player"`
	Done     bool            `json:"done"`
	Message  string          `json:"message,omitempty"`
}

// Report is the externally observable outcome of a replay
type Report struct {
	Player          PlayerState `json:"player"`
	TerminatedEarly bool        `json:"terminated_early"`
	ReachedGoal     bool        `json:"reached_goal"`
	StepsTaken      int         `json:"steps_taken"`
	PathLength      int         `json:"path_length"`
}
