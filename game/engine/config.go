package engine

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wricardo/treasure-path/game/generate"
	"github.com/wricardo/treasure-path/game/grid"
	"github.com/wricardo/treasure-path/game/pathfind"
	"github.com/wricardo/treasure-path/game/traversal"
)

// ValidateScenario checks a scenario for structural correctness.
// Reachability is not checked here: an unreachable goal is a playable outcome.
func ValidateScenario(s *Scenario) error {
	if s == nil {
		return fmt.Errorf("%w: scenario is nil", ErrInvalidScenario)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidScenario)
	}
	if s.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidScenario)
	}

	// Exactly one board source
	hasLayout := len(s.Layout) > 0
	if hasLayout == (s.Random != nil) {
		return fmt.Errorf("%w: exactly one of layout or random must be set", ErrInvalidScenario)
	}

	width, height := 0, 0
	if hasLayout {
		g, err := grid.FromLayout(s.Layout)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
		width, height = g.Width(), g.Height()
	} else {
		width, height = s.Random.Width, s.Random.Height
		if s.Random.Obstacles < 0 || s.Random.Rewards < 0 || s.Random.Hazards < 0 {
			return fmt.Errorf("%w: random placement counts must not be negative", ErrInvalidScenario)
		}
	}

	if width < MinGridSize || width > MaxGridSize || height < MinGridSize || height > MaxGridSize {
		return fmt.Errorf("%w: grid must be between %d and %d cells per side, got %dx%d",
			ErrInvalidScenario, MinGridSize, MaxGridSize, width, height)
	}

	bounds := func(label string, c *grid.Coordinate) error {
		if c == nil {
			return nil
		}
		if c.X < 0 || c.X >= width || c.Y < 0 || c.Y >= height {
			return fmt.Errorf("%w: %s %s outside %dx%d grid", ErrInvalidScenario, label, c, width, height)
		}
		return nil
	}
	if err := bounds("start", s.Start); err != nil {
		return err
	}
	if err := bounds("goal", s.Goal); err != nil {
		return err
	}

	// Rule values
	if s.StartingHealth < 0 || s.StartingHealth > MaxStartingHealth {
		return fmt.Errorf("%w: starting_health must be between 0 (default) and %d, got %d",
			ErrInvalidScenario, MaxStartingHealth, s.StartingHealth)
	}
	if s.HazardDamage != nil && *s.HazardDamage < 0 {
		return fmt.Errorf("%w: hazard_damage must not be negative, got %d", ErrInvalidScenario, *s.HazardDamage)
	}
	if s.RewardGold != nil && *s.RewardGold < 0 {
		return fmt.Errorf("%w: reward_gold must not be negative, got %d", ErrInvalidScenario, *s.RewardGold)
	}

	switch s.CostPolicy {
	case "", CostPolicyUniform, CostPolicyHazardAverse:
	default:
		return fmt.Errorf("%w: unknown cost_policy %q", ErrInvalidScenario, s.CostPolicy)
	}
	if s.HazardPenalty < 0 {
		return fmt.Errorf("%w: hazard_penalty must not be negative, got %d", ErrInvalidScenario, s.HazardPenalty)
	}

	return nil
}

// LoadScenario loads and validates a scenario from a JSON file
func LoadScenario(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidScenario, filename, err)
	}

	if err := ValidateScenario(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

// DefaultScenario returns a random 20x20 board with the standard rules
func DefaultScenario() *Scenario {
	params := generate.DefaultParams()
	s := &Scenario{
		Name:        "random",
		Description: "Randomly generated 20x20 board with 40 obstacles, 10 gold and 10 hazards",
		Random:      &params,
	}
	s.Messages.Welcome = "Follow the route from the top-left corner to the bottom-right. Gold adds to your haul, hazards cost health."
	return s
}

// BuildGrid creates the board described by the scenario. Start and goal are forced open.
func (s *Scenario) BuildGrid() (*generate.Board, error) {
	if s.Random != nil {
		board, err := generate.Generate(*s.Random)
		if err != nil {
			return nil, err
		}
		if err := s.applyEndpoints(board); err != nil {
			return nil, err
		}
		return board, nil
	}

	g, err := grid.FromLayout(s.Layout)
	if err != nil {
		return nil, err
	}
	board := &generate.Board{
		Grid:  g,
		Start: grid.Coordinate{X: 0, Y: 0},
		Goal:  grid.Coordinate{X: g.Width() - 1, Y: g.Height() - 1},
	}
	if err := s.applyEndpoints(board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *Scenario) applyEndpoints(board *generate.Board) error {
	if s.Start != nil {
		board.Start = *s.Start
	}
	if s.Goal != nil {
		board.Goal = *s.Goal
	}
	return board.Grid.Normalize(board.Start, board.Goal)
}

// Rules returns the replay rules with unset values replaced by defaults.
// Damage and gold may be set to 0; starting health of 0 means the default.
func (s *Scenario) Rules() traversal.Rules {
	rules := traversal.DefaultRules()
	if s.StartingHealth > 0 {
		rules.StartingHealth = s.StartingHealth
	}
	if s.HazardDamage != nil {
		rules.HazardDamage = *s.HazardDamage
	}
	if s.RewardGold != nil {
		rules.RewardGold = *s.RewardGold
	}
	return rules
}

// CostFunc returns the search cost function named by CostPolicy
func (s *Scenario) CostFunc() pathfind.CostFunc {
	if s.CostPolicy != CostPolicyHazardAverse {
		return pathfind.UniformCost
	}
	penalty := s.HazardPenalty
	if penalty == 0 {
		penalty = DefaultHazardPenalty
	}
	return pathfind.HazardAverse(penalty)
}

// Clone returns a deep copy so that engines never share mutable scenario fields
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Layout = append([]string(nil), s.Layout...)
	if s.Random != nil {
		r := *s.Random
		c.Random = &r
	}
	if s.Start != nil {
		start := *s.Start
		c.Start = &start
	}
	if s.Goal != nil {
		goal := *s.Goal
		c.Goal = &goal
	}
	if s.HazardDamage != nil {
		damage := *s.HazardDamage
		c.HazardDamage = &damage
	}
	if s.RewardGold != nil {
		gold := *s.RewardGold
		c.RewardGold = &gold
	}
	return &c
}
