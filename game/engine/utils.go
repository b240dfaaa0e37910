package engine

import "github.com/wricardo/treasure-path/game/grid"

// SummarizeRoute counts the reward and hazard cells a path passes over
func SummarizeRoute(g *grid.Grid, path grid.Path) RouteSummary {
	summary := RouteSummary{Steps: path.Steps()}
	for _, c := range path {
		kind, err := g.At(c)
		if err != nil {
			continue
		}
		switch kind {
		case grid.Reward:
			summary.Rewards++
		case grid.Hazard:
			summary.Hazards++
		}
	}
	return summary
}

// ProjectedHealth is the health left after crossing every hazard on the route,
// ignoring the early stop at zero.
func ProjectedHealth(summary RouteSummary, s *Scenario) int {
	rules := s.Rules()
	return rules.StartingHealth - summary.Hazards*rules.HazardDamage
}

// CountCellKind counts the cells of a kind in a layout
func CountCellKind(layout []string, kind grid.CellKind) int {
	want := kind.Char()
	count := 0
	for _, row := range layout {
		for i := 0; i < len(row); i++ {
			if row[i] == want {
				count++
			}
		}
	}
	return count
}
