package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/treasure-path/game/grid"
)

func TestStep_UpdatesState(t *testing.T) {
	s := &Scenario{Name: "line", Description: "d", Layout: []string{".GH."}}
	eng, err := NewEngine(s)
	require.NoError(t, err)

	tests := []struct {
		name      string
		position  grid.Coordinate
		health    int
		gold      int
		message   string
		gameOver  bool
		remaining int
	}{
		{"start", grid.Coordinate{X: 0, Y: 0}, 100, 0, "", false, 3},
		{"gold", grid.Coordinate{X: 1, Y: 0}, 100, 1, "Gold collected! Total gold: 1", false, 2},
		{"hazard", grid.Coordinate{X: 2, Y: 0}, 90, 1, "Ouch! Lost 10 health. Current health: 90", false, 1},
		{"goal", grid.Coordinate{X: 3, Y: 0}, 90, 1, "Game Over! Total gold collected: 1", true, 0},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := eng.Step()
			require.NoError(t, err)
			assert.Equal(t, i, event.Index)

			state := eng.GetState()
			assert.Equal(t, tt.position, state.Position)
			assert.Equal(t, tt.health, state.Health)
			assert.Equal(t, tt.gold, state.Gold)
			assert.Equal(t, i+1, state.StepIndex)
			assert.Equal(t, tt.gameOver, state.GameOver)
			assert.Equal(t, tt.remaining, state.Remaining())
			if tt.message != "" {
				assert.Equal(t, tt.message, state.Message)
			}

			last := state.History[len(state.History)-1]
			assert.Equal(t, tt.position, last.Position)
			assert.Equal(t, tt.health, last.Health)
		})
	}

	assert.Equal(t, []string{"vvvv"}, eng.GetState().Grid)
}

func TestStep_PlainStepKeepsPreviousMessage(t *testing.T) {
	s := &Scenario{Name: "line", Description: "d", Layout: []string{".G..."}}
	s.Messages.Welcome = "hello"
	eng, err := NewEngine(s)
	require.NoError(t, err)

	_, err = eng.Step()
	require.NoError(t, err)
	assert.Equal(t, "hello", eng.GetState().Message)

	_, err = eng.Step()
	require.NoError(t, err)
	assert.Equal(t, "Gold collected! Total gold: 1", eng.GetState().Message)

	_, err = eng.Step()
	require.NoError(t, err)
	assert.Equal(t, "hello", eng.GetState().Message)

	_, err = eng.Step()
	require.NoError(t, err)
	assert.Equal(t, "Gold collected! Total gold: 1", eng.GetState().Message)
	assert.Equal(t, grid.Open, eng.GetState().History[0].Cell)
	assert.Equal(t, grid.Reward, eng.GetState().History[1].Cell)
}

func TestSnapshot_IndependentOfLaterSteps(t *testing.T) {
	s := &Scenario{Name: "line", Description: "d", Layout: []string{".GH."}}
	eng, err := NewEngine(s)
	require.NoError(t, err)

	_, err = eng.Step()
	require.NoError(t, err)
	snap := eng.GetState().Snapshot()

	_, err = eng.Step()
	require.NoError(t, err)
	_, err = eng.Step()
	require.NoError(t, err)

	assert.Equal(t, 1, snap.StepIndex)
	assert.Len(t, snap.History, 1)
	assert.Equal(t, 0, snap.Gold)
	assert.NotEqual(t, eng.GetState().Grid, snap.Grid)
	assert.Equal(t, eng.GetState().Path, snap.Path)

	snap.Path[0] = grid.Coordinate{X: 9, Y: 9}
	assert.Equal(t, grid.Coordinate{X: 0, Y: 0}, eng.GetState().Path[0])

	var nilState *GameState
	assert.Nil(t, nilState.Snapshot())
}
