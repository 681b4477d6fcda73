package backlog

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/sprintboard/internal/board"
	"github.com/Afrawles/sprintboard/internal/testutil"
)

func velocity(v int) *int { return &v }

func cards(titles ...string) []board.Card {
	out := make([]board.Card, 0, len(titles))
	for i, t := range titles {
		out = append(out, board.Card{ID: fmt.Sprintf("c%d", i), Title: t})
	}
	return out
}

var sprintBacklog = cards(
	"(3) P1: Fill Backlog column",
	"(5) P4: Read data from Trollolo",
	"(3) P5: Save read data as reference data",
	"(8) P6: Celebrate testing board",
)

func TestPrioritize_NoVelocity(t *testing.T) {
	entries, err := Prioritize(sprintBacklog, nil)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Row: Row{Rank: 1, Points: 3, Title: "(3) P1: Fill Backlog column"}},
		{Row: Row{Rank: 2, Points: 5, Title: "(5) P4: Read data from Trollolo"}},
		{Row: Row{Rank: 3, Points: 3, Title: "(3) P5: Save read data as reference data"}},
		{Row: Row{Rank: 4, Points: 8, Title: "(8) P6: Celebrate testing board"}},
	}, entries)
}

func TestPrioritize_Velocity(t *testing.T) {
	entries, err := Prioritize(sprintBacklog, velocity(9))
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Row: Row{Rank: 1, Points: 3, Title: "(3) P1: Fill Backlog column"}},
		{Row: Row{Rank: 2, Points: 5, Title: "(5) P4: Read data from Trollolo"}},
		{Marker: true},
		{Row: Row{Rank: 3, Points: 3, Title: "(3) P5: Save read data as reference data"}},
		{Row: Row{Rank: 4, Points: 8, Title: "(8) P6: Celebrate testing board"}},
	}, entries)
}

func TestPrioritize_InvalidVelocity(t *testing.T) {
	for _, v := range []int{0, -3} {
		_, err := Prioritize(sprintBacklog, velocity(v))
		assert.ErrorIs(t, err, ErrInvalidVelocity)
	}
}

func TestPrioritize_Empty(t *testing.T) {
	entries, err := Prioritize(nil, velocity(5))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrioritize_OversizedFirstRow(t *testing.T) {
	entries, err := Prioritize(cards("(13) Epic", "(2) Small", "(1) Tiny"), velocity(10))
	require.NoError(t, err)

	assert.Equal(t, [][]Row{
		{{Rank: 1, Points: 13, Title: "(13) Epic"}},
		{{Rank: 2, Points: 2, Title: "(2) Small"}, {Rank: 3, Points: 1, Title: "(1) Tiny"}},
	}, Slices(entries))
	assert.True(t, entries[1].Marker)
}

func TestPrioritize_ExactFit(t *testing.T) {
	entries, err := Prioritize(cards("(2) a", "(3) b", "(1) c"), velocity(5))
	require.NoError(t, err)

	// 2+3 reaches the velocity, so b opens the next slice.
	assert.Equal(t, []bool{false, true, false, false}, markers(entries))
}

func TestPrioritize_UnestimatedNeverTriggers(t *testing.T) {
	entries, err := Prioritize(cards("(4) a", "Waterline", "Notes", "(4) b"), velocity(5))
	require.NoError(t, err)

	assert.Equal(t, []bool{false, false, false, true, false}, markers(entries))
	assert.Equal(t, 0, entries[1].Row.Points)
	assert.Equal(t, 2, entries[1].Row.Rank)
}

func TestPrioritize_Deterministic(t *testing.T) {
	a, err := Prioritize(sprintBacklog, velocity(4))
	require.NoError(t, err)
	b, err := Prioritize(sprintBacklog, velocity(4))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPrioritize_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(15)
		titles := make([]string, n)
		for i := range titles {
			if rng.Intn(5) == 0 {
				titles[i] = fmt.Sprintf("card %d", i)
				continue
			}
			titles[i] = fmt.Sprintf("(%d) card %d", rng.Intn(13), i)
		}
		v := rng.Intn(20) + 1

		entries, err := Prioritize(cards(titles...), velocity(v))
		require.NoError(t, err)

		rows := Rows(entries)
		require.Len(t, rows, n)
		for i, r := range rows {
			assert.Equal(t, i+1, r.Rank)
			assert.Equal(t, titles[i], r.Title)
		}

		for i, e := range entries {
			if !e.Marker {
				continue
			}
			assert.NotZero(t, i, "no leading marker")
			assert.False(t, entries[i-1].Marker, "no empty slice")
		}

		for _, slice := range Slices(entries) {
			require.NotEmpty(t, slice)
			charged := 0
			for _, r := range slice[1:] {
				charged += r.Points
			}
			assert.Less(t, charged, v, "slice %v over velocity %d", slice, v)
		}
	}
}

func TestBuild_FullBoardBacklog(t *testing.T) {
	b := testutil.FullBoard(t)
	l, ok := b.FindList("", "Sprint Backlog")
	require.True(t, ok)

	all, err := Build(l, Options{})
	require.NoError(t, err)
	assert.Len(t, Rows(all), 6)

	estimated, err := Build(l, Options{Velocity: velocity(9), EstimatedOnly: true})
	require.NoError(t, err)
	sliced, err := Prioritize(sprintBacklog, velocity(9))
	require.NoError(t, err)

	// ids differ but titles, ranks and markers match
	assert.Equal(t, sliced, estimated)
}

func markers(entries []Entry) []bool {
	out := make([]bool, len(entries))
	for i, e := range entries {
		out[i] = e.Marker
	}
	return out
}
