package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/sprintboard/internal/backlog"
	"github.com/Afrawles/sprintboard/internal/board"
	"github.com/Afrawles/sprintboard/internal/burndown"
	"github.com/Afrawles/sprintboard/internal/classify"
	"github.com/Afrawles/sprintboard/internal/testutil"
)

// fakeSource serves a fixed board without touching the network.
type fakeSource struct {
	board     board.Board
	healthErr error
	fetched   []string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) HealthCheck(ctx context.Context) error { return f.healthErr }

func (f *fakeSource) FetchBoard(ctx context.Context, boardID string) (board.Board, error) {
	f.fetched = append(f.fetched, boardID)
	return f.board, nil
}

func testRules() classify.Rules {
	rules := classify.DefaultRules()
	rules.BacklogName = "Sprint Backlog"
	return rules
}

func velocity(v int) *int { return &v }

var testTime = time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)

func TestAssemble(t *testing.T) {
	b := testutil.FullBoard(t)

	r, err := Assemble(b, Options{
		Rules:   testRules(),
		Backlog: backlog.Options{Velocity: velocity(9), EstimatedOnly: true},
		At:      testTime,
	})
	require.NoError(t, err)

	assert.Equal(t, testutil.FullBoardID, r.BoardID)
	assert.Equal(t, testTime, r.GeneratedAt)
	require.Len(t, r.Tracked, 5)
	require.Len(t, r.Burndown, 5)
	assert.Equal(t, 19, r.Burndown["Sprint Backlog"].Points)
	assert.Equal(t, "53186e8391ef8671265eba9e", r.Burndown["Sprint Backlog"].List.ID)
	assert.Equal(t, 7, r.Burndown["Done Sprint 8"].Points)
	assert.Equal(t, 22, r.Sample.Remaining)
	assert.Equal(t, 16, r.Sample.Done)

	assert.Equal(t, "Sprint Backlog", r.BacklogName)
	assert.Len(t, backlog.Rows(r.Backlog), 4)
	assert.Len(t, r.Checklists, 12)
	assert.Len(t, r.ChecklistProgress, 12)
}

func TestAssemble_ExplicitTrackedLists(t *testing.T) {
	b := testutil.FullBoard(t)
	tracked := []burndown.ListRef{{Name: "Doing"}, {Name: "Sprint 11"}}

	r, err := Assemble(b, Options{Rules: testRules(), Tracked: tracked, At: testTime})
	require.NoError(t, err)

	assert.Equal(t, map[string]burndown.Point{
		"Doing":     {List: tracked[0], Points: 3},
		"Sprint 11": {List: tracked[1], Points: 0},
	}, r.Burndown)
}

func TestAssemble_DuplicateListNames(t *testing.T) {
	b := board.Board{ID: "b", Lists: []board.List{
		{ID: "l1", Name: "Doing", Cards: []board.Card{{Title: "(5) First"}}},
		{ID: "l2", Name: "Doing", Cards: []board.Card{{Title: "(3) Second"}}},
	}}

	for i := 0; i < 10; i++ {
		r, err := Assemble(b, Options{Rules: testRules(), At: testTime})
		require.NoError(t, err)
		assert.Equal(t, map[string]burndown.Point{
			"Doing":     {List: burndown.ListRef{ID: "l1", Name: "Doing"}, Points: 5},
			"Doing (2)": {List: burndown.ListRef{ID: "l2", Name: "Doing (2)"}, Points: 3},
		}, r.Burndown)
		assert.Equal(t, 8, r.Sample.Remaining)
	}
}

func TestAssemble_NoBacklogList(t *testing.T) {
	b := testutil.FullBoard(t)

	r, err := Assemble(b, Options{Rules: classify.DefaultRules(), At: testTime})
	require.NoError(t, err)
	assert.Empty(t, r.Backlog)
}

func TestAssemble_InvalidVelocity(t *testing.T) {
	b := testutil.FullBoard(t)

	_, err := Assemble(b, Options{Rules: testRules(), Backlog: backlog.Options{Velocity: velocity(0)}})
	assert.ErrorIs(t, err, backlog.ErrInvalidVelocity)
}

func TestAssemble_NothingToTrack(t *testing.T) {
	b := board.Board{ID: "b", Lists: []board.List{{Name: "Legend"}}}

	_, err := Assemble(b, Options{Rules: classify.DefaultRules()})
	assert.ErrorIs(t, err, burndown.ErrMissingTrackedList)
}

func TestBacklogEntries_NotFound(t *testing.T) {
	_, err := BacklogEntries(testutil.FullBoard(t), classify.DefaultRules(), backlog.Options{})
	assert.ErrorIs(t, err, ErrBacklogNotFound)
}

func TestGenerator_Generate(t *testing.T) {
	src := &fakeSource{board: testutil.FullBoard(t)}
	gen := NewGenerator(src, nil)

	r, err := gen.Generate(context.Background(), testutil.FullBoardID, Options{Rules: testRules(), At: testTime})
	require.NoError(t, err)

	assert.Equal(t, []string{testutil.FullBoardID}, src.fetched)
	assert.Equal(t, "Trollolo Testing Board", r.BoardName)
}

func TestGenerator_HealthCheckFails(t *testing.T) {
	src := &fakeSource{healthErr: errors.New("unauthorized")}
	gen := NewGenerator(src, nil)

	_, err := gen.Board(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake health check failed")
	assert.Empty(t, src.fetched)
}

func TestGenerator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(&fakeSource{}, nil).Board(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotSource(t *testing.T) {
	src := NewSnapshotSource(testutil.Path(t, "full_board.json"))

	b, err := src.FetchBoard(context.Background(), testutil.FullBoardID)
	require.NoError(t, err)
	assert.Len(t, b.Lists, 6)

	_, err = src.FetchBoard(context.Background(), "")
	require.NoError(t, err)

	_, err = src.FetchBoard(context.Background(), "someotherboard")
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	stats := Statistics(testutil.FullBoard(t), testRules())

	assert.Equal(t, 6, stats["lists"])
	assert.Equal(t, 23, stats["cards"])
	assert.Equal(t, 13, stats["estimated"])
	assert.Equal(t, map[string]int{
		"backlog": 19,
		"sprint":  3,
		"done":    16,
		"other":   0,
	}, stats["points_by_class"])
}

func TestRenderer_Backlog(t *testing.T) {
	b := testutil.FullBoard(t)
	var buf bytes.Buffer

	entries, err := BacklogEntries(b, testRules(), backlog.Options{EstimatedOnly: true})
	require.NoError(t, err)
	require.NoError(t, NewRenderer(&buf).Backlog(entries))

	want := `
Priority | Points | Title
       1 |      3 | (3) P1: Fill Backlog column
       2 |      5 | (5) P4: Read data from Trollolo
       3 |      3 | (3) P5: Save read data as reference data
       4 |      8 | (8) P6: Celebrate testing board
`
	assert.Equal(t, want, buf.String())
}

func TestRenderer_BacklogWithVelocity(t *testing.T) {
	b := testutil.FullBoard(t)
	var buf bytes.Buffer

	entries, err := BacklogEntries(b, testRules(), backlog.Options{Velocity: velocity(9), EstimatedOnly: true})
	require.NoError(t, err)
	require.NoError(t, NewRenderer(&buf).Backlog(entries))

	want := `
Priority | Points | Title
       1 |      3 | (3) P1: Fill Backlog column
       2 |      5 | (5) P4: Read data from Trollolo
-------------------------
       3 |      3 | (3) P5: Save read data as reference data
       4 |      8 | (8) P6: Celebrate testing board
`
	assert.Equal(t, want, buf.String())
}

func TestRenderer_Lists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Lists(testutil.FullBoard(t)))

	assert.Equal(t, `Sprint Backlog
Doing
Done Sprint 10
Done Sprint 9
Done Sprint 8
Legend
`, buf.String())
}

func TestRenderer_Cards(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Cards(testutil.FullBoard(t)))

	assert.Equal(t, `Sprint 3
(3) P1: Fill Backlog column
(5) P4: Read data from Trollolo
(3) P5: Save read data as reference data
Waterline
(8) P6: Celebrate testing board
(2) P2: Fill Doing column
(1) Fix emergency
Burndown chart
Sprint 10
(3) P3: Fill Done columns
(2) Some unplanned work
Burndown chart
Sprint 9
(2) P1: Explain purpose
(2) P2: Create Scrum columns
Burndown chart
Sprint 8
(1) P1: Create Trello Testing Board
(5) P2: Add fancy background
(1) P4: Add legend
Purpose
Background image
`, buf.String())
}

func TestRenderer_Checklists(t *testing.T) {
	r, err := Assemble(testutil.FullBoard(t), Options{Rules: testRules(), At: testTime})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Checklists(r.Checklists))

	assert.Equal(t, `Tasks
Tasks
Tasks
Tasks
Tasks
Feedback
Tasks
Tasks
Tasks
Tasks
Tasks
Tasks
`, buf.String())
}

func TestRenderer_Burndown(t *testing.T) {
	tracked := []burndown.ListRef{{Name: "Doing"}, {Name: "Done Sprint 10"}}
	dp := burndown.DataPoint{
		Date:      "2026-03-04",
		Lists:     map[string]int{"Doing": 3, "Done Sprint 10": 5},
		Remaining: 3,
		Done:      5,
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Burndown(tracked, dp))

	assert.Equal(t, `Burndown 2026-03-04
  Doing             3
  Done Sprint 10    5
  Remaining         3
  Done              5
`, buf.String())
}
