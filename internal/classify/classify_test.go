package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/sprintboard/internal/testutil"
)

func TestClassify(t *testing.T) {
	rules := Rules{
		BacklogName: "Sprint Backlog",
		DonePrefix:  "Done",
		DoneNames:   []string{"Shipped"},
		Excluded:    []string{"Legend"},
	}

	tests := []struct {
		name string
		want Class
	}{
		{"Sprint Backlog", Backlog},
		{"sprint backlog", Sprint},
		{"Doing", Sprint},
		{"Sprint 10", Sprint},
		{"Done Sprint 10", Done},
		{"Done", Done},
		{"Shipped", Done},
		{"Legend", Other},
		{"", Sprint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name, rules))
			assert.Equal(t, Classify(tt.name, rules), Classify(tt.name, rules))
		})
	}
}

func TestClassify_ExactDoneNamesOnly(t *testing.T) {
	rules := Rules{BacklogName: "Backlog", DoneNames: []string{"Done"}}

	assert.Equal(t, Done, Classify("Done", rules))
	assert.Equal(t, Sprint, Classify("Done Sprint 9", rules), "prefix matching is off without DonePrefix")
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, Backlog, rules.Classify("Backlog"))
	assert.Equal(t, Done, rules.Classify("Done Sprint 8"))
	assert.Equal(t, Other, rules.Classify("Legend"))
	assert.Equal(t, Sprint, rules.Classify("Sprint Backlog"))
}

func TestPartition(t *testing.T) {
	b := testutil.FullBoard(t)
	rules := DefaultRules()
	rules.BacklogName = "Sprint Backlog"

	groups := rules.Partition(b)

	names := func(c Class) []string {
		var out []string
		for _, l := range groups[c] {
			out = append(out, l.Name)
		}
		return out
	}

	require.Len(t, groups, 4)
	assert.Equal(t, []string{"Sprint Backlog"}, names(Backlog))
	assert.Equal(t, []string{"Doing"}, names(Sprint))
	assert.Equal(t, []string{"Done Sprint 10", "Done Sprint 9", "Done Sprint 8"}, names(Done))
	assert.Equal(t, []string{"Legend"}, names(Other))
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "sprint", Sprint.String())
	assert.Equal(t, "backlog", Backlog.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "other", Other.String())
}
