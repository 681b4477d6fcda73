package classify

import (
	"slices"
	"strings"

	"github.com/Afrawles/sprintboard/internal/board"
)

type Class int

const (
	Sprint Class = iota
	Backlog
	Done
	Other
)

func (c Class) String() string {
	switch c {
	case Backlog:
		return "backlog"
	case Done:
		return "done"
	case Other:
		return "other"
	default:
		return "sprint"
	}
}

// Rules decide the role of a list from its name. Matching is case-sensitive.
type Rules struct {
	BacklogName string
	// DonePrefix marks lists such as "Done Sprint 9". Empty disables it.
	DonePrefix string
	DoneNames  []string
	Excluded   []string
}

func DefaultRules() Rules {
	return Rules{
		BacklogName: "Backlog",
		DonePrefix:  "Done",
		Excluded:    []string{"Legend"},
	}
}

// Classify returns the role of the list called name. Backlog wins over
// done, done over excluded; anything left is a sprint list.
func Classify(name string, rules Rules) Class {
	switch {
	case rules.BacklogName != "" && name == rules.BacklogName:
		return Backlog
	case slices.Contains(rules.DoneNames, name):
		return Done
	case rules.DonePrefix != "" && strings.HasPrefix(name, rules.DonePrefix):
		return Done
	case slices.Contains(rules.Excluded, name):
		return Other
	default:
		return Sprint
	}
}

func (r Rules) Classify(name string) Class {
	return Classify(name, r)
}

// Partition groups the board's lists by class, keeping board order.
func (r Rules) Partition(b board.Board) map[Class][]board.List {
	groups := make(map[Class][]board.List)
	for _, l := range b.Lists {
		c := r.Classify(l.Name)
		groups[c] = append(groups[c], l)
	}
	return groups
}
