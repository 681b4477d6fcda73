package burndown

import (
	"errors"
	"fmt"
	"time"

	"github.com/Afrawles/sprintboard/internal/board"
	"github.com/Afrawles/sprintboard/internal/classify"
	"github.com/Afrawles/sprintboard/internal/estimate"
)

const DateLayout = "2006-01-02"

var ErrMissingTrackedList = errors.New("no lists to track")

// ListRef identifies a tracked list. ID wins when set and some list on the
// board carries it. Otherwise Name is matched against the list labels, which
// covers snapshots saved without ids.
type ListRef struct {
	ID   string `yaml:"id,omitempty" json:"id,omitempty"`
	Name string `yaml:"name" json:"name"`
}

// Point is the number of estimated points sitting in a list right now.
type Point struct {
	List   ListRef `json:"list"`
	Points int     `json:"points"`
}

// Labels names the board's lists for tracking, in board order. A list whose
// name was already taken by an earlier list is labelled "<name> (n)", so
// every label is unique on the board.
func Labels(b board.Board) []string {
	labels := make([]string, len(b.Lists))
	used := make(map[string]bool, len(b.Lists))
	seen := make(map[string]int, len(b.Lists))
	for i, l := range b.Lists {
		seen[l.Name]++
		label := l.Name
		for n := seen[l.Name]; used[label]; n++ {
			label = fmt.Sprintf("%s (%d)", l.Name, n)
		}
		used[label] = true
		labels[i] = label
	}
	return labels
}

// resolve finds the board list a ref points at.
func resolve(b board.Board, labels []string, ref ListRef) (board.List, bool) {
	if ref.ID != "" {
		for _, l := range b.Lists {
			if l.ID == ref.ID {
				return l, true
			}
		}
	}
	for i, l := range b.Lists {
		if labels[i] != ref.Name {
			continue
		}
		if ref.ID == "" || l.ID == "" {
			return l, true
		}
	}
	return board.List{}, false
}

// Accumulate sums the card estimates of every tracked list. A tracked list
// missing from the board still gets a point of 0 so series stay aligned.
func Accumulate(b board.Board, tracked []ListRef) (map[ListRef]Point, error) {
	if len(tracked) == 0 {
		return nil, ErrMissingTrackedList
	}

	labels := Labels(b)
	points := make(map[ListRef]Point, len(tracked))
	for _, ref := range tracked {
		p := Point{List: ref}
		if l, ok := resolve(b, labels, ref); ok {
			for _, c := range l.Cards {
				p.Points += estimate.Points(c.Title)
			}
		}
		points[ref] = p
	}
	return points, nil
}

// DataPoint is one sample of a burndown series.
type DataPoint struct {
	Date      string         `yaml:"date" json:"date"`
	Lists     map[string]int `yaml:"lists" json:"lists"`
	Remaining int            `yaml:"remaining" json:"remaining"`
	Done      int            `yaml:"done" json:"done"`
}

// Sample accumulates the tracked lists and rolls the totals up by class:
// sprint and backlog lists count as remaining work, done lists as done.
func Sample(b board.Board, tracked []ListRef, rules classify.Rules, at time.Time) (DataPoint, error) {
	points, err := Accumulate(b, tracked)
	if err != nil {
		return DataPoint{}, err
	}

	labels := Labels(b)
	dp := DataPoint{
		Date:  at.Format(DateLayout),
		Lists: make(map[string]int, len(tracked)),
	}
	for _, ref := range tracked {
		p := points[ref]
		dp.Lists[ref.Name] += p.Points

		// classify by the list's own name, labels carry a suffix
		name := ref.Name
		if l, ok := resolve(b, labels, ref); ok {
			name = l.Name
		}
		switch rules.Classify(name) {
		case classify.Sprint, classify.Backlog:
			dp.Remaining += p.Points
		case classify.Done:
			dp.Done += p.Points
		}
	}
	return dp, nil
}

// TrackableLists returns refs for every list of the board that is not
// classified as Other, in board order and named by their labels.
func TrackableLists(b board.Board, rules classify.Rules) []ListRef {
	labels := Labels(b)
	var refs []ListRef
	for i, l := range b.Lists {
		if rules.Classify(l.Name) == classify.Other {
			continue
		}
		refs = append(refs, ListRef{ID: l.ID, Name: labels[i]})
	}
	return refs
}

// SelectLists resolves list labels against the board. Labels not on the
// board are kept without an id.
func SelectLists(b board.Board, names []string) []ListRef {
	labels := Labels(b)
	refs := make([]ListRef, 0, len(names))
	for _, name := range names {
		ref := ListRef{Name: name}
		if l, ok := resolve(b, labels, ref); ok {
			ref.ID = l.ID
		}
		refs = append(refs, ref)
	}
	return refs
}
