// Package backlog ranks backlog cards by board position and cuts the ranked
// backlog into sprint sized slices.
package backlog

import (
	"errors"
	"fmt"

	"github.com/Afrawles/sprintboard/internal/board"
	"github.com/Afrawles/sprintboard/internal/estimate"
)

var ErrInvalidVelocity = errors.New("velocity must be a positive number of points")

type Row struct {
	Rank   int    `json:"rank"`
	Points int    `json:"points"`
	Title  string `json:"title"`
}

// Entry is either a row or a slice marker.
type Entry struct {
	Row    Row  `json:"row"`
	Marker bool `json:"marker,omitempty"`
}

type Options struct {
	// Velocity bounds each slice. Nil disables slicing.
	Velocity *int
	// EstimatedOnly drops cards without a "(N)" estimate before ranking.
	EstimatedOnly bool
}

// Prioritize ranks cards in the given order, starting at 1. With a velocity
// a marker closes the current slice before the row whose points would make
// the slice reach the velocity; that row opens the next slice and the
// running sum restarts at 0. A row that reaches the velocity on its own in
// an empty slice stays in it and the marker follows it.
func Prioritize(cards []board.Card, velocity *int) ([]Entry, error) {
	if velocity != nil && *velocity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVelocity, *velocity)
	}

	entries := make([]Entry, 0, len(cards))
	sum, inSlice := 0, 0
	for i, c := range cards {
		row := Row{Rank: i + 1, Points: estimate.Points(c.Title), Title: c.Title}

		if velocity == nil || sum+row.Points < *velocity {
			entries = append(entries, Entry{Row: row})
			sum += row.Points
			inSlice++
			continue
		}

		if inSlice == 0 {
			entries = append(entries, Entry{Row: row}, Entry{Marker: true})
			sum, inSlice = 0, 0
			continue
		}

		entries = append(entries, Entry{Marker: true}, Entry{Row: row})
		sum, inSlice = 0, 1
	}
	return entries, nil
}

// Build prioritizes the cards of a backlog list.
func Build(l board.List, opts Options) ([]Entry, error) {
	cards := l.Cards
	if opts.EstimatedOnly {
		cards = make([]board.Card, 0, len(l.Cards))
		for _, c := range l.Cards {
			if estimate.Parse(c.Title).Present {
				cards = append(cards, c)
			}
		}
	}
	return Prioritize(cards, opts.Velocity)
}

// Rows drops the markers.
func Rows(entries []Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		if !e.Marker {
			rows = append(rows, e.Row)
		}
	}
	return rows
}

// Slices splits entries at the markers. A trailing marker does not open an
// empty slice.
func Slices(entries []Entry) [][]Row {
	var (
		slices  [][]Row
		current []Row
	)
	for _, e := range entries {
		if e.Marker {
			slices = append(slices, current)
			current = nil
			continue
		}
		current = append(current, e.Row)
	}
	if len(current) > 0 {
		slices = append(slices, current)
	}
	return slices
}
