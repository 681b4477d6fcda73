// Package estimate reads story point estimates out of card titles.
//
// A title carries an estimate when it starts, after optional whitespace,
// with a parenthesized non-negative integer: "(3) P1: Fill Backlog column".
// Anything else is unestimated. Parsing never fails and never rewrites the
// title.
package estimate

import (
	"strconv"
	"strings"
	"unicode"
)

// Estimate is the result of parsing a card title.
type Estimate struct {
	Points  int
	Present bool
	// Title is the original title, marker included.
	Title string
}

// Parse extracts the leading "(N)" estimate from title.
func Parse(title string) Estimate {
	e := Estimate{Title: title}

	rest := strings.TrimLeftFunc(title, unicode.IsSpace)
	if !strings.HasPrefix(rest, "(") {
		return e
	}

	end := strings.IndexByte(rest, ')')
	if end < 2 {
		return e
	}

	digits := rest[1:end]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return e
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		// overflow
		return e
	}

	e.Points = n
	e.Present = true
	return e
}

// Points is shorthand for Parse(title).Points.
func Points(title string) int {
	return Parse(title).Points
}

// Sum adds up the estimates of all titles.
func Sum(titles ...string) int {
	total := 0
	for _, t := range titles {
		total += Points(t)
	}
	return total
}
