// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Afrawles/sprintboard/internal/board"
)

const FullBoardID = "53186e8391ef8671265eba9d"

// TestdataDir returns the directory holding the shared fixtures.
func TestdataDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(filename), "testdata")
}

// Path returns the absolute path of a shared fixture file.
func Path(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(TestdataDir(t), name)
}

// FullBoard loads the reference board: a backlog, a doing column, three
// done columns and a legend.
func FullBoard(t *testing.T) board.Board {
	t.Helper()
	b, err := board.LoadSnapshot(Path(t, "full_board.json"))
	if err != nil {
		t.Fatalf("load full board: %v", err)
	}
	return b
}
