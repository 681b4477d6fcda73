package report

import (
	"context"
	"fmt"

	"github.com/Afrawles/sprintboard/internal/board"
)

// BoardSource hands out board snapshots.
type BoardSource interface {
	Name() string
	FetchBoard(ctx context.Context, boardID string) (board.Board, error)
	HealthCheck(ctx context.Context) error
}

// SnapshotSource serves a board saved on disk, e.g. by the backup command.
type SnapshotSource struct {
	Path string
}

func NewSnapshotSource(path string) *SnapshotSource {
	return &SnapshotSource{Path: path}
}

var _ BoardSource = (*SnapshotSource)(nil)

func (s *SnapshotSource) Name() string {
	return "snapshot"
}

func (s *SnapshotSource) HealthCheck(ctx context.Context) error {
	return nil
}

// FetchBoard loads the snapshot. An empty boardID accepts any board.
func (s *SnapshotSource) FetchBoard(ctx context.Context, boardID string) (board.Board, error) {
	b, err := board.LoadSnapshot(s.Path)
	if err != nil {
		return board.Board{}, err
	}
	if boardID != "" && b.ID != "" && b.ID != boardID {
		return board.Board{}, fmt.Errorf("snapshot %s holds board %s, not %s", s.Path, b.ID, boardID)
	}
	return b, nil
}
