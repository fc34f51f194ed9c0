package history

import (
	"context"

	domhist "github.com/servo-app/refinery/internal/domain/history"
)

// Repository defines the storage contract for search history.
type Repository interface {
	Load(ctx context.Context, visitorID string) ([]domhist.Entry, error)
	Save(ctx context.Context, visitorID string, entries []domhist.Entry) error
	Delete(ctx context.Context, visitorID string) error
	SavePath(ctx context.Context, visitorID, path string) error
	LoadPath(ctx context.Context, visitorID string) (string, error)
}

// Recorder counts history operations.
type Recorder interface {
	History(operation string, err error)
}

type nopRecorder struct{}

func (nopRecorder) History(string, error) {}
