package history

import (
	"encoding/json"
	"fmt"
	"time"

	domhist "github.com/servo-app/refinery/internal/domain/history"
)

// entryRow is the JSON representation of a history entry.
type entryRow struct {
	ID         string `json:"id"`
	Query      string `json:"query"`
	SearchedAt int64  `json:"searched_at"`
}

func encodeEntries(entries []domhist.Entry) ([]byte, error) {
	rows := make([]entryRow, len(entries))
	for i := range entries {
		rows[i] = entryRow{
			ID:         entries[i].ID(),
			Query:      entries[i].Query(),
			SearchedAt: entries[i].SearchedAt().UnixMilli(),
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal entries: %w", err)
	}
	return data, nil
}

func decodeEntries(data []byte) ([]domhist.Entry, error) {
	var rows []entryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal entries: %w", err)
	}
	out := make([]domhist.Entry, 0, len(rows))
	for _, r := range rows {
		if r.Query == "" {
			continue
		}
		out = append(out, domhist.Reconstruct(r.ID, r.Query, time.UnixMilli(r.SearchedAt).UTC()))
	}
	return out, nil
}
