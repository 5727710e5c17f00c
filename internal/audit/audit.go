package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	logger "github.com/PolarWolf314/huna/internal/logging"
)

// ErrNotRepository indicates the store directory is not a git repository.
var ErrNotRepository = errors.New("store is not a git repository")

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"` // RFC3339 with microseconds.
	Operation string `json:"op"`

	// Optional fields depending on operation.
	IDs        []string `json:"ids,omitempty"`        // Records created, changed or deleted.
	Count      int      `json:"count,omitempty"`      // For rotate: artifacts re-encrypted.
	Recipients int      `json:"recipients,omitempty"` // For init/rotate.
	Mode       string   `json:"mode,omitempty"`       // For generate: in-place or replace.
}

// Message renders the commit message for entry.
func Message(entry Entry) (string, error) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	body, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("encoding audit entry: %w", err)
	}

	subject := entry.Operation
	if len(entry.IDs) > 0 {
		subject += ": " + strings.Join(entry.IDs, " ")
	}
	return subject + "\n\n" + string(body) + "\n", nil
}

// Committer appends a message to the audit history.
type Committer interface {
	Commit(ctx context.Context, message string) error
}

// Nop discards every entry. It is used when git integration is disabled.
type Nop struct{}

func (Nop) Commit(context.Context, string) error { return nil }

// Recorder logs entries through a Committer without ever failing.
type Recorder struct {
	committer Committer
	log       logger.Logger
}

// NewRecorder returns a Recorder. A nil committer records nothing.
func NewRecorder(committer Committer, log logger.Logger) *Recorder {
	if committer == nil {
		committer = Nop{}
	}
	return &Recorder{committer: committer, log: log}
}

// Log commits entry. Failures are logged, never returned.
func (r *Recorder) Log(ctx context.Context, entry Entry) {
	msg, err := Message(entry)
	if err != nil {
		r.log.Warnf("Audit entry for %s not recorded: %v", entry.Operation, err)
		return
	}
	if err := r.committer.Commit(ctx, msg); err != nil {
		if errors.Is(err, ErrNotRepository) {
			r.log.Debugf("Skipping audit commit: %v", err)
			return
		}
		r.log.Warnf("Audit commit for %s failed: %v", entry.Operation, err)
		return
	}
	r.log.Debugf("Recorded audit commit for %s", entry.Operation)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 || line[0] != '{' {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			if entry.Operation == "" {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
