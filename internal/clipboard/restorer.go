package clipboard

import (
	"context"
	"os"
	"time"
)

// Restorer undoes a handoff once its timeout expires.
type Restorer struct {
	Service Service
	History HistoryClearer
	// Wait blocks for d or until ctx is done.
	Wait func(ctx context.Context, d time.Duration) error
}

// Outcome reports what a restorer did.
type Outcome int

const (
	// Cancelled means the restorer was stopped before its timeout.
	Cancelled Outcome = iota
	// Restored means the previous content was put back.
	Restored
	// Cleared means the clipboard had changed and was cleared.
	Cleared
)

// Run waits for the request's timeout, then restores or clears the
// clipboard and clears manager history. A cancelled ctx leaves the
// clipboard alone; the process that cancelled it has taken over.
func (r *Restorer) Run(ctx context.Context, req Request) (Outcome, error) {
	wait := r.Wait
	if wait == nil {
		wait = sleep
	}
	if err := wait(ctx, req.Timeout); err != nil {
		return Cancelled, nil
	}
	defer releasePidFile(req.PidFile)

	current, err := r.Service.Read()
	if err != nil {
		return Cancelled, err
	}

	outcome := Cleared
	restore := ""
	if Digest(current) == req.Digest {
		outcome = Restored
		restore = req.Previous
	}
	if err := r.Service.Write(restore); err != nil {
		return Cancelled, err
	}

	if r.History != nil {
		// Best effort; the clipboard itself is already clean.
		_ = r.History.ClearHistory(context.Background())
	}
	return outcome, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// releasePidFile removes the pid file if it still names this process.
func releasePidFile(path string) {
	if path == "" {
		return
	}
	p, err := readPidFile(path)
	if err != nil || p.pid != os.Getpid() {
		return
	}
	_ = os.Remove(path)
}
