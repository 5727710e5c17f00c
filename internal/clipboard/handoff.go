package clipboard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Request is what a restorer needs to undo a handoff.
type Request struct {
	Digest   string        `json:"digest"`
	Previous string        `json:"previous"`
	Timeout  time.Duration `json:"timeout"`
	PidFile  string        `json:"pid_file"`
}

// Encode writes r as JSON.
func (r Request) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// ReadRequest decodes a Request from r.
func ReadRequest(r io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Request{}, fmt.Errorf("reading restore request: %w", err)
	}
	if req.Digest == "" || req.Timeout <= 0 {
		return Request{}, fmt.Errorf("reading restore request: incomplete request")
	}
	return req, nil
}

// Digest returns the hex sha256 of text.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Spawner starts a detached restorer and returns its pid.
type Spawner interface {
	Spawn(req Request) (int, error)
}

// Options configures a Handoff.
type Options struct {
	Service Service
	Spawner Spawner
	PidFile string
	Timeout time.Duration
}

// Handoff places secrets on the clipboard.
type Handoff struct {
	opts Options
	kill func(pid int) error
	now  func() time.Time
}

// NewHandoff returns a Handoff.
func NewHandoff(opts Options) *Handoff {
	return &Handoff{opts: opts, kill: terminate, now: time.Now}
}

// Copy writes secret to the clipboard and schedules its removal.
func (h *Handoff) Copy(ctx context.Context, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	previous, err := h.opts.Service.Read()
	if err != nil {
		return err
	}

	// A pending restorer keeps guarding the clipboard until the new secret is
	// in place. If the clipboard still holds its secret, that secret must not
	// become the content we restore later.
	pending, superseding := h.pending()
	if superseding && Digest(previous) == pending.digest {
		previous = ""
	}

	if err := h.opts.Service.Write(secret); err != nil {
		return err
	}

	if superseding {
		if err := h.kill(pending.pid); err != nil {
			_ = h.opts.Service.Write(previous)
			return fmt.Errorf("stopping previous clipboard restorer: %w", err)
		}
		if err := os.Remove(h.opts.PidFile); err != nil && !os.IsNotExist(err) {
			_ = h.opts.Service.Write(previous)
			return fmt.Errorf("removing pid file: %w", err)
		}
	}

	req := Request{
		Digest:   Digest(secret),
		Previous: previous,
		Timeout:  h.opts.Timeout,
		PidFile:  h.opts.PidFile,
	}
	pid, err := h.opts.Spawner.Spawn(req)
	if err != nil {
		// Nothing will take the secret off the clipboard; do it now.
		_ = h.opts.Service.Write(previous)
		return fmt.Errorf("starting clipboard restorer: %w", err)
	}
	return writePidFile(h.opts.PidFile, pid, req.Digest)
}

type pendingRestorer struct {
	pid    int
	digest string
}

func (h *Handoff) pending() (pendingRestorer, bool) {
	info, err := os.Stat(h.opts.PidFile)
	if err != nil {
		return pendingRestorer{}, false
	}
	// A pid file older than any restorer could live is stale; its pid may
	// belong to an unrelated process by now.
	if h.now().Sub(info.ModTime()) > h.opts.Timeout+time.Minute {
		_ = os.Remove(h.opts.PidFile)
		return pendingRestorer{}, false
	}
	p, err := readPidFile(h.opts.PidFile)
	if err != nil {
		return pendingRestorer{}, false
	}
	return p, true
}

func writePidFile(path string, pid int, digest string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating pid file directory: %w", err)
	}
	data := fmt.Sprintf("%d %s\n", pid, digest)
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}
	return nil
}

func readPidFile(path string) (pendingRestorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pendingRestorer{}, err
	}
	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return pendingRestorer{}, fmt.Errorf("malformed pid file")
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil || pid <= 0 {
		return pendingRestorer{}, fmt.Errorf("malformed pid file")
	}
	return pendingRestorer{pid: pid, digest: fields[1]}, nil
}
