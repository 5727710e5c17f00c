package clipboard

import (
	"fmt"
	"os"
	"os/exec"
)

// ExecSpawner starts the restorer by running Executable with Args.
type ExecSpawner struct {
	Executable string
	Args       []string
}

// NewExecSpawner re-executes the running binary with args.
func NewExecSpawner(args ...string) (*ExecSpawner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}
	return &ExecSpawner{Executable: exe, Args: args}, nil
}

// Spawn starts a detached restorer and sends req on its stdin.
func (s *ExecSpawner) Spawn(req Request) (int, error) {
	// #nosec G204 -- re-executes this binary.
	cmd := exec.Command(s.Executable, s.Args...)
	cmd.SysProcAttr = detached()
	cmd.Dir = os.TempDir()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, err
	}
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	encodeErr := req.Encode(stdin)
	closeErr := stdin.Close()
	if encodeErr != nil || closeErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		if encodeErr == nil {
			encodeErr = closeErr
		}
		return 0, fmt.Errorf("sending restore request: %w", encodeErr)
	}

	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}
