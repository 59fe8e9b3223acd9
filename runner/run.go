package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
)

// ErrAlreadyStarted is returned when Command is called on a Run that has
// already executed a command.
var ErrAlreadyStarted = errors.New("run already started")

// State is the lifecycle state of a Run.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Env describes where the binaries under test and their assets live. It does
// not change the working directory of spawned processes.
type Env struct {
	TestDir  string
	AssetDir string
}

// Asset returns the path of name inside the asset directory.
func (e Env) Asset(name string) string {
	return filepath.Join(e.AssetDir, name)
}

// ChildEnv returns the environment given to every spawned process: the
// caller's HOME and nothing else.
func ChildEnv() []string {
	return []string{"HOME=" + os.Getenv("HOME")}
}

// Run executes one command. Stdout is returned from Command and mirrored into
// a temporary log file that lives until Cleanup.
type Run struct {
	Env Env

	// Stderr holds the tail of the child's standard error.
	Stderr string
	// StderrTruncated is set when the child wrote more stderr than is kept.
	StderrTruncated bool
	// ReturnCode is the child's exit code, or -1 if it did not exit normally.
	ReturnCode int
	// Duration is the wall time of the last command.
	Duration time.Duration

	log      log.Logger
	tempFile string
	stdout   string

	mu          sync.Mutex
	state       State
	cleanupOnce sync.Once
}

func newRun(env Env, logger log.Logger) (*Run, error) {
	f, err := os.CreateTemp("", "op-licenses-run-*.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	return &Run{
		Env:        env,
		ReturnCode: -1,
		log:        logger,
		tempFile:   path,
	}, nil
}

// LogFile returns the path of the temporary file that receives a copy of stdout.
func (r *Run) LogFile() string {
	return r.tempFile
}

// State returns the current lifecycle state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Run) setState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}

// Output returns the stdout captured by the last command.
func (r *Run) Output() string {
	return r.stdout
}

// Plain returns the captured stdout with ANSI escape sequences removed.
func (r *Run) Plain() string {
	return stripansi.Strip(r.stdout)
}

// Command runs args[0] with args[1:] and returns its complete standard output
// decoded as UTF-8. A non-zero exit code is recorded in ReturnCode and is not
// an error; failing to start the process is.
func (r *Run) Command(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("no command given")
	}

	r.mu.Lock()
	if r.state != StateNotStarted {
		r.mu.Unlock()
		return "", ErrAlreadyStarted
	}
	r.state = StateRunning
	r.mu.Unlock()

	logFile, err := os.OpenFile(r.tempFile, os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		r.setState(StateFailed)
		return "", fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	// #nosec G204 -- argv comes from the test that owns this Run.
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = ChildEnv()

	var stdout bytes.Buffer
	stderr := newTailBuffer(defaultStderrTailBytes)
	cmd.Stdout = io.MultiWriter(&stdout, logFile)
	cmd.Stderr = stderr

	r.log.Debug("Running command", "args", args)
	start := time.Now()
	runErr := cmd.Run()
	r.Duration = time.Since(start)

	r.stdout = strings.ToValidUTF8(stdout.String(), "�")
	r.Stderr = stderr.String()
	r.StderrTruncated = stderr.Truncated()
	if r.StderrTruncated {
		r.log.Debug("Stderr truncated", "args", args, "total", stderr.TotalBytes(), "kept", len(r.Stderr))
	}
	if cmd.ProcessState != nil {
		r.ReturnCode = cmd.ProcessState.ExitCode()
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && ctx.Err() == nil {
			r.log.Debug("Command exited with non-zero status", "args", args, "code", r.ReturnCode)
			r.setState(StateCompleted)
			return r.stdout, nil
		}
		r.setState(StateFailed)
		if ctx.Err() != nil {
			return r.stdout, fmt.Errorf("command %q interrupted: %w", args[0], ctx.Err())
		}
		return "", fmt.Errorf("failed to run %q: %w", args[0], runErr)
	}

	r.setState(StateCompleted)
	return r.stdout, nil
}

// Cleanup removes the temporary log file. It is safe to call more than once;
// failures are logged and otherwise ignored.
func (r *Run) Cleanup() {
	r.cleanupOnce.Do(func() {
		if err := os.Remove(r.tempFile); err != nil {
			r.log.Warn("Could not delete temp file", "path", r.tempFile, "err", err)
		}
	})
}
