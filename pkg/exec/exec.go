package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyCommand = errors.New("empty command")
	Unredacted      = Redact(nil)
)

// CmdError is returned when a command exits unsuccessfully or times out.
type CmdError struct {
	Args   string
	Stderr string
	Cause  error
}

func (ce *CmdError) Error() string {
	res := fmt.Sprintf("`%v` failed: %v", ce.Args, ce.Cause)
	if ce.Stderr != "" {
		res = fmt.Sprintf("%s: %s", res, ce.Stderr)
	}

	return res
}

func (ce *CmdError) Unwrap() error {
	return ce.Cause
}

func newCmdError(args string, cause error, stderr string) *CmdError {
	return &CmdError{Args: args, Stderr: stderr, Cause: cause}
}

// TimeoutBehavior defines what happens when a command outlives its timeout
// or its context. By default, SIGKILL is sent.
type TimeoutBehavior struct {
	// Signal is sent to the process.
	Signal syscall.Signal
	// WaitDelay bounds how long to wait for the output pipes to close once
	// the process has exited. Defaults to [DefaultWaitDelay].
	WaitDelay time.Duration
}

// DefaultWaitDelay is used when [TimeoutBehavior.WaitDelay] is zero.
const DefaultWaitDelay = 5 * time.Second

type CmdOpts struct {
	// Timeout bounds how long to wait for the command to exit.
	Timeout time.Duration
	// Redactor redacts secrets from logged arguments and output.
	Redactor func(text string) string
	// TimeoutBehavior configures what to do on timeout.
	TimeoutBehavior TimeoutBehavior
	// SkipErrorLogging skips logging of execution errors.
	SkipErrorLogging bool
	// CaptureStderr appends stderr to the returned output.
	CaptureStderr bool
}

var DefaultCmdOpts = CmdOpts{
	Timeout:          time.Duration(0),
	Redactor:         Unredacted,
	TimeoutBehavior:  TimeoutBehavior{Signal: syscall.SIGKILL, WaitDelay: DefaultWaitDelay},
	SkipErrorLogging: false,
	CaptureStderr:    false,
}

// Redact returns a redactor that masks every item.
func Redact(items []string) func(text string) string {
	return func(text string) string {
		for _, item := range items {
			if item == "" {
				continue
			}

			text = strings.ReplaceAll(text, item, "******")
		}

		return text
	}
}

// RunCommandExt runs cmd, logging it in a form that can be pasted into a
// terminal, and returns its stdout. On failure the error is a [*CmdError]
// carrying the redacted stderr.
func RunCommandExt(ctx context.Context, cmd *exec.Cmd, opts CmdOpts) (string, error) {
	logCtx := slog.With("execID", uuid.NewString()[:8])

	redactor := DefaultCmdOpts.Redactor
	if opts.Redactor != nil {
		redactor = opts.Redactor
	}

	args := strings.Join(cmd.Args, " ")
	logCtx.Info(redactor(args), "dir", cmd.Dir)

	var (
		stdout bytes.Buffer
		stderr bytes.Buffer
	)

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	timeoutBehavior := DefaultCmdOpts.TimeoutBehavior
	if opts.TimeoutBehavior.Signal != syscall.Signal(0) {
		timeoutBehavior.Signal = opts.TimeoutBehavior.Signal
	}

	if opts.TimeoutBehavior.WaitDelay != 0 {
		timeoutBehavior.WaitDelay = opts.TimeoutBehavior.WaitDelay
	}

	// Children that inherit the pipes could otherwise keep Wait blocked
	// after the process itself is gone.
	cmd.WaitDelay = timeoutBehavior.WaitDelay

	start := time.Now()

	err := cmd.Start()
	if err != nil {
		return "", newCmdError(redactor(args), err, "")
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timeout := DefaultCmdOpts.Timeout
	if opts.Timeout != time.Duration(0) {
		timeout = opts.Timeout
	}

	var timeoutCh <-chan time.Time

	if timeout != 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		timeoutCh = timer.C
	}

	output := func() string {
		out := stdout.String()
		if opts.CaptureStderr {
			out += stderr.String()
		}

		return strings.TrimSuffix(out, "\n")
	}

	stop := func(cause error) (string, error) {
		_ = cmd.Process.Signal(timeoutBehavior.Signal) //nolint:errcheck // Best-effort.

		// The output buffers are owned by the copying goroutines until Wait
		// returns.
		<-done

		out := output()
		logCtx.Debug(redactor(out), "duration", time.Since(start))

		err := newCmdError(redactor(args), cause, "")
		logCtx.Error(err.Error())

		return out, err
	}

	select {
	case <-timeoutCh:
		return stop(fmt.Errorf("timeout after %v", timeout))
	case <-ctx.Done():
		return stop(ctx.Err())
	case err := <-done:
		if err != nil {
			out := output()
			logCtx.Debug(redactor(out), "duration", time.Since(start))

			err := newCmdError(redactor(args), errors.New(redactor(err.Error())), strings.TrimSpace(redactor(stderr.String())))
			if !opts.SkipErrorLogging {
				logCtx.Error(err.Error())
			}

			return out, err
		}
	}

	out := output()
	logCtx.Debug(redactor(out), "duration", time.Since(start))

	return out, nil
}

// Run runs argv, whose first element is the program, in dir.
func Run(ctx context.Context, dir string, argv []string, opts CmdOpts) (string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return "", ErrEmptyCommand
	}

	//nolint:gosec // G204 commands are configured by the user.
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir

	return RunCommandExt(ctx, cmd, opts)
}
