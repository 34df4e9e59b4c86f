package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/sdboyer/constext"
)

// activityTimeout is how long a VCS subprocess may go without writing to
// stdout or stderr before it is considered stuck and killed. The VCS
// binary itself is never given a timeout per spec; this is a liveness
// check, not a deadline.
const activityTimeout = 2 * time.Minute

// monitoredCmd wraps an *exec.Cmd and keeps watching it until it exits, the
// caller's context is done, or it shows no activity for activityTimeout.
type monitoredCmd struct {
	cmd    *exec.Cmd
	ctx    context.Context
	cancel context.CancelFunc
	stdout *activityBuffer
	stderr *activityBuffer
}

// newMonitoredCmd combines ctx with a fresh cancelable lifetime context via
// constext.Cons, so killing the adapter (cancel) and the caller giving up
// (ctx.Done) both terminate the subprocess.
func newMonitoredCmd(ctx context.Context, cmd *exec.Cmd) *monitoredCmd {
	lifetime, cancel := context.WithCancel(context.Background())
	joined, _ := constext.Cons(ctx, lifetime)
	stdout, stderr := newActivityBuffer(), newActivityBuffer()
	cmd.Stdout, cmd.Stderr = stdout, stderr
	return &monitoredCmd{cmd: cmd, ctx: joined, cancel: cancel, stdout: stdout, stderr: stderr}
}

// run waits for the command to finish and returns its error, if any. A
// command with no stdout/stderr activity for longer than activityTimeout is
// killed.
func (c *monitoredCmd) run() error {
	defer c.cancel()

	ticker := time.NewTicker(activityTimeout)
	defer ticker.Stop()

	done := make(chan error, 1)
	go func() { done <- c.cmd.Run() }()

	for {
		select {
		case <-ticker.C:
			if c.hasTimedOut() {
				_ = c.cmd.Process.Kill()
				return errTimeout
			}
		case <-c.ctx.Done():
			_ = c.cmd.Process.Kill()
			return c.ctx.Err()
		case err := <-done:
			return err
		}
	}
}

func (c *monitoredCmd) hasTimedOut() bool {
	cutoff := time.Now().Add(-activityTimeout)
	return c.stdout.lastActivity().Before(cutoff) && c.stderr.lastActivity().Before(cutoff)
}

type activityBuffer struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	lastSeen time.Time
}

func newActivityBuffer() *activityBuffer {
	return &activityBuffer{lastSeen: time.Now()}
}

func (b *activityBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastSeen = time.Now()
	return b.buf.Write(p)
}

func (b *activityBuffer) lastActivity() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen
}

func (b *activityBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "vcs: command killed after no activity" }

var errTimeout = timeoutErr{}
