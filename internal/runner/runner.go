// Package runner supervises the external simulation executable. The model
// prints no progress and never exits on its own when driven this way, so
// completion is inferred from its output files: once writes to them stop for
// a stall window the run is treated as finished and the process is stopped.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultOutputs are the output files whose write activity signals a live run.
var DefaultOutputs = []string{"two_31.csv", "qwo_31.csv", "tsr_1_seg31.csv"}

// Options configures a supervised model run.
type Options struct {
	// Dir is the run directory; the executable is started with it as its
	// working directory and the output files are watched inside it.
	Dir string

	// Executable is the model binary, resolved relative to Dir when not
	// absolute.
	Executable string

	// Outputs are the files whose writes count as activity. Defaults to
	// DefaultOutputs.
	Outputs []string

	// Grace is how long to wait before activity monitoring starts, giving
	// the model time to open its outputs. Defaults to 10s.
	Grace time.Duration

	// Stall is the quiet period after which the run is considered
	// complete. Defaults to 10s.
	Stall time.Duration

	// Timeout is the hard wall-clock limit for the whole run.
	Timeout time.Duration

	Log *zap.Logger
}

func (o *Options) defaults() {
	if len(o.Outputs) == 0 {
		o.Outputs = DefaultOutputs
	}
	if o.Grace <= 0 {
		o.Grace = 10 * time.Second
	}
	if o.Stall <= 0 {
		o.Stall = 10 * time.Second
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
}

// Run starts the model and blocks until it is deemed complete, stalls out,
// or hits the timeout. A stalled-then-killed run is a success; a timeout is
// an error.
func Run(ctx context.Context, opts Options) error {
	opts.defaults()
	log := opts.Log

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	exe := opts.Executable
	if !filepath.IsAbs(exe) {
		exe = filepath.Join(opts.Dir, exe)
	}
	cmd := exec.CommandContext(ctx, exe)
	cmd.Dir = opts.Dir

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", opts.Dir, err)
	}

	watched := make(map[string]bool, len(opts.Outputs))
	for _, name := range opts.Outputs {
		watched[name] = true
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", exe, err)
	}
	log.Info("model started", zap.String("executable", exe), zap.String("dir", opts.Dir))

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	// Let the model open its outputs before judging activity.
	select {
	case <-time.After(opts.Grace):
	case err := <-exited:
		return exitResult(ctx, err, log)
	}

	stall := time.NewTimer(opts.Stall)
	defer stall.Stop()

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if !watched[filepath.Base(ev.Name)] {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				if !stall.Stop() {
					select {
					case <-stall.C:
					default:
					}
				}
				stall.Reset(opts.Stall)
			}

		case err, ok := <-watcher.Errors:
			if ok && err != nil {
				log.Warn("watcher error", zap.Error(err))
			}

		case <-stall.C:
			log.Info("output activity ceased, stopping model",
				zap.Duration("stall", opts.Stall))
			_ = cmd.Process.Kill()
			<-exited
			return nil

		case err := <-exited:
			return exitResult(ctx, err, log)
		}
	}
}

// exitResult classifies a process exit: a context deadline is a timeout
// error, anything else follows the exit status.
func exitResult(ctx context.Context, waitErr error, log *zap.Logger) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("model run timed out: %w", ctx.Err())
	}
	if waitErr != nil {
		return fmt.Errorf("model exited: %w", waitErr)
	}
	log.Info("model exited cleanly")
	return nil
}
