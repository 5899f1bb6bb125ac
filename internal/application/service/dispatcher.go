package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"vertextester/internal/application/common/logging"
	"vertextester/internal/application/common/slogger"
	"vertextester/internal/domain/errors/domain"
	"vertextester/internal/domain/valueobject"
	"vertextester/internal/port/outbound"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BatchRequest is one user command execution: the selected files and the
// directory every invocation writes into.
type BatchRequest struct {
	Files     []string
	OutputDir string
}

// InvocationError describes a failed invocation. ExitCode is -1 when the
// process could not be started.
type InvocationError struct {
	FilePath string
	ExitCode int
	Err      error
}

func (e *InvocationError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s: failed to launch: %v", e.FilePath, e.Err)
	}
	return fmt.Sprintf("%s: exited with status %d: %v", e.FilePath, e.ExitCode, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// BatchSummary aggregates a joined batch.
type BatchSummary struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	Failures  []*InvocationError
}

// Batch is the join handle of a dispatched batch.
type Batch struct {
	ID        string
	OutputDir string

	total     int
	submitted chan struct{}
	group     errgroup.Group
	succeeded atomic.Int64
	failed    atomic.Int64

	joinOnce sync.Once
	done     chan struct{}

	mu       sync.Mutex
	failures []*InvocationError
}

// Size returns the number of invocations in the batch.
func (b *Batch) Size() int { return b.total }

// Wait blocks until every invocation has completed and its notification was
// delivered, or until ctx is done. Returning early does not stop any process.
func (b *Batch) Wait(ctx context.Context) (BatchSummary, error) {
	select {
	case <-b.joined():
		return b.summary(), nil
	case <-ctx.Done():
		return b.summary(), ctx.Err()
	}
}

// joined returns a channel closed once every invocation has completed. A
// single joiner goroutine serves all Wait calls.
func (b *Batch) joined() <-chan struct{} {
	b.joinOnce.Do(func() {
		b.done = make(chan struct{})
		go func() {
			_ = b.group.Wait()
			close(b.done)
		}()
	})
	return b.done
}

func (b *Batch) summary() BatchSummary {
	b.mu.Lock()
	failures := append([]*InvocationError(nil), b.failures...)
	b.mu.Unlock()

	return BatchSummary{
		BatchID:   b.ID,
		Total:     b.total,
		Succeeded: int(b.succeeded.Load()),
		Failed:    int(b.failed.Load()),
		Failures:  failures,
	}
}

func (b *Batch) recordFailure(err *InvocationError) {
	b.failed.Add(1)
	b.mu.Lock()
	b.failures = append(b.failures, err)
	b.mu.Unlock()
}

// DispatcherOption customizes a BatchDispatcher.
type DispatcherOption func(*BatchDispatcher)

// WithDispatchMetrics sets the metrics recorder.
func WithDispatchMetrics(m *DispatchMetrics) DispatcherOption {
	return func(d *BatchDispatcher) { d.metrics = m }
}

// WithMkdirAll replaces os.MkdirAll for output directory creation.
func WithMkdirAll(fn func(path string, perm os.FileMode) error) DispatcherOption {
	return func(d *BatchDispatcher) { d.mkdirAll = fn }
}

// BatchDispatcher launches one independent external process per selected
// file. It imposes no concurrency limit and no ordering, never retries, and
// never cancels a launched process.
type BatchDispatcher struct {
	launcher    outbound.ProcessLauncher
	notifier    outbound.Notifier
	credentials outbound.CredentialSource
	script      []string
	metrics     *DispatchMetrics
	mkdirAll    func(path string, perm os.FileMode) error
	logger      logging.ApplicationLogger
}

// NewBatchDispatcher wires a dispatcher. script is the command prefix that
// precedes the three positional arguments of every invocation.
func NewBatchDispatcher(
	launcher outbound.ProcessLauncher,
	notifier outbound.Notifier,
	credentials outbound.CredentialSource,
	script []string,
	opts ...DispatcherOption,
) (*BatchDispatcher, error) {
	if launcher == nil {
		return nil, errors.New("process launcher cannot be nil")
	}
	if notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}
	if credentials == nil {
		return nil, errors.New("credential source cannot be nil")
	}
	if len(script) == 0 || script[0] == "" {
		return nil, errors.New("script command cannot be empty")
	}

	d := &BatchDispatcher{
		launcher:    launcher,
		notifier:    notifier,
		credentials: credentials,
		script:      append([]string(nil), script...),
		mkdirAll:    os.MkdirAll,
		logger:      slogger.WithComponent("batch-dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch checks the batch preconditions, then launches every invocation.
// A returned error means no process was spawned. Per-file failures are only
// reported through the notifier and the returned Batch.
func (d *BatchDispatcher) Dispatch(ctx context.Context, req BatchRequest) (*Batch, error) {
	if len(req.Files) == 0 {
		d.notifier.Warning("No files selected. Choose at least one source file to generate tests for.")
		d.metrics.RecordRejection(ctx, "empty_selection")
		return nil, domain.ErrEmptySelection
	}

	credential, err := d.credentials.Load(ctx)
	if err == nil && credential == "" {
		err = domain.ErrMissingCredential
	}
	if err != nil {
		d.notifier.Error(fmt.Sprintf("API key not found or empty: %v", err))
		d.metrics.RecordRejection(ctx, "credential")
		return nil, err
	}

	if err := d.mkdirAll(req.OutputDir, 0o750); err != nil {
		wrapped := fmt.Errorf("%w: %w", domain.ErrOutputDirectory, err)
		d.notifier.Error(fmt.Sprintf("Could not create output directory %s: %v", req.OutputDir, err))
		d.metrics.RecordRejection(ctx, "output_directory")
		return nil, wrapped
	}

	batch := &Batch{
		ID:        uuid.NewString(),
		OutputDir: req.OutputDir,
		total:     len(req.Files),
		submitted: make(chan struct{}),
	}
	ctx = logging.WithCorrelationID(ctx, batch.ID)

	d.logger.Info(ctx, "Dispatching batch", logging.Fields{
		"files":      len(req.Files),
		"output_dir": req.OutputDir,
		"script":     d.script[0],
	})

	for _, file := range req.Files {
		lang := valueobject.LanguageFromPath(file)
		d.notifier.Progress(fmt.Sprintf("Generating tests for %s (%s)...", filepath.Base(file), lang))

		inv := outbound.Invocation{
			Script:     d.script,
			FilePath:   file,
			OutputDir:  req.OutputDir,
			Credential: credential,
		}
		started := time.Now()
		handle, launchErr := d.launcher.Launch(inv)
		d.metrics.RecordLaunch(ctx, lang.Name())

		batch.group.Go(func() error {
			<-batch.submitted
			d.complete(ctx, batch, file, lang, handle, launchErr, started)
			return nil
		})
	}
	close(batch.submitted)

	return batch, nil
}

func (d *BatchDispatcher) complete(
	ctx context.Context,
	batch *Batch,
	file string,
	lang valueobject.Language,
	handle outbound.ProcessHandle,
	launchErr error,
	started time.Time,
) {
	name := filepath.Base(file)
	fields := logging.Fields{"file": file, "language": lang.Name()}

	if launchErr != nil {
		batch.recordFailure(&InvocationError{FilePath: file, ExitCode: -1, Err: launchErr})
		d.logger.ErrorWithError(ctx, launchErr, "Failed to launch test generation process", fields)
		d.notifier.Error(fmt.Sprintf("Failed to generate tests for %s (%s): %v", name, lang, launchErr))
		d.metrics.RecordResult(ctx, lang.Name(), ResultLaunchFailure, time.Since(started))
		return
	}

	result, err := handle.Wait()
	if err == nil && result != nil && result.ExitCode != 0 {
		err = fmt.Errorf("exit status %d", result.ExitCode)
	}
	elapsed := time.Since(started)
	exitCode := -1
	if result != nil {
		exitCode = result.ExitCode
		fields["exit_code"] = result.ExitCode
		fields["stdout"] = result.Stdout
		fields["stderr"] = result.Stderr
		if result.Duration > 0 {
			elapsed = result.Duration
		}
	}
	fields["duration"] = elapsed.String()

	if err != nil {
		batch.recordFailure(&InvocationError{FilePath: file, ExitCode: exitCode, Err: err})
		d.logger.ErrorWithError(ctx, err, "Test generation process failed", fields)
		d.notifier.Error(fmt.Sprintf("Failed to generate tests for %s (%s): %v", name, lang, err))
		d.metrics.RecordResult(ctx, lang.Name(), ResultExitFailure, elapsed)
		return
	}

	batch.succeeded.Add(1)
	d.logger.Info(ctx, "Test generation process completed", fields)
	d.notifier.Success(fmt.Sprintf("Tests generated for %s (%s)", name, lang))
	d.metrics.RecordResult(ctx, lang.Name(), ResultSuccess, elapsed)
}
