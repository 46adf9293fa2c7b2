package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/k3rn3l808/swift_sim_backend/internal/apperrors"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
)

// schedulerTask is one running auto-progression goroutine. The registry keyed
// by transfer id guarantees at most one task per transfer.
type schedulerTask struct {
	cancel context.CancelFunc
}

// ProgressionScheduler drives transfers through the pipeline on the catalog
// delays. Each transfer gets its own goroutine that sleeps for the current
// stage's dwell time, re-reads the record and advances it. The re-read on
// every wake is what makes disabling auto-progression effective immediately.
type ProgressionScheduler struct {
	transferRepo portsrepo.TransferReader
	advancer     portssvc.TransferAutoAdvancer
	logger       *slog.Logger

	// DelayFor resolves the dwell time for a stage. Tests shrink it so that
	// pipelines drain in milliseconds.
	DelayFor func(domain.StageDefinition) time.Duration

	mu    sync.Mutex
	tasks map[string]*schedulerTask
	wg    sync.WaitGroup

	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// NewProgressionScheduler creates the per-transfer auto-progression scheduler.
func NewProgressionScheduler(transferRepo portsrepo.TransferReader, advancer portssvc.TransferAutoAdvancer, logger *slog.Logger) *ProgressionScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &ProgressionScheduler{
		transferRepo: transferRepo,
		advancer:     advancer,
		logger:       logger,
		DelayFor:     func(def domain.StageDefinition) time.Duration { return def.Delay },
		tasks:        make(map[string]*schedulerTask),
		baseCtx:      baseCtx,
		baseCancel:   baseCancel,
	}
}

var _ portssvc.ProgressionScheduler = (*ProgressionScheduler)(nil)

// Start launches the auto-progression task for a transfer. If a task is
// already running for the same id it is cancelled and replaced, so repeated
// enables never stack duplicate goroutines.
func (p *ProgressionScheduler) Start(transferID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.baseCtx.Err() != nil {
		return
	}
	if existing, ok := p.tasks[transferID]; ok {
		existing.cancel()
	}

	ctx, cancel := context.WithCancel(p.baseCtx)
	task := &schedulerTask{cancel: cancel}
	p.tasks[transferID] = task

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.unregister(transferID, task)
		p.runLoop(ctx, transferID)
	}()
}

// Stop cancels the task for a transfer. It reports whether a task was running.
func (p *ProgressionScheduler) Stop(transferID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.tasks[transferID]
	if !ok {
		return false
	}
	task.cancel()
	delete(p.tasks, transferID)
	return true
}

// Shutdown cancels every task and waits for the goroutines to drain, bounded
// by the supplied context.
func (p *ProgressionScheduler) Shutdown(ctx context.Context) error {
	p.baseCancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// unregister removes the task from the registry unless a restart has already
// replaced it.
func (p *ProgressionScheduler) unregister(transferID string, task *schedulerTask) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tasks[transferID] == task {
		delete(p.tasks, transferID)
	}
}

// shouldContinue re-reads the transfer and decides whether the task keeps
// running. Progression stalls at the authorization stage until an officer
// advances it manually.
func (p *ProgressionScheduler) shouldContinue(ctx context.Context, transferID string) (*domain.Transfer, bool) {
	transfer, err := p.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && ctx.Err() == nil {
			p.logger.Error("Auto-progression read failed",
				slog.String("transfer_id", transferID),
				slog.String("error", err.Error()))
		}
		return nil, false
	}
	if transfer.Status.IsTerminal() || transfer.AtFinalStage() {
		return nil, false
	}
	if !transfer.AutoProgression {
		return nil, false
	}
	if def, ok := transfer.CurrentStageDefinition(); ok && def.Code == domain.StageAuthorization {
		return nil, false
	}
	return transfer, true
}

func (p *ProgressionScheduler) runLoop(ctx context.Context, transferID string) {
	for {
		transfer, ok := p.shouldContinue(ctx, transferID)
		if !ok {
			return
		}

		def, _ := transfer.CurrentStageDefinition()
		timer := time.NewTimer(p.DelayFor(def))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// Recheck after the sleep: an officer may have acted meanwhile.
		if _, ok := p.shouldContinue(ctx, transferID); !ok {
			return
		}

		if _, err := p.advancer.AutoAdvanceStage(ctx, transferID); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrConflict):
				// Concurrent write won the version race. Loop around and
				// re-evaluate from the fresh record.
				continue
			case errors.Is(err, apperrors.ErrTerminalStage), errors.Is(err, apperrors.ErrNotFound):
				return
			default:
				if ctx.Err() == nil {
					p.logger.Error("Auto-progression advance failed",
						slog.String("transfer_id", transferID),
						slog.String("error", err.Error()))
				}
				return
			}
		}
	}
}
