package worker

import (
	"context"
	"log/slog"
	"time"

	"finrag-orchestrator/internal/usecase"
)

const rebuildTimeout = 10 * time.Minute

// RebuildWorker runs keyword-index rebuilds in the background: on demand via
// Trigger, and optionally on a periodic ticker. Rebuilds never overlap; the
// trigger channel holds at most one pending request.
type RebuildWorker struct {
	rebuild  usecase.RebuildIndexUsecase
	interval time.Duration
	logger   *slog.Logger

	triggerChan chan struct{}
	stopChan    chan struct{}
	doneChan    chan struct{}
}

// NewRebuildWorker creates a worker. interval 0 disables periodic rebuilds;
// Trigger still works.
func NewRebuildWorker(rebuild usecase.RebuildIndexUsecase, interval time.Duration, logger *slog.Logger) *RebuildWorker {
	return &RebuildWorker{
		rebuild:     rebuild,
		interval:    interval,
		logger:      logger,
		triggerChan: make(chan struct{}, 1),
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

func (w *RebuildWorker) Start() {
	w.logger.Info("rebuild_worker_started", slog.Duration("interval", w.interval))
	go w.run()
}

func (w *RebuildWorker) Stop() {
	w.logger.Info("rebuild_worker_stopping")
	close(w.stopChan)
	<-w.doneChan
}

// Trigger queues a rebuild. It reports false when one is already pending.
func (w *RebuildWorker) Trigger() bool {
	select {
	case w.triggerChan <- struct{}{}:
		return true
	default:
		return false
	}
}

func (w *RebuildWorker) run() {
	defer close(w.doneChan)

	var tickerChan <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tickerChan = ticker.C
	}

	for {
		select {
		case <-w.stopChan:
			return
		case <-w.triggerChan:
			w.runRebuild()
		case <-tickerChan:
			w.runRebuild()
		}
	}
}

func (w *RebuildWorker) runRebuild() {
	ctx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
	defer cancel()

	if err := w.rebuild.Execute(ctx); err != nil {
		w.logger.Error("keyword_index_rebuild_failed", slog.String("error", err.Error()))
	}
}
