// Package jobs runs the periodic background work: draining the
// notification outbox and expiring overdue signature requests.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agencydesk/agency-api/internal/services"
)

const dispatchBatchSize = 200

// Worker owns the ticker loop. One instance runs per process; a tick that
// fails logs and waits for the next tick rather than crashing the loop.
type Worker struct {
	notifService *services.NotificationService
	sigService   *services.SignatureService
	interval     time.Duration
	logger       *zap.Logger
}

// NewWorker creates a new Worker
func NewWorker(notifService *services.NotificationService, sigService *services.SignatureService, interval time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		notifService: notifService,
		sigService:   sigService,
		interval:     interval,
		logger:       logger,
	}
}

// Run blocks until the context is cancelled. Call it in its own goroutine.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("background worker started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("background worker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one pass of every job. Exported so tests and the startup path
// can run a pass synchronously.
func (w *Worker) Tick(ctx context.Context) {
	expired, err := w.sigService.ExpireOverdue(time.Now())
	if err != nil {
		w.logger.Error("signature expiry sweep failed", zap.Error(err))
	} else if expired > 0 {
		w.logger.Info("expired overdue signature requests", zap.Int("count", expired))
	}

	dispatched, err := w.notifService.DispatchPending(ctx, dispatchBatchSize)
	if err != nil {
		w.logger.Error("notification dispatch failed", zap.Error(err))
	} else if dispatched > 0 {
		w.logger.Debug("dispatched notifications", zap.Int("count", dispatched))
	}
}
