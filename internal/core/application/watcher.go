package application

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/swaplock/swapd/internal/core/domain"
	"github.com/swaplock/swapd/internal/core/ports"
)

// watcher keeps an eye on the phase clock of active escrows. It schedules a
// task at every upcoming phase boundary and periodically scans for escrows
// whose timelock fully expired. It is purely observational: funds only ever
// move through withdraw and recover.
type watcher struct {
	repoManager ports.RepoManager
	scheduler   ports.SchedulerService

	stopCh chan struct{}
}

func newWatcher(
	repoManager ports.RepoManager, scheduler ports.SchedulerService,
) *watcher {
	return &watcher{
		repoManager: repoManager,
		scheduler:   scheduler,
	}
}

func (w *watcher) start() error {
	w.stopCh = make(chan struct{}, 1)

	escrows, err := w.repoManager.Escrows().GetActiveEscrows(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load active escrows: %w", err)
	}
	for _, escrow := range escrows {
		w.watch(escrow)
	}

	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.logExpired()
			case <-w.stopCh:
				return
			}
		}
	}()

	return nil
}

func (w *watcher) stop() {
	if w.stopCh == nil {
		return
	}
	w.stopCh <- struct{}{}
	close(w.stopCh)
	w.stopCh = nil
}

// watch schedules one task per future phase boundary of the escrow. Boundaries
// already in the past are skipped; the scheduler refuses tasks in the past.
func (w *watcher) watch(escrow domain.Escrow) {
	for _, boundary := range escrow.Timelock.PhaseBoundaries() {
		if !w.scheduler.AfterNow(boundary) {
			continue
		}

		id, at := escrow.Id, boundary
		if err := w.scheduler.ScheduleTaskOnce(at, func() {
			w.logPhase(id)
		}); err != nil {
			log.WithError(err).Warnf("failed to schedule phase task for escrow %s", id)
		}
	}
}

func (w *watcher) logPhase(escrowId string) {
	escrow, err := w.repoManager.Escrows().GetEscrowWithId(context.Background(), escrowId)
	if err != nil {
		return
	}
	if !escrow.IsActive() {
		return
	}
	log.Debugf(
		"escrow %s entered %s", escrowId, escrow.Timelock.Phase(time.Now().Unix()),
	)
}

func (w *watcher) logExpired() {
	escrows, err := w.repoManager.Escrows().GetExpiredEscrows(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to scan for expired escrows")
		return
	}
	for _, escrow := range escrows {
		log.Debugf(
			"escrow %s is past its timelock expiration and can be recovered", escrow.Id,
		)
	}
}
