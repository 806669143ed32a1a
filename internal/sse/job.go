package sse

import (
	"context"
	"sync"
	"time"

	"mailsage/internal/logger"
	"mailsage/internal/service"
)

// InboxRefreshJob periodically refreshes the inbox of every user with an
// open event stream. Refresh itself pushes inbox_refreshed or a notice.
type InboxRefreshJob struct {
	inbox      service.InboxService
	sseManager *SSEManager
	logger     *logger.Logger
	interval   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewInboxRefreshJob(
	inbox service.InboxService,
	sseManager *SSEManager,
	interval time.Duration,
	logger *logger.Logger,
) *InboxRefreshJob {
	ctx, cancel := context.WithCancel(context.Background())
	return &InboxRefreshJob{
		inbox:      inbox,
		sseManager: sseManager,
		logger:     logger.With("refresh"),
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// RunOnce refreshes every connected user once.
func (j *InboxRefreshJob) RunOnce() {
	users := j.sseManager.ConnectedUsers()
	if len(users) == 0 {
		return
	}
	j.logger.Debug("Refreshing inbox for", len(users), "connected users")

	for _, userID := range users {
		if j.ctx.Err() != nil {
			return
		}
		// The stream may have closed while earlier users were refreshing.
		if !j.sseManager.HasUserConnection(userID) {
			continue
		}
		if _, err := j.inbox.Refresh(j.ctx, userID); err != nil {
			j.logger.Warn("Refresh failed for user", userID, ":", err)
		}
	}
}

// Start runs the job in the background until Stop is called.
func (j *InboxRefreshJob) Start() {
	j.logger.Info("Starting inbox refresh job with interval:", j.interval.String())

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.RunOnce()
			case <-j.ctx.Done():
				j.logger.Info("Inbox refresh job stopped")
				return
			}
		}
	}()
}

// Stop cancels the job and waits for an in-flight refresh to return.
func (j *InboxRefreshJob) Stop() {
	j.cancel()
	j.wg.Wait()
}
