package cli

import (
	"context"
	"fmt"
)

// QueueStatus prints how many local changes wait for the server.
func (a *App) QueueStatus(ctx context.Context) error {
	n, err := a.log.Len(ctx)
	if err != nil {
		printlnFn("Queue unavailable:", err.Error())
		return err
	}
	if n == 0 {
		printlnFn("All changes are synced.")
	} else {
		printlnFn(fmt.Sprintf("%d change(s) waiting to sync.", n))
	}
	return nil
}

// SyncNow forces a queue drain without waiting for the connectivity watcher.
func (a *App) SyncNow(ctx context.Context) error {
	a.syncer.Drain(ctx)
	return a.QueueStatus(ctx)
}
