package cli

import (
	"context"
	"fmt"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

const auditPageSize = 20

// Audit prints the most recent change-tracking entries, newest first.
func (a *App) Audit(ctx context.Context) error {
	entries, err := a.client.ListAudit(ctx, auditPageSize)
	if err != nil {
		printlnFn(common.UserMessage(err))
		return err
	}
	if len(entries) == 0 {
		printlnFn("No activity recorded yet.")
		return nil
	}
	for _, e := range entries {
		printlnFn(fmt.Sprintf("  %s  %-18s %-8s %-12s by %s", e.At, e.Collection, e.Action, e.RecordID, e.UserEmail))
	}
	return nil
}
