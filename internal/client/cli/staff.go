package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/models"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/syncer"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/common"
)

// AddStaff prompts for an employee and saves through the orchestrator.
func (a *App) AddStaff(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Employee name", os.Stdout)
	if err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, "Role", os.Stdout)
	if err != nil {
		return err
	}
	salary, err := GetFloat(a.reader, "Monthly salary", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	member := models.Staff{Name: name, Role: role, MonthlySalary: salary}
	out := <-a.syncer.Save(ctx, syncer.Request{
		Collection: common.CollectionStaff,
		Action:     models.ActionCreate,
		Fields:     member.Fields(),
	})
	return a.reportOutcome(out, "Employee saved.")
}

// ListStaff prints the staff roster with the payroll total.
func (a *App) ListStaff(ctx context.Context) error {
	recs, err := a.store.List(ctx, common.CollectionStaff)
	if err != nil {
		printlnFn(common.UserMessage(err))
		return err
	}

	items := make([]models.Staff, 0, len(recs))
	total := 0.0
	for _, r := range recs {
		s := models.StaffFromRecord(r)
		items = append(items, s)
		total += s.MonthlySalary
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	if len(items) == 0 {
		printlnFn("No staff yet.")
		return nil
	}
	for _, it := range items {
		printlnFn(fmt.Sprintf("  %-20s %-15s %10.2f", it.Name, it.Role, it.MonthlySalary))
	}
	printlnFn(fmt.Sprintf("  monthly payroll: %.2f", total))
	return nil
}
