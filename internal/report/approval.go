package report

import (
	"fmt"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/notify"
)

// Update is a partial report mutation; nil fields are left untouched.
type Update struct {
	Status   *model.ReportStatus
	Evidence *string
	Delivery *model.Delivery
}

// Store persists monthly reports (external collaborator).
type Store interface {
	ReportsByPeriod(p model.Period) ([]model.MonthlyReport, error)
	AddMonthlyReport(r model.MonthlyReport) error
	UpdateMonthlyReport(id string, fields Update) error
}

// Workflow governs the report lifecycle: PENDING -> SUBMITTED -> ACCEPTED,
// with no reverse transition.
type Workflow struct {
	store    Store
	notifier notify.Notifier
}

// NewWorkflow creates a report approval workflow over a store.
func NewWorkflow(store Store, notifier notify.Notifier) *Workflow {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Workflow{store: store, notifier: notifier}
}

// Submit persists the report in SUBMITTED status. It is blocked, and the
// store left untouched, when a SUBMITTED or ACCEPTED report already exists
// for the same (branch, period) key. An accepted period can never be
// re-submitted: the natural-key id would collide with the accepted row and
// the lifecycle has no reverse transition. Resubmitting against the same
// guard state is safe.
func (w *Workflow) Submit(actor model.Actor, r model.MonthlyReport) error {
	existing, err := w.store.ReportsByPeriod(r.Period)
	if err != nil {
		return fmt.Errorf("checking existing reports: %w", err)
	}
	for _, e := range existing {
		if e.BranchID == r.BranchID && e.Status != model.ReportPending {
			return &model.GuardBlocked{
				Reason: fmt.Sprintf("a report for %s %s is already %s", r.BranchID, r.Period.Key(), e.Status),
			}
		}
	}

	r.Status = model.ReportSubmitted
	r.Net = Recompute(r)
	if err := w.store.AddMonthlyReport(r); err != nil {
		return fmt.Errorf("persisting report: %w", err)
	}
	w.notifier.Notify("report submitted: "+Summary(r), notify.Success)
	return nil
}

// Accept moves a SUBMITTED report to ACCEPTED. Only a supervising role may
// accept, and the transition is monotonic: anything not currently SUBMITTED
// is refused without mutation.
func (w *Workflow) Accept(actor model.Actor, branchID string, period model.Period) error {
	if !actor.Role.Supervising() {
		return &model.GuardBlocked{Reason: "only a supervising role may accept reports"}
	}

	reports, err := w.store.ReportsByPeriod(period)
	if err != nil {
		return fmt.Errorf("loading reports: %w", err)
	}
	for _, r := range reports {
		if r.BranchID != branchID {
			continue
		}
		if r.Status != model.ReportSubmitted {
			return &model.GuardBlocked{
				Reason: fmt.Sprintf("report for %s %s is %s, not SUBMITTED", branchID, period.Key(), r.Status),
			}
		}
		status := model.ReportAccepted
		if err := w.store.UpdateMonthlyReport(r.ID, Update{Status: &status}); err != nil {
			return fmt.Errorf("updating report: %w", err)
		}
		w.notifier.Notify("report accepted: "+Summary(r), notify.Success)
		return nil
	}
	return &model.GuardBlocked{Reason: fmt.Sprintf("no report for %s %s", branchID, period.Key())}
}
