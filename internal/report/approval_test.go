package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// fakeStore keeps reports in memory.
type fakeStore struct {
	reports []model.MonthlyReport
}

func (f *fakeStore) ReportsByPeriod(p model.Period) ([]model.MonthlyReport, error) {
	var out []model.MonthlyReport
	for _, r := range f.reports {
		if r.Period == p {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) AddMonthlyReport(r model.MonthlyReport) error {
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeStore) UpdateMonthlyReport(id string, fields Update) error {
	for i := range f.reports {
		if f.reports[i].ID != id {
			continue
		}
		if fields.Status != nil {
			f.reports[i].Status = *fields.Status
		}
		if fields.Evidence != nil {
			f.reports[i].Evidence = *fields.Evidence
		}
		if fields.Delivery != nil {
			f.reports[i].Delivery = *fields.Delivery
		}
	}
	return nil
}

var (
	supervisor = model.Actor{Name: "Hno. Elías", Role: model.RoleSupervisor}
	branchTres = model.Actor{Name: "Hna. Marta", Role: model.RoleTreasurer, BranchID: "anexo-norte"}
)

func sampleReport(branch string) model.MonthlyReport {
	return model.MonthlyReport{
		ID:           "RPT-2025-01-" + branch,
		BranchID:     branch,
		Period:       testPeriod,
		IncomeTotal:  dec("150"),
		ExpenseTotal: dec("30"),
		Status:       model.ReportPending,
		Evidence:     "data:abc",
		Delivery:     model.Delivery{Method: model.DeliveryTransfer, Receiver: "op 99"},
	}
}

func TestSubmit(t *testing.T) {
	store := &fakeStore{}
	w := NewWorkflow(store, nil)

	require.NoError(t, w.Submit(branchTres, sampleReport("anexo-norte")))
	require.Len(t, store.reports, 1)
	assert.Equal(t, model.ReportSubmitted, store.reports[0].Status)
	assert.True(t, store.reports[0].Net.Equal(dec("120")), "net recomputed on submit")
}

func TestSubmit_DuplicateBlocked(t *testing.T) {
	store := &fakeStore{}
	w := NewWorkflow(store, nil)
	require.NoError(t, w.Submit(branchTres, sampleReport("anexo-norte")))

	second := sampleReport("anexo-norte")
	second.IncomeTotal = dec("999")
	err := w.Submit(branchTres, second)
	var gb *model.GuardBlocked
	require.ErrorAs(t, err, &gb)

	// The existing report is unchanged and no duplicate was written.
	require.Len(t, store.reports, 1)
	assert.True(t, store.reports[0].IncomeTotal.Equal(dec("150")))
}

func TestSubmit_AfterAcceptBlocked(t *testing.T) {
	store := &fakeStore{}
	w := NewWorkflow(store, nil)
	require.NoError(t, w.Submit(branchTres, sampleReport("anexo-norte")))
	require.NoError(t, w.Accept(supervisor, "anexo-norte", testPeriod))

	// An accepted period cannot be re-submitted: the natural-key id would
	// collide with the accepted row and wedge the lifecycle.
	err := w.Submit(branchTres, sampleReport("anexo-norte"))
	var gb *model.GuardBlocked
	require.ErrorAs(t, err, &gb)

	require.Len(t, store.reports, 1, "no second row with the same id")
	assert.Equal(t, model.ReportAccepted, store.reports[0].Status)
}

func TestSubmit_OtherBranchSamePeriodAllowed(t *testing.T) {
	store := &fakeStore{}
	w := NewWorkflow(store, nil)
	require.NoError(t, w.Submit(branchTres, sampleReport("anexo-norte")))
	require.NoError(t, w.Submit(branchTres, sampleReport("anexo-sur")))
	assert.Len(t, store.reports, 2)
}

func TestAccept(t *testing.T) {
	store := &fakeStore{}
	w := NewWorkflow(store, nil)
	require.NoError(t, w.Submit(branchTres, sampleReport("anexo-norte")))

	require.NoError(t, w.Accept(supervisor, "anexo-norte", testPeriod))
	assert.Equal(t, model.ReportAccepted, store.reports[0].Status)
}

func TestAccept_RequiresSupervisingRole(t *testing.T) {
	store := &fakeStore{}
	w := NewWorkflow(store, nil)
	require.NoError(t, w.Submit(branchTres, sampleReport("anexo-norte")))

	for _, actor := range []model.Actor{branchTres, {Role: model.RolePastor}} {
		err := w.Accept(actor, "anexo-norte", testPeriod)
		var gb *model.GuardBlocked
		require.ErrorAs(t, err, &gb)
	}
	assert.Equal(t, model.ReportSubmitted, store.reports[0].Status)
}

func TestAccept_Monotonic(t *testing.T) {
	store := &fakeStore{}
	w := NewWorkflow(store, nil)
	require.NoError(t, w.Submit(branchTres, sampleReport("anexo-norte")))
	require.NoError(t, w.Accept(supervisor, "anexo-norte", testPeriod))

	// Accepting again is refused; there is no reverse transition either.
	err := w.Accept(supervisor, "anexo-norte", testPeriod)
	var gb *model.GuardBlocked
	require.ErrorAs(t, err, &gb)
	assert.Equal(t, model.ReportAccepted, store.reports[0].Status)
}

func TestAccept_NoReport(t *testing.T) {
	w := NewWorkflow(&fakeStore{}, nil)
	err := w.Accept(supervisor, "anexo-norte", testPeriod)
	var gb *model.GuardBlocked
	require.ErrorAs(t, err, &gb)
}
