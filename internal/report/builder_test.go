package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var testPeriod = model.Period{Year: 2025, Month: 1}

func testClosing() Closing {
	return Closing{
		Evidence: "data:image/png;base64,abc",
		Delivery: model.Delivery{Method: model.DeliveryBankDeposit, Receiver: "op 1234"},
	}
}

func incomeTx(id, amount string) model.Transaction {
	return model.Transaction{
		ID:       id,
		Date:     model.NewDate(2025, 1, 12),
		BranchID: "anexo-norte",
		Kind:     model.KindTithe,
		Amount:   dec(amount),
		Witness:  "Hna. Rosa",
	}
}

func expenseTx(id, amount, desc string) model.Transaction {
	return model.Transaction{
		ID:          id,
		Date:        model.NewDate(2025, 1, 20),
		BranchID:    "anexo-norte",
		Kind:        model.KindExpense,
		Amount:      dec(amount),
		Description: desc,
	}
}

func TestBuild_Totals(t *testing.T) {
	txns := []model.Transaction{
		incomeTx("t1", "100.00"),
		incomeTx("t2", "50.00"),
		expenseTx("t3", "30.00", "limpieza"),
	}

	r, warnings, err := Build("anexo-norte", testPeriod, txns, testClosing())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, r.IncomeTotal.Equal(dec("150")), "income %s", r.IncomeTotal)
	assert.True(t, r.ExpenseTotal.Equal(dec("30")), "expense %s", r.ExpenseTotal)
	assert.True(t, r.Net.Equal(dec("120")), "net %s", r.Net)
	assert.Equal(t, model.ReportPending, r.Status)
	require.Len(t, r.ExpenseDetails, 1)
	assert.Equal(t, "limpieza", r.ExpenseDetails[0].Description)
}

func TestBuild_OrderIndependent(t *testing.T) {
	a := []model.Transaction{incomeTx("t1", "100.00"), incomeTx("t2", "50.00"), expenseTx("t3", "30.00", "d")}
	b := []model.Transaction{expenseTx("t3", "30.00", "d"), incomeTx("t2", "50.00"), incomeTx("t1", "100.00")}

	ra, _, err := Build("anexo-norte", testPeriod, a, testClosing())
	require.NoError(t, err)
	rb, _, err := Build("anexo-norte", testPeriod, b, testClosing())
	require.NoError(t, err)
	assert.True(t, ra.Net.Equal(rb.Net))
	assert.True(t, ra.IncomeTotal.Equal(rb.IncomeTotal))
	assert.True(t, ra.ExpenseTotal.Equal(rb.ExpenseTotal))
}

func TestBuild_MissingClosingEvidence(t *testing.T) {
	c := testClosing()
	c.Evidence = ""
	_, _, err := Build("anexo-norte", testPeriod, nil, c)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "evidence", verr.Field)
}

func TestBuild_MissingDeliveryReceiver(t *testing.T) {
	c := testClosing()
	c.Delivery.Receiver = ""
	_, _, err := Build("anexo-norte", testPeriod, nil, c)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "delivery_receiver", verr.Field)
}

func TestBuild_FiltersByBranchAndLiteralDate(t *testing.T) {
	other := incomeTx("o1", "500.00")
	other.BranchID = "anexo-sur"
	nextMonth := incomeTx("o2", "700.00")
	nextMonth.Date = model.NewDate(2025, 2, 1)
	lastDay := incomeTx("t9", "10.00")
	lastDay.Date = model.NewDate(2025, 1, 31)

	txns := []model.Transaction{other, nextMonth, lastDay}
	r, _, err := Build("anexo-norte", testPeriod, txns, testClosing())
	require.NoError(t, err)
	assert.True(t, r.IncomeTotal.Equal(dec("10")), "only the in-branch, in-period boundary day counts; got %s", r.IncomeTotal)
}

func TestBuild_ZeroAmountWarnsNotFails(t *testing.T) {
	bad := expenseTx("t1", "0", "gasto sin monto")
	r, warnings, err := Build("anexo-norte", testPeriod, []model.Transaction{bad, incomeTx("t2", "40.00")}, testClosing())
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.True(t, r.ExpenseTotal.IsZero())
	assert.True(t, r.Net.Equal(dec("40")))
}

func TestBuild_EmptyPeriodWarnsNotFails(t *testing.T) {
	r, warnings, err := Build("anexo-norte", testPeriod, nil, testClosing())
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
	assert.True(t, r.Net.IsZero())
}

func TestBuild_ExpenseDetailPlaceholder(t *testing.T) {
	r, _, err := Build("anexo-norte", testPeriod, []model.Transaction{expenseTx("t1", "15.00", "")}, testClosing())
	require.NoError(t, err)
	require.Len(t, r.ExpenseDetails, 1)
	assert.Equal(t, NoDescription, r.ExpenseDetails[0].Description)
}

func TestExpenseBreakdown(t *testing.T) {
	txns := []model.Transaction{
		incomeTx("t1", "100.00"),
		expenseTx("t2", "30.00", "limpieza"),
		expenseTx("t3", "15.00", ""),
	}

	details := ExpenseBreakdown(txns)
	require.Len(t, details, 2)
	assert.Equal(t, "t2", details[0].TransactionID)
	assert.Equal(t, "limpieza", details[0].Description)
	assert.Equal(t, NoDescription, details[1].Description)
	assert.True(t, details[1].Amount.Equal(dec("15")))
}

func TestRecompute_NeverTrustsStoredNet(t *testing.T) {
	r := model.MonthlyReport{IncomeTotal: dec("100"), ExpenseTotal: dec("40"), Net: dec("999")}
	assert.True(t, Recompute(r).Equal(dec("60")))
}
