package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersync-dev/ledgersync/internal/logger"
	"github.com/ledgersync-dev/ledgersync/internal/model"
)

func cibcRows() [][]string {
	return [][]string{
		{"Transaction Summary"},
		{},
		{"Debit transactions"},
		{"Account", "Date", "Description", "Details", "Amount", "Bank Ref", "Client Ref"},
		{"00230014402", "2025-07-02", "PRE-AUTH PAYMENT", "HYDRO BILLING", "85.12", "B-771", "C-09"},
		{"00230014402", "2025-07-09", "CHEQUE 0042", "", "400.00", "", ""},
		{"Total debits", "", "", "", "485.12"},
		{},
		{"Credit transactions"},
		{"Account", "Date", "Description", "Details", "Amount", "Bank Ref", "Client Ref"},
		{"00230014402", "2025-07-10", "DEPOSIT", "BRANCH 102", "1200.00", "", ""},
		{"Total credits", "", "", "", "1200.00"},
	}
}

func TestCIBCParse_Sections(t *testing.T) {
	p := NewCIBCParser(logger.New())

	txns, err := p.Parse(cibcRows())
	require.NoError(t, err)
	require.Len(t, txns, 3)

	for _, txn := range txns {
		assert.Equal(t, "CIBC4402", txn.Account)
	}

	assert.Equal(t, model.DirectionDebit, txns[0].Direction())
	assert.True(t, txns[0].Debit.Equal(dec("85.12")))
	assert.Equal(t, "HYDRO BILLING", txns[0].Detail)
	assert.Equal(t, "B-771", txns[0].BankRef)
	assert.Equal(t, "C-09", txns[0].CustomerRef)

	assert.Equal(t, model.DirectionDebit, txns[1].Direction())

	// Direction flips with the section marker.
	assert.Equal(t, model.DirectionCredit, txns[2].Direction())
	assert.True(t, txns[2].Credit.Equal(dec("1200.00")))
}

func TestCIBCParse_RowsOutsideSectionsIgnored(t *testing.T) {
	rows := [][]string{
		{"00230014402", "2025-07-02", "BEFORE ANY MARKER", "", "10.00"},
		{"Debit transactions"},
		{"00230014402", "2025-07-03", "IN SECTION", "", "20.00"},
		{"Total"},
		{"00230014402", "2025-07-04", "AFTER TOTAL", "", "30.00"},
	}
	p := NewCIBCParser(logger.New())

	txns, err := p.Parse(rows)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "IN SECTION", txns[0].Description)
}

func TestCIBCParse_ZeroAmountRowsDropped(t *testing.T) {
	rows := [][]string{
		{"Credit transactions"},
		{"00230014402", "2025-07-03", "MEMO", "", "0.00"},
	}
	p := NewCIBCParser(logger.New())

	txns, err := p.Parse(rows)
	require.NoError(t, err)
	assert.Empty(t, txns)
}
