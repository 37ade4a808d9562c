package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersync-dev/ledgersync/internal/model"
)

func TestFormatSerial(t *testing.T) {
	assert.Equal(t, "BMO0798_12", FormatSerial("BMO0798", 12))
}

func TestParseSerial(t *testing.T) {
	account, idx, err := ParseSerial("BMO0798_12")
	require.NoError(t, err)
	assert.Equal(t, "BMO0798", account)
	assert.Equal(t, 12, idx)

	// Last underscore wins.
	account, idx, err = ParseSerial("RBC_legacy_3")
	require.NoError(t, err)
	assert.Equal(t, "RBC_legacy", account)
	assert.Equal(t, 3, idx)
}

func TestParseSerial_Invalid(t *testing.T) {
	for _, serial := range []string{"", "BMO0798", "_5", "BMO0798_x"} {
		_, _, err := ParseSerial(serial)
		assert.Error(t, err, serial)
	}
}

func TestAccountID(t *testing.T) {
	assert.Equal(t, "BMO0798", AccountID(model.BankBMO, "00040-12340798"))
	assert.Equal(t, "RBC4402", AccountID(model.BankRBC, "4402"))
	assert.Equal(t, "CIBC0042", AccountID(model.BankCIBC, "42"))
}

func TestAccountFromSheet(t *testing.T) {
	assert.Equal(t, "BMO0798", AccountFromSheet("BMO CAD 0798 operating", model.BankBMO))
	assert.Equal(t, "RBC4402", AccountFromSheet("Chequing 102 4402", model.BankRBC))
	assert.Equal(t, "CIBC_Savings", AccountFromSheet("Savings", model.BankCIBC))
}
