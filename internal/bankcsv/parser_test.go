package bankcsv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const creditHeader = "Card,Transaction Date,Post Date,Description,Category,Type,Amount,Memo"
const checkingHeader = "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #"

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   Format
	}{
		{"credit card export", creditHeader, FormatCredit},
		{"checking export", checkingHeader, FormatChecking},
		{"unknown layout", "Date,Payee,Amount,Notes", FormatGeneric},
		{"credit tokens case-insensitive", "CARD,TRANSACTION DATE,Post Date,Description,Category,Type,Amount,Memo", FormatCredit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.header))
		})
	}
}

func TestParseCreditFormat(t *testing.T) {
	text := creditHeader + "\n" +
		"1234,01/15/2025,01/16/2025,\"RENT PAYMENT - TENANT A\",Rental,Sale,2500.00,\n" +
		"1234,01/17/2025,01/18/2025,NETFLIX.COM,Entertainment,Sale,-15.49,"

	txns := NewParser().Parse(text, "2433")
	require.Len(t, txns, 2)

	// Sign is always forced negative for credit purchases.
	assert.Equal(t, -2500.00, txns[0].Amount)
	assert.Equal(t, -15.49, txns[1].Amount)
	assert.Equal(t, "RENT PAYMENT - TENANT A", txns[0].Description)
	assert.Equal(t, "2433", txns[0].Account)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), txns[0].Date)
}

func TestParseCreditSignAlwaysNonPositive(t *testing.T) {
	text := creditHeader + "\n" +
		"1234,02/01/2025,02/02/2025,STORE ONE,Shopping,Sale,42.17,\n" +
		"1234,02/01/2025,02/02/2025,STORE TWO,Shopping,Sale,-42.17,\n" +
		"1234,02/01/2025,02/02/2025,STORE THREE,Shopping,Sale,0.01,"

	for _, txn := range NewParser().Parse(text, "2433") {
		assert.LessOrEqual(t, txn.Amount, 0.0)
	}
}

func TestParseCheckingFormatPreservesSign(t *testing.T) {
	text := checkingHeader + "\n" +
		"DEBIT,03/02/2025,NETFLIX.COM,-15.49,ACH_DEBIT,\"1,204.33\",\n" +
		"CREDIT,03/03/2025,ZELLE PAYMENT FROM JACK SEVILLA,\"2,500.00\",ACH_CREDIT,3704.33,"

	txns := NewParser().Parse(text, "0111")
	require.Len(t, txns, 2)

	assert.Equal(t, -15.49, txns[0].Amount)
	assert.Equal(t, 2500.00, txns[1].Amount)
	require.NotNil(t, txns[0].Balance)
	assert.InDelta(t, 1204.33, *txns[0].Balance, 0.001)
	assert.Equal(t, "ACH_DEBIT", txns[0].Type)
}

func TestParseGenericFormat(t *testing.T) {
	text := "Date,Description,Amount,Extra\n" +
		"\"06/01/2024\",\"UNKNOWN MERCHANT XYZ\",\"-42.17\",note"

	txns := NewParser().Parse(text, "9999")
	require.Len(t, txns, 1)
	assert.Equal(t, "UNKNOWN MERCHANT XYZ", txns[0].Description)
	assert.Equal(t, -42.17, txns[0].Amount)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), txns[0].Date)
}

func TestGenericAmountScansFromLastField(t *testing.T) {
	// Amount sits in the final column; the middle columns do not parse.
	text := "Date,Description,Type,Amount\n" +
		"06/01/2024,COFFEE SHOP,POS,$1,250.00"

	txns := NewParser().Parse(text, "9999")
	require.Len(t, txns, 1)
	assert.Equal(t, 250.00, txns[0].Amount) // quoted thousands not used here; last parsable field wins
}

func TestQuotedCommasAreNotSplit(t *testing.T) {
	text := checkingHeader + "\n" +
		"DEBIT,03/02/2025,\"ACME, INC. MONTHLY\",-99.00,ACH_DEBIT,100.00,"

	txns := NewParser().Parse(text, "7588")
	require.Len(t, txns, 1)
	assert.Equal(t, "ACME, INC. MONTHLY", txns[0].Description)
}

func TestZeroAmountRowsAreSkipped(t *testing.T) {
	text := checkingHeader + "\n" +
		"DEBIT,03/02/2025,PENDING MEMO LINE,0.00,MEMO,,\n" +
		"DEBIT,03/03/2025,REAL CHARGE,-10.00,ACH_DEBIT,,"

	txns := NewParser().Parse(text, "7588")
	require.Len(t, txns, 1)
	assert.Equal(t, "REAL CHARGE", txns[0].Description)
}

func TestMalformedRowsAreDropped(t *testing.T) {
	text := creditHeader + "\n" +
		"totally,broken\n" +
		"1234,01/15/2025,01/16/2025,GOOD ROW,Cat,Sale,-5.00,"

	txns := NewParser().Parse(text, "2433")
	require.Len(t, txns, 1)
	assert.Equal(t, "GOOD ROW", txns[0].Description)
}

func TestHeaderOnlyAndEmptyInput(t *testing.T) {
	p := NewParser()
	assert.Empty(t, p.Parse("", "1234"))
	assert.Empty(t, p.Parse(creditHeader, "1234"))
}

func TestUnparsableDateFallsBackToToday(t *testing.T) {
	fixed := time.Date(2025, 7, 4, 13, 30, 0, 0, time.UTC)
	p := &Parser{now: func() time.Time { return fixed }}

	text := checkingHeader + "\n" +
		"DEBIT,not-a-date,SOMETHING,-10.00,ACH_DEBIT,,"

	txns := p.Parse(text, "7588")
	require.Len(t, txns, 1)
	assert.Equal(t, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), txns[0].Date)
}
