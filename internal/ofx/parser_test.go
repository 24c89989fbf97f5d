package ofx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

// Loosely formed statement that ofxgo rejects: no header, inline closing tags.
const looseOFX = `
<OFX>
  <BANKTRANLIST>
    <STMTTRN>
      <DTPOSTED>20240101
      <TRNAMT>-50.00
      <MEMO>Mercado</MEMO>
    </STMTTRN>
    <STMTTRN>
      <DTPOSTED>20240105000000[-3:BRT]
      <TRNAMT>1500,00
      <NAME>Salario</NAME>
    </STMTTRN>
    <STMTTRN>
      <DTPOSTED>bad
      <TRNAMT>-1.00
    </STMTTRN>
  </BANKTRANLIST>
</OFX>
`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "loose statement falls back to tag scanner",
			ofxData:       looseOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			entries, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.expectedCount)
		})
	}
}

func TestParseFileEmptyReturnsSentinel(t *testing.T) {
	_, err := NewParser().ParseFile(context.Background(), strings.NewReader("  \n"))
	assert.True(t, errors.Is(err, ErrNoTransactions))
}

func TestParseBankEntries(t *testing.T) {
	entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0]
	assert.Equal(t, "2024011501", first.FITID)
	assert.Equal(t, "STARBUCKS STORE #1234", first.Description)
	assert.InDelta(t, -25.50, first.Amount, 0.001)
	assert.Equal(t, "1234567890", first.AccountID)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), first.Date)

	assert.Equal(t, "Whole Foods Market", entries[1].Description)
	assert.InDelta(t, -125.00, entries[1].Amount, 0.001)
	assert.Equal(t, "CHECK #1234", entries[2].Description)
	assert.InDelta(t, -500.00, entries[2].Amount, 0.001)
}

func TestParseCreditCardEntries(t *testing.T) {
	entries, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "CC2024011001", entries[0].FITID)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", entries[0].Description)
	assert.InDelta(t, -45.99, entries[0].Amount, 0.001)
	assert.Equal(t, "4111111111111111", entries[0].AccountID)
	assert.Equal(t, "NETFLIX.COM", entries[1].Description)
}

func TestScanTags(t *testing.T) {
	entries := NewParser().scanTags(looseOFX)
	require.Len(t, entries, 2)

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.InDelta(t, -50, entries[0].Amount, 0.001)
	assert.Equal(t, "Mercado", entries[0].Description)

	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), entries[1].Date)
	assert.InDelta(t, 1500, entries[1].Amount, 0.001)
	assert.Equal(t, "Salario", entries[1].Description)
}

func TestExtractDescription(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "memo wins over name",
			tx:       ofxgo.Transaction{Name: "PIX", Memo: "Padaria Central"},
			expected: "Padaria Central",
		},
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove card purchase prefix",
			tx:       ofxgo.Transaction{Name: "COMPRA CARTAO Supermercado"},
			expected: "Supermercado",
		},
		{
			name:     "strip leading date stamp",
			tx:       ofxgo.Transaction{Name: "12/03 FARMACIA"},
			expected: "FARMACIA",
		},
		{
			name:     "payee as last resort",
			tx:       ofxgo.Transaction{Payee: &ofxgo.Payee{Name: "Landlord"}},
			expected: "Landlord",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.extractDescription(tt.tx))
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	got := NewParser().preprocessOFX("\ufeff\n\n<SEVERITY>Info</SEVERITY>\n<BANKTRANLIST\n")
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<BANKTRANLIST>\n", got)
}
