package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nest-egg/internal/common"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{name: "comma", sample: "date,value,description\n2024-01-01,10,x\n", want: ','},
		{name: "semicolon with decimal commas", sample: "Data;Valor;Descricao\n01/02/2024;1.234,56;Almoço\n02/02/2024;-12,50;Café\n", want: ';'},
		{name: "tab", sample: "date\tvalue\tmemo\n2024-01-01\t10\tx\n", want: '\t'},
		{name: "quoted commas do not count", sample: "a;b;c\n\"1,5\";\"2,5\";x\n", want: ';'},
		{name: "no delimiter defaults to comma", sample: "justonecolumn\n", want: ','},
		{name: "empty", sample: "", want: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniffDelimiter([]byte(tt.sample)))
		})
	}
}

func TestParseCSVWithAliases(t *testing.T) {
	data := []byte("\xEF\xBB\xBFTransaction Date,Amount,Memo\n\n2024-01-10,-35.00,Coffee beans\n2024-01-11,1200,Salary\n")

	rows, err := parseCSV(data, nil, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-10", rows[0].date)
	assert.Equal(t, "-35.00", rows[0].value)
	assert.Equal(t, "Coffee beans", rows[0].description)
	assert.Equal(t, 2, rows[0].line)
}

func TestParseCSVExplicitMapping(t *testing.T) {
	data := []byte("when;how much;what;extra\n01/02/2024;123,45;Lunch;ignored\n")

	rows, err := parseCSV(data, &ColumnMapping{Date: "when", Value: "how much", Description: "what"}, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "123,45", rows[0].value)
	assert.Equal(t, "Lunch", rows[0].description)
}

func TestParseCSVHeaderless(t *testing.T) {
	data := []byte("01/02/2024;123,45;Lunch\n02/02/2024;-10;Bus\n")
	mapping := &ColumnMapping{Date: "__col_0", Value: "__col_1", Description: "__col_2"}

	rows, err := parseCSV(data, mapping, true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bus", rows[1].description)
	assert.Equal(t, 2, rows[1].line)
	assert.True(t, isHeaderless(*mapping))
}

func TestParseCSVShortRowsYieldEmptyCells(t *testing.T) {
	rows, err := parseCSV([]byte("data,valor,descricao\n2024-01-01,10\n"), nil, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].description)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		mapping  *ColumnMapping
		noHeader bool
		message  string
	}{
		{name: "only blank lines", data: "\n\n", message: "no data"},
		{name: "header only", data: "data,valor,descricao\n", message: "no valid transactions"},
		{name: "unknown headers", data: "col1,col2\n1,2\n", message: "missing the expected columns"},
		{name: "headerless without mapping", data: "2024-01-01,10,x\n", noHeader: true, message: "manually"},
		{
			name:    "mapped column missing",
			data:    "a,b,c\n1,2,3\n",
			mapping: &ColumnMapping{Date: "a", Value: "b", Description: "z"},
			message: "not found",
		},
		{
			name:    "mapped column reused",
			data:    "a,b,c\n1,2,3\n",
			mapping: &ColumnMapping{Date: "a", Value: "a", Description: "c"},
			message: "different",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCSV([]byte(tt.data), tt.mapping, tt.noHeader)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
