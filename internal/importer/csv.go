package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

// headerlessPrefix names the columns of files without a header row: __col_0, __col_1, ...
const headerlessPrefix = "__col_"

// ColumnMapping names the CSV columns that hold date, value and description.
type ColumnMapping struct {
	Date        string
	Value       string
	Description string
}

func (m ColumnMapping) columns() []string {
	return []string{m.Date, m.Value, m.Description}
}

// headerAliases are matched case-insensitively when no mapping is given.
var headerAliases = map[string][]string{
	"date":        {"data", "date", "dt", "transaction date"},
	"value":       {"valor", "value", "amount", "vl"},
	"description": {"descricao", "descrição", "description", "memo", "history"},
}

// row is one parsed statement line.
type row struct {
	date        string
	value       string
	description string
	line        int
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sniffDelimiter picks the candidate that splits the first lines most consistently.
func sniffDelimiter(sample []byte) rune {
	text := strings.ReplaceAll(string(sample), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	// A truncated sample ends mid-line
	if len(lines) > 1 && !strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
		if len(nonEmpty) == 5 {
			break
		}
	}
	if len(nonEmpty) == 0 {
		return ','
	}

	best, bestScore := ',', 0
	for _, candidate := range []rune{',', ';', '\t'} {
		count := countOutsideQuotes(nonEmpty[0], candidate)
		if count == 0 {
			continue
		}
		consistent := true
		for _, l := range nonEmpty[1:] {
			if countOutsideQuotes(l, candidate) != count {
				consistent = false
				break
			}
		}
		score := count
		if consistent {
			score += 1000
		}
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best
}

func countOutsideQuotes(line string, delim rune) int {
	count, quoted := 0, false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == delim && !quoted:
			count++
		}
	}
	return count
}

// readRecords decodes the file into trimmed records, dropping blank lines.
func readRecords(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data[:min(len(data), 1024)])
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.NewValidationError("invalid CSV file: %v", err)
		}

		blank := true
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
			if record[i] != "" {
				blank = false
			}
		}
		if !blank {
			records = append(records, record)
		}
	}
	return records, nil
}

// parseCSV extracts statement rows. An explicit mapping wins over header aliases.
func parseCSV(data []byte, mapping *ColumnMapping, noHeader bool) ([]row, error) {
	records, err := readRecords(data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, common.NewValidationError("CSV file has no data")
	}

	var header []string
	dataRows := records
	if noHeader {
		header = make([]string, len(records[0]))
		for i := range header {
			header[i] = fmt.Sprintf("%s%d", headerlessPrefix, i)
		}
	} else {
		header = make([]string, len(records[0]))
		for i, h := range records[0] {
			if h == "" {
				h = fmt.Sprintf("col_%d", i)
			}
			header[i] = h
		}
		dataRows = records[1:]
	}
	if len(dataRows) == 0 {
		return nil, common.NewValidationError("no valid transactions found in the uploaded file")
	}

	resolved, err := resolveMapping(header, mapping, noHeader)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}
	cell := func(record []string, column string) string {
		if i := index[column]; i < len(record) {
			return record[i]
		}
		return ""
	}

	firstLine := 1
	if !noHeader {
		firstLine = 2
	}
	rows := make([]row, 0, len(dataRows))
	for i, record := range dataRows {
		rows = append(rows, row{
			date:        cell(record, resolved.Date),
			value:       cell(record, resolved.Value),
			description: cell(record, resolved.Description),
			line:        firstLine + i,
		})
	}
	return rows, nil
}

func resolveMapping(header []string, mapping *ColumnMapping, noHeader bool) (ColumnMapping, error) {
	if mapping != nil {
		present := make(map[string]bool, len(header))
		for _, h := range header {
			present[h] = true
		}
		used := make(map[string]bool, 3)
		for _, column := range mapping.columns() {
			if !present[column] {
				return ColumnMapping{}, common.NewValidationError("column %q not found in the CSV file", column)
			}
			if used[column] {
				return ColumnMapping{}, common.NewValidationError("date, value and description must use different CSV columns")
			}
			used[column] = true
		}
		return *mapping, nil
	}

	if noHeader {
		return ColumnMapping{}, common.NewValidationError("map the date, value and description columns manually for files without a header")
	}

	lower := make(map[string]string, len(header))
	for _, h := range header {
		key := strings.ToLower(h)
		if _, seen := lower[key]; !seen {
			lower[key] = h
		}
	}
	find := func(field string) (string, error) {
		for _, alias := range headerAliases[field] {
			if column, ok := lower[alias]; ok {
				return column, nil
			}
		}
		return "", common.NewValidationError("CSV file is missing the expected columns (date, value, description)")
	}

	var resolved ColumnMapping
	var err error
	if resolved.Date, err = find("date"); err != nil {
		return ColumnMapping{}, err
	}
	if resolved.Value, err = find("value"); err != nil {
		return ColumnMapping{}, err
	}
	if resolved.Description, err = find("description"); err != nil {
		return ColumnMapping{}, err
	}
	return resolved, nil
}

// toTransaction converts a row into a PENDING transaction for owner.
func (r row) toTransaction(ownerID string) (*model.Transaction, error) {
	date, err := ParseDate(r.date)
	if err != nil {
		return nil, err
	}
	value, kind, err := ParseAmount(r.value)
	if err != nil {
		return nil, err
	}
	return model.NewTransaction(ownerID, value, kind, date, r.description, "", "")
}

func isHeaderless(m ColumnMapping) bool {
	for _, column := range m.columns() {
		if !strings.HasPrefix(column, headerlessPrefix) {
			return false
		}
	}
	return true
}
