// Package ofx reads bank and credit-card statements in OFX/QFX format.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
)

// ErrNoTransactions is returned when a file holds no statement entries.
var ErrNoTransactions = errors.New("no transactions found in OFX file")

// Entry is one statement line. Amount keeps the OFX sign: negative for debits.
type Entry struct {
	Date        time.Time
	FITID       string
	AccountID   string
	Description string
	Amount      float64
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	tagRegex      = regexp.MustCompile(`<(/?)([A-Za-z0-9._]+)>([^<]*)`)
	digitsRegex   = regexp.MustCompile(`\d+`)
)

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Byte order mark and blank lines before the header
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML opening tags missing their closing bracket at end of line
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file and returns its statement entries in file order.
// Files that ofxgo rejects are read again with a plain tag scanner.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	processed := p.preprocessOFX(string(content))
	if processed == "" {
		return nil, ErrNoTransactions
	}

	entries, parseErr := p.parseStructured(processed)
	if parseErr == nil && len(entries) > 0 {
		return entries, nil
	}

	scanned := p.scanTags(processed)
	if len(scanned) == 0 {
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse OFX file: %w", parseErr)
		}
		return nil, ErrNoTransactions
	}

	slog.DebugContext(ctx, "Parsed OFX file with tag scanner",
		"entries", len(scanned),
		"ofxgo_error", parseErr)
	return scanned, nil
}

func (p *Parser) parseStructured(content string) ([]Entry, error) {
	resp, err := ofxgo.ParseResponse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			entries = append(entries, p.convertList(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			entries = append(entries, p.convertList(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	slog.Info("Parsed OFX file",
		"total_entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, accountID string) []Entry {
	if list == nil {
		return nil
	}
	entries := make([]Entry, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		entries = append(entries, p.convertTransaction(ofxTx, accountID))
	}
	return entries
}

// convertTransaction maps an ofxgo transaction to an Entry dated by its posting day.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) Entry {
	// TrnAmt is a big.Rat
	amount, _ := ofxTx.TrnAmt.Float64()

	posted := ofxTx.DtPosted.Time
	return Entry{
		Date:        time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		FITID:       string(ofxTx.FiTID),
		AccountID:   accountID,
		Description: p.extractDescription(ofxTx),
		Amount:      amount,
	}
}

// extractDescription prefers MEMO, then NAME, then the payee name.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	name := strings.TrimSpace(string(tx.Memo))
	if name == "" {
		name = strings.TrimSpace(string(tx.Name))
	}
	if name == "" && tx.Payee != nil {
		name = strings.TrimSpace(string(tx.Payee.Name))
	}
	return cleanDescription(name)
}

var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"COMPRA CARTAO ",
	"COMPRA NO DEBITO ",
	"PAGTO ",
}

func cleanDescription(name string) string {
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "DD/MM " date stamps
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return strings.TrimSpace(name)
}

// scanTags walks STMTTRN blocks without validating the document structure.
// Entries without a usable date or amount are skipped.
func (p *Parser) scanTags(content string) []Entry {
	var entries []Entry
	var current map[string]string

	for _, m := range tagRegex.FindAllStringSubmatch(content, -1) {
		closing, tag, text := m[1] == "/", strings.ToUpper(m[2]), strings.TrimSpace(m[3])
		switch {
		case tag == "STMTTRN" && !closing:
			current = map[string]string{}
		case tag == "STMTTRN" && closing:
			if entry, ok := buildEntry(current); ok {
				entries = append(entries, entry)
			}
			current = nil
		case current != nil && !closing:
			current[tag] = text
		}
	}
	return entries
}

func buildEntry(fields map[string]string) (Entry, bool) {
	if fields == nil {
		return Entry{}, false
	}
	date, err := parseTagDate(fields["DTPOSTED"])
	if err != nil {
		return Entry{}, false
	}
	amount, err := parseTagAmount(fields["TRNAMT"])
	if err != nil {
		return Entry{}, false
	}

	description := fields["MEMO"]
	if description == "" {
		description = fields["NAME"]
	}
	return Entry{
		Date:        date,
		FITID:       fields["FITID"],
		Description: cleanDescription(description),
		Amount:      amount,
	}, true
}

// parseTagDate reads the YYYYMMDD prefix of an OFX datetime such as 20240115120000[-3:BRT].
func parseTagDate(raw string) (time.Time, error) {
	digits := digitsRegex.FindString(raw)
	if len(digits) < 8 {
		return time.Time{}, fmt.Errorf("invalid OFX date %q", raw)
	}
	return time.Parse("20060102", digits[:8])
}

func parseTagAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	return strconv.ParseFloat(raw, 64)
}
