// Package ofx parses OFX/QFX statement files into transactions.
package ofx

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/harborstreet/tally/internal/model"
)

// Parser reads OFX/QFX statement downloads. Bank statements keep the
// signed amounts the institution reported; credit card statements are
// normalized so charges are always negative, matching the CSV path.
type Parser struct{}

// NewParser creates an OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads all bank and credit card statements in the file and
// returns their transactions. A statement without a transaction list is
// skipped rather than treated as an error.
func (p *Parser) Parse(reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var txns []model.Transaction
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		account := lastFour(string(stmt.BankAcctFrom.AcctID))
		for _, ofxTxn := range stmt.BankTranList.Transactions {
			txns = append(txns, p.convert(ofxTxn, account, false))
		}
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		account := lastFour(string(stmt.CCAcctFrom.AcctID))
		for _, ofxTxn := range stmt.BankTranList.Transactions {
			txns = append(txns, p.convert(ofxTxn, account, true))
		}
	}
	return txns, nil
}

// Accounts returns the distinct account identifiers (last four digits)
// present in the file, in encounter order.
func (p *Parser) Accounts(reader io.Reader) ([]string, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var accounts []string
	seen := make(map[string]bool)
	add := func(id string) {
		acct := lastFour(id)
		if acct != "" && !seen[acct] {
			seen[acct] = true
			accounts = append(accounts, acct)
		}
	}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}
	return accounts, nil
}

func (p *Parser) convert(ofxTxn ofxgo.Transaction, account string, creditCard bool) model.Transaction {
	amount, _ := ofxTxn.TrnAmt.Float64()
	if creditCard && amount > 0 {
		amount = -math.Abs(amount)
	}

	return model.Transaction{
		Date:        ofxTxn.DtPosted.Time,
		Description: describeTransaction(ofxTxn),
		Account:     account,
		Amount:      amount,
		Type:        fmt.Sprintf("%v", ofxTxn.TrnType),
	}
}

// describeTransaction builds the narrative for a transaction, preferring
// the payee name when the institution provides one.
func describeTransaction(txn ofxgo.Transaction) string {
	if txn.Payee != nil && txn.Payee.Name != "" {
		return string(txn.Payee.Name)
	}

	name := strings.TrimSpace(string(txn.Name))
	if txn.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(txn.Memo))
	}

	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	// Strip a leading "MM/DD " stamp some banks prepend.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	if name == "" {
		return "No Description"
	}
	return name
}

var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// isGenericDescription reports whether a name carries no merchant signal.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// lastFour reduces a full account number to the four trailing digits the
// rest of the system keys on.
func lastFour(acctID string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, acctID)
	if len(digits) > 4 {
		return digits[len(digits)-4:]
	}
	return digits
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRegex  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes formatting problems common in real statement
// downloads before handing the content to the OFX parser.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Mixed-case SEVERITY values must be uppercased for the parser.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket on a bare tag.
	content = openTagRegex.ReplaceAllString(content, "$1>")

	return content
}
