package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/apperrors"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	Draft  TransactionStatus = "DRAFT"
	Posted TransactionStatus = "POSTED"
	Void   TransactionStatus = "VOID"
)

// TransactionType classifies the business event a transaction records.
type TransactionType string

const (
	Journal  TransactionType = "JOURNAL"
	Payment  TransactionType = "PAYMENT"
	Receipt  TransactionType = "RECEIPT"
	Transfer TransactionType = "TRANSFER"
)

// EntryDirection indicates whether a line debits or credits its account.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// Opposite returns the mirrored direction, used when building reversals.
func (d EntryDirection) Opposite() EntryDirection {
	if d == Debit {
		return Credit
	}
	return Debit
}

// TransactionLine is a single proposed movement against one account.
// Direction and amount are separate fields; a line never carries a signed amount.
type TransactionLine struct {
	LineID        string          `json:"lineID"`        // Primary Key (UUID)
	TransactionID string          `json:"transactionID"` // FK -> transactions.transaction_id
	AccountID     string          `json:"accountID"`     // FK -> accounts.account_id (Not Null)
	Amount        decimal.Decimal `json:"amount"`        // Strictly positive
	Direction     EntryDirection  `json:"direction"`     // DEBIT or CREDIT
	TaxCode       string          `json:"taxCode"`       // Optional, precomputed by the caller
	DepartmentID  string          `json:"departmentID"`  // Optional cost-centre tag
	Memo          string          `json:"memo"`          // Optional free text
}

// Transaction is the draft aggregate: a grouping of lines assembled by a
// caller before posting. Lines are mutable only while the status is DRAFT.
type Transaction struct {
	TransactionID string            `json:"transactionID"` // Primary Key (UUID)
	CompanyID     string            `json:"companyID"`     // FK -> companies.company_id (Not Null)
	Type          TransactionType   `json:"type"`
	Date          time.Time         `json:"date"`        // Date the event occurred
	Description   string            `json:"description"` // Free text
	Reference     string            `json:"reference"`   // Caller-supplied document reference
	Status        TransactionStatus `json:"status"`
	Lines         []TransactionLine `json:"lines,omitempty"`
	ReversalOfID  *string           `json:"reversalOfID,omitempty"`  // Set on a reversing transaction
	ReversedByID  *string           `json:"reversedByID,omitempty"`  // Set on a voided original
	Version       int64             `json:"version"`                 // Optimistic lock
	AuditFields
}

// IsReversal reports whether this transaction was created to cancel another.
func (t *Transaction) IsReversal() bool {
	return t.ReversalOfID != nil
}

func (t *Transaction) ensureDraft() error {
	if t.Status != Draft {
		return fmt.Errorf("%w: transaction %s is %s, lines are mutable only while DRAFT",
			apperrors.ErrInvalidState, t.TransactionID, t.Status)
	}
	return nil
}

// AddLine appends a line to a draft transaction. It fails with ErrInvalidState
// if the transaction is not DRAFT and ErrValidation if the amount is not
// strictly positive or the account reference is missing. No balance check is
// performed here; drafts are legitimately unbalanced while being assembled.
func (t *Transaction) AddLine(line TransactionLine) error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	if line.AccountID == "" {
		return fmt.Errorf("%w: line is missing an account reference", apperrors.ErrValidation)
	}
	if line.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: line amount must be strictly positive, got %s",
			apperrors.ErrValidation, line.Amount.String())
	}
	if line.Direction != Debit && line.Direction != Credit {
		return fmt.Errorf("%w: line direction must be DEBIT or CREDIT", apperrors.ErrValidation)
	}
	line.TransactionID = t.TransactionID
	t.Lines = append(t.Lines, line)
	return nil
}

// RemoveLine removes the line with the given ID from a draft transaction.
func (t *Transaction) RemoveLine(lineID string) error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	for i, line := range t.Lines {
		if line.LineID == lineID {
			t.Lines = append(t.Lines[:i], t.Lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: line %s", apperrors.ErrNotFound, lineID)
}

// UpdateLine replaces the line with the same LineID on a draft transaction.
func (t *Transaction) UpdateLine(updated TransactionLine) error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	if updated.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: line amount must be strictly positive, got %s",
			apperrors.ErrValidation, updated.Amount.String())
	}
	for i, line := range t.Lines {
		if line.LineID == updated.LineID {
			updated.TransactionID = t.TransactionID
			t.Lines[i] = updated
			return nil
		}
	}
	return fmt.Errorf("%w: line %s", apperrors.ErrNotFound, updated.LineID)
}

// DebitTotal sums the amounts of all DEBIT lines with exact decimal arithmetic.
func (t *Transaction) DebitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range t.Lines {
		if line.Direction == Debit {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// CreditTotal sums the amounts of all CREDIT lines with exact decimal arithmetic.
func (t *Transaction) CreditTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range t.Lines {
		if line.Direction == Credit {
			total = total.Add(line.Amount)
		}
	}
	return total
}

// IsBalanced reports whether debit and credit totals match to the cent.
func (t *Transaction) IsBalanced() bool {
	return t.DebitTotal().Equal(t.CreditTotal())
}
