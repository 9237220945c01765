package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger_engine/internal/core/domain"
)

// DisplaySign returns the multiplier applied when an account's debit-positive
// net amount is surfaced as a balance: +1 for ASSET/EXPENSE, -1 for
// LIABILITY/EQUITY/INCOME. This is the only place the sign convention is
// written down; every report calls through here.
func DisplaySign(accountType domain.AccountType) (int32, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return 1, nil
	case domain.Liability, domain.Equity, domain.Income:
		return -1, nil
	default:
		return 0, fmt.Errorf("unknown account type %q", accountType)
	}
}

// DisplayBalance converts a debit-positive net amount into the balance shown
// for the given account type.
func DisplayBalance(net decimal.Decimal, accountType domain.AccountType) (decimal.Decimal, error) {
	sign, err := DisplaySign(accountType)
	if err != nil {
		return decimal.Zero, err
	}
	if sign < 0 {
		return net.Neg(), nil
	}
	return net, nil
}
