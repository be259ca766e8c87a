package accounting

import (
	"fmt"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateEntryLines checks the structural rules for journal entry lines:
// at least two lines, each line carrying exactly one positive side, and
// total debits equal to total credits.
func ValidateEntryLines(lines []domain.EntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry must have at least two lines")
	}

	debits := decimal.Zero
	credits := decimal.Zero
	for i, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("line %d: debit and credit must not be negative", i)
		}
		debitSet := l.Debit.IsPositive()
		creditSet := l.Credit.IsPositive()
		if debitSet == creditSet {
			return fmt.Errorf("line %d: exactly one of debit and credit must be positive", i)
		}
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("entry does not balance: debits sum is %s and credits sum is %s",
			debits.String(), credits.String())
	}
	return nil
}

// BalanceChanges computes the net account balance deltas a posted entry
// applies: each line's debit increases its account's amount and each
// credit decreases it, uniformly across account types. This is the
// recorded convention of this ledger, not per-type normal-balance signing.
func BalanceChanges(lines []domain.EntryLine) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		delta := l.Debit.Sub(l.Credit)
		changes[l.AccountID] = changes[l.AccountID].Add(delta)
	}
	return changes
}

// EntryAmount is the economic value of a balanced entry: the sum of its
// debit side.
func EntryAmount(lines []domain.EntryLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Debit)
	}
	return total
}
