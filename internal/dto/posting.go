package dto

import (
	"time"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostingLine is one role-addressed line of a best-effort posting.
type PostingLine struct {
	Account     domain.LedgerRole
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// PostingRequest asks the posting engine to record the financial effect of
// a business operation. Journal and account references are well-known
// roles, resolved against the injected role bindings.
type PostingRequest struct {
	Journal   domain.LedgerRole
	Date      time.Time
	Reference string
	Lines     []PostingLine
}

// PostingResult reports the outcome of a best-effort posting. Skipped
// postings never fail the calling business operation; the reason is
// carried here so callers and tests can assert on the branch taken.
type PostingResult struct {
	EntryID string `json:"entryID,omitempty"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}
