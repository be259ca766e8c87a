package domain

// LedgerRole names a well-known account or journal the business engines
// post against. Roles are bound to concrete entity IDs by configuration
// and injected into the posting engine; they replace ad-hoc name lookups.
type LedgerRole string

const (
	RoleCashAccount             LedgerRole = "cash-account"
	RoleInventoryAccount        LedgerRole = "inventory-account"
	RoleSalesRevenueAccount     LedgerRole = "sales-revenue-account"
	RolePurchasesExpenseAccount LedgerRole = "purchases-expense-account"
	RoleShippingExpenseAccount  LedgerRole = "shipping-expense-account"
	RoleLoanPayableAccount      LedgerRole = "loan-payable-account"

	RoleSalesJournal     LedgerRole = "sales-journal"
	RolePurchasesJournal LedgerRole = "purchases-journal"
	RoleLoanJournal      LedgerRole = "loan-journal"
	RolePaymentJournal   LedgerRole = "payment-journal"
)

// LedgerRoles maps well-known roles to account/journal IDs. A role with no
// binding makes any posting through it a no-op (skipped, never an error).
type LedgerRoles map[LedgerRole]string

// Resolve returns the bound ID for a role, and whether a binding exists.
func (r LedgerRoles) Resolve(role LedgerRole) (string, bool) {
	id, ok := r[role]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
