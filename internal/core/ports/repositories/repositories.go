package repositories

// RepositoryProvider bundles the concrete repositories handed to the
// service container.
type RepositoryProvider struct {
	AccountRepo   AccountRepository
	JournalRepo   JournalRepository
	EntryRepo     EntryRepository
	InventoryRepo InventoryRepository
	StockRepo     StockRepository
	TransferRepo  TransferRepository
	OrderRepo     OrderRepository
	LoanRepo      LoanRepository
}
