package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool)
	inventoryRepo := newPgxInventoryRepository(dbPool)
	stockRepo := newPgxStockRepository(dbPool)
	transferRepo := newPgxTransferRepository(dbPool)
	orderRepo := newPgxOrderRepository(dbPool)
	loanRepo := newPgxLoanRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		JournalRepo:   journalRepo,
		EntryRepo:     entryRepo,
		InventoryRepo: inventoryRepo,
		StockRepo:     stockRepo,
		TransferRepo:  transferRepo,
		OrderRepo:     orderRepo,
		LoanRepo:      loanRepo,
	}
}
