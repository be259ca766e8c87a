package services

import (
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
)

// Container bundles all service facades for handler registration.
type Container struct {
	Account   portssvc.AccountSvcFacade
	Journal   portssvc.JournalSvcFacade
	Entry     portssvc.EntrySvcFacade
	Posting   portssvc.PostingSvcFacade
	Inventory portssvc.InventorySvcFacade
	Stock     portssvc.StockSvcFacade
	Transfer  portssvc.TransferSvcFacade
	Loan      portssvc.LoanSvcFacade
}

// NewContainer wires the services against the given repositories, ledger
// role bindings and notifier.
func NewContainer(repos *portsrepo.RepositoryProvider, roles domain.LedgerRoles, notifier portssvc.Notifier) *Container {
	accountSvc := NewAccountService(repos.AccountRepo)
	journalSvc := NewJournalService(repos.JournalRepo)
	entrySvc := NewEntryService(repos.EntryRepo, repos.JournalRepo, accountSvc)
	postingSvc := NewPostingService(roles, entrySvc)
	inventorySvc := NewInventoryService(repos.InventoryRepo)
	stockSvc := NewStockService(repos.StockRepo, repos.InventoryRepo, repos.OrderRepo, postingSvc)
	transferSvc := NewTransferService(repos.TransferRepo, repos.StockRepo, repos.InventoryRepo, postingSvc)
	loanSvc := NewLoanService(repos.LoanRepo, postingSvc, notifier)

	return &Container{
		Account:   accountSvc,
		Journal:   journalSvc,
		Entry:     entrySvc,
		Posting:   postingSvc,
		Inventory: inventorySvc,
		Stock:     stockSvc,
		Transfer:  transferSvc,
		Loan:      loanSvc,
	}
}
