package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
	"github.com/kareem3680/akhdar-erp/internal/core/services"
	"github.com/kareem3680/akhdar-erp/internal/dto"
)

type TransferServiceTestSuite struct {
	suite.Suite
	mockTransferRepo  *MockTransferRepository
	mockStockRepo     *MockStockRepository
	mockInventoryRepo *MockInventoryRepository
	mockPostingSvc    *MockPostingSvc
	service           portssvc.TransferSvcFacade
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.mockTransferRepo = new(MockTransferRepository)
	suite.mockStockRepo = new(MockStockRepository)
	suite.mockInventoryRepo = new(MockInventoryRepository)
	suite.mockPostingSvc = new(MockPostingSvc)
	suite.service = services.NewTransferService(suite.mockTransferRepo, suite.mockStockRepo, suite.mockInventoryRepo, suite.mockPostingSvc)
}

func (suite *TransferServiceTestSuite) draftTransfer() *domain.StockTransfer {
	return &domain.StockTransfer{
		TransferID:      uuid.NewString(),
		FromInventoryID: "inv-src",
		ToInventoryID:   "inv-dst",
		Products: []domain.TransferProduct{
			{ProductID: "prod-1", Name: "Widget", Code: "WGT", Unit: 5},
			{ProductID: "prod-2", Name: "Gadget", Code: "GDT", Unit: 3},
		},
		ShippingCost: decimal.Zero,
		Reference:    "TRF-TEST0001",
		Status:       domain.TransferDraft,
	}
}

func (suite *TransferServiceTestSuite) expectInventoriesExist() {
	suite.mockInventoryRepo.On("FindInventoryByID", mock.Anything, "inv-src").Return(&domain.Inventory{InventoryID: "inv-src"}, nil).Once()
	suite.mockInventoryRepo.On("FindInventoryByID", mock.Anything, "inv-dst").Return(&domain.Inventory{InventoryID: "inv-dst"}, nil).Once()
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_GeneratesReference() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromInventoryID: "inv-src",
		ToInventoryID:   "inv-dst",
		Products: []dto.TransferProductRequest{
			{ProductID: "prod-1", Name: "Widget", Code: "WGT", Unit: 5},
		},
	}

	suite.expectInventoriesExist()
	suite.mockStockRepo.On("FindStockByProductAndInventory", ctx, "prod-1", "inv-src").
		Return(&domain.Stock{StockID: uuid.NewString(), ProductID: "prod-1", InventoryID: "inv-src", Quantity: 10}, nil).Once()
	suite.mockTransferRepo.On("SaveTransfer", ctx, mock.AnythingOfType("domain.StockTransfer")).Return(nil).Once()

	transfer, err := suite.service.CreateTransfer(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.TransferDraft, transfer.Status)
	suite.True(strings.HasPrefix(transfer.Reference, "TRF-"))
	suite.True(transfer.ShippingCost.IsZero())
	suite.mockTransferRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_SameInventoryRejected() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromInventoryID: "inv-src",
		ToInventoryID:   "inv-src",
		Products:        []dto.TransferProductRequest{{ProductID: "prod-1", Unit: 1}},
	}

	transfer, err := suite.service.CreateTransfer(ctx, req, uuid.NewString())

	suite.Nil(transfer)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransferRepo.AssertNotCalled(suite.T(), "SaveTransfer", mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_InsufficientSourceStock() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromInventoryID: "inv-src",
		ToInventoryID:   "inv-dst",
		Products:        []dto.TransferProductRequest{{ProductID: "prod-1", Unit: 20}},
	}

	suite.expectInventoriesExist()
	suite.mockStockRepo.On("FindStockByProductAndInventory", ctx, "prod-1", "inv-src").
		Return(&domain.Stock{StockID: uuid.NewString(), ProductID: "prod-1", InventoryID: "inv-src", Quantity: 10}, nil).Once()

	transfer, err := suite.service.CreateTransfer(ctx, req, uuid.NewString())

	suite.Nil(transfer)
	var insufficientErr *apperrors.InsufficientStockError
	suite.ErrorAs(err, &insufficientErr)
	suite.Equal(int64(10), insufficientErr.Available)
	suite.Equal(int64(20), insufficientErr.Requested)
	suite.mockTransferRepo.AssertNotCalled(suite.T(), "SaveTransfer", mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_MissingSourceStockIsInsufficient() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromInventoryID: "inv-src",
		ToInventoryID:   "inv-dst",
		Products:        []dto.TransferProductRequest{{ProductID: "prod-9", Unit: 1}},
	}

	suite.expectInventoriesExist()
	suite.mockStockRepo.On("FindStockByProductAndInventory", ctx, "prod-9", "inv-src").
		Return(nil, apperrors.ErrNotFound).Once()

	transfer, err := suite.service.CreateTransfer(ctx, req, uuid.NewString())

	suite.Nil(transfer)
	var insufficientErr *apperrors.InsufficientStockError
	suite.ErrorAs(err, &insufficientErr)
	suite.Equal(int64(0), insufficientErr.Available)
}

func (suite *TransferServiceTestSuite) TestShipTransfer_DeductsAtSource() {
	ctx := context.Background()
	transfer := suite.draftTransfer()
	actorID := uuid.NewString()

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()

	var shipped domain.StockTransfer
	var movements []domain.StockMovement
	suite.mockTransferRepo.On("MarkShipped", ctx, mock.AnythingOfType("domain.StockTransfer"), mock.Anything).
		Run(func(args mock.Arguments) {
			shipped = args.Get(1).(domain.StockTransfer)
			movements = args.Get(2).([]domain.StockMovement)
		}).Return(nil).Once()

	result, err := suite.service.ShipTransfer(ctx, transfer.TransferID, decimal.Zero, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.TransferShipping, result.Status)
	suite.Equal(actorID, shipped.ApprovedBy)

	suite.Require().Len(movements, 2)
	for i, m := range movements {
		suite.Equal("inv-src", m.InventoryID)
		suite.Equal(-transfer.Products[i].Unit, m.Delta, "shipping removes stock from the source")
	}

	// No shipping cost, no posting.
	suite.mockPostingSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestShipTransfer_PostsShippingCost() {
	ctx := context.Background()
	transfer := suite.draftTransfer()
	cost := decimal.NewFromInt(50)

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()
	suite.mockTransferRepo.On("MarkShipped", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	var posting dto.PostingRequest
	suite.mockPostingSvc.On("Post", ctx, mock.AnythingOfType("dto.PostingRequest")).
		Run(func(args mock.Arguments) {
			posting = args.Get(1).(dto.PostingRequest)
		}).Return(dto.PostingResult{EntryID: "entry-1"}).Once()

	result, err := suite.service.ShipTransfer(ctx, transfer.TransferID, cost, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(result.ShippingCost.Equal(cost))

	suite.Equal(domain.RolePaymentJournal, posting.Journal)
	suite.Equal(transfer.Reference, posting.Reference)
	suite.Require().Len(posting.Lines, 2)
	suite.Equal(domain.RoleShippingExpenseAccount, posting.Lines[0].Account)
	suite.True(posting.Lines[0].Debit.Equal(cost))
	suite.Equal(domain.RoleCashAccount, posting.Lines[1].Account)
	suite.True(posting.Lines[1].Credit.Equal(cost))
}

func (suite *TransferServiceTestSuite) TestShipTransfer_NegativeCostRejected() {
	ctx := context.Background()
	transfer := suite.draftTransfer()

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()

	result, err := suite.service.ShipTransfer(ctx, transfer.TransferID, decimal.NewFromInt(-1), uuid.NewString())

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransferRepo.AssertNotCalled(suite.T(), "MarkShipped", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestShipTransfer_NonDraftConflicts() {
	ctx := context.Background()
	transfer := suite.draftTransfer()
	transfer.Status = domain.TransferDelivered

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()

	result, err := suite.service.ShipTransfer(ctx, transfer.TransferID, decimal.Zero, uuid.NewString())

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TransferServiceTestSuite) TestDeliverTransfer_AddsAtDestination() {
	ctx := context.Background()
	transfer := suite.draftTransfer()
	transfer.Status = domain.TransferShipping

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()

	var movements []domain.StockMovement
	suite.mockTransferRepo.On("MarkDelivered", ctx, mock.AnythingOfType("domain.StockTransfer"), mock.Anything).
		Run(func(args mock.Arguments) {
			movements = args.Get(2).([]domain.StockMovement)
		}).Return(nil).Once()

	result, err := suite.service.DeliverTransfer(ctx, transfer.TransferID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.TransferDelivered, result.Status)

	suite.Require().Len(movements, 2)
	for i, m := range movements {
		suite.Equal("inv-dst", m.InventoryID)
		suite.Equal(transfer.Products[i].Unit, m.Delta, "delivery adds stock at the destination")
	}
}

func (suite *TransferServiceTestSuite) TestDeliverTransfer_DraftConflicts() {
	ctx := context.Background()
	transfer := suite.draftTransfer()

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()

	result, err := suite.service.DeliverTransfer(ctx, transfer.TransferID, uuid.NewString())

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockTransferRepo.AssertNotCalled(suite.T(), "MarkDelivered", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferServiceTestSuite) TestCancelTransfer_DraftOnly() {
	ctx := context.Background()
	transfer := suite.draftTransfer()
	actorID := uuid.NewString()

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()
	suite.mockTransferRepo.On("MarkCancelled", ctx, transfer.TransferID, actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	result, err := suite.service.CancelTransfer(ctx, transfer.TransferID, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.TransferCancelled, result.Status)
}

func (suite *TransferServiceTestSuite) TestCancelTransfer_ShippingConflicts() {
	ctx := context.Background()
	transfer := suite.draftTransfer()
	transfer.Status = domain.TransferShipping

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()

	result, err := suite.service.CancelTransfer(ctx, transfer.TransferID, uuid.NewString())

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TransferServiceTestSuite) TestTransferDocument_DeliveredOnly() {
	ctx := context.Background()
	transfer := suite.draftTransfer()
	transfer.Status = domain.TransferDelivered
	transfer.ShippingCost = decimal.NewFromInt(25)
	transfer.ApprovedBy = uuid.NewString()
	transfer.LastUpdatedAt = time.Now().UTC()

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()

	doc, err := suite.service.TransferDocument(ctx, transfer.TransferID)

	suite.Require().NoError(err)
	suite.Equal(transfer.Reference, doc.Reference)
	suite.Equal("inv-src", doc.FromInventoryID)
	suite.Equal("inv-dst", doc.ToInventoryID)
	suite.Len(doc.Products, 2)
	suite.True(doc.ShippingCost.Equal(transfer.ShippingCost))
	suite.Equal(transfer.ApprovedBy, doc.ApprovedBy)
}

func (suite *TransferServiceTestSuite) TestTransferDocument_UndeliveredConflicts() {
	ctx := context.Background()
	transfer := suite.draftTransfer()
	transfer.Status = domain.TransferShipping

	suite.mockTransferRepo.On("FindTransferByID", ctx, transfer.TransferID).Return(transfer, nil).Once()

	doc, err := suite.service.TransferDocument(ctx, transfer.TransferID)

	suite.Nil(doc)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}
