package services_test

import (
	"context"
	"strings"
	"testing"

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

type StockServiceTestSuite struct {
	suite.Suite
	mockStockRepo     *MockStockRepository
	mockInventoryRepo *MockInventoryRepository
	mockOrderRepo     *MockOrderRepository
	mockPostingSvc    *MockPostingSvc
	service           portssvc.StockSvcFacade
}

func (suite *StockServiceTestSuite) SetupTest() {
	suite.mockStockRepo = new(MockStockRepository)
	suite.mockInventoryRepo = new(MockInventoryRepository)
	suite.mockOrderRepo = new(MockOrderRepository)
	suite.mockPostingSvc = new(MockPostingSvc)
	suite.service = services.NewStockService(suite.mockStockRepo, suite.mockInventoryRepo, suite.mockOrderRepo, suite.mockPostingSvc)
}

func (suite *StockServiceTestSuite) purchaseOrder() *domain.PurchaseOrder {
	return &domain.PurchaseOrder{
		OrderID:     uuid.NewString(),
		SupplierID:  uuid.NewString(),
		InventoryID: "inv-1",
		Reference:   "PO-TEST0001",
		Status:      domain.PurchasePending,
		Lines: []domain.PurchaseOrderLine{
			{ProductID: "prod-1", Quantity: 10, UnitPrice: decimal.NewFromInt(5)},
			{ProductID: "prod-2", Quantity: 4, UnitPrice: decimal.NewFromInt(25)},
		},
	}
}

func (suite *StockServiceTestSuite) TestCreateStock_Defaults() {
	ctx := context.Background()
	req := dto.CreateStockRequest{
		InventoryID: "inv-1",
		ProductID:   "prod-1",
		Quantity:    10,
		MinQuantity: 2,
	}

	suite.mockInventoryRepo.On("FindInventoryByID", ctx, "inv-1").Return(&domain.Inventory{InventoryID: "inv-1"}, nil).Once()

	var saved domain.Stock
	suite.mockStockRepo.On("CreateStock", ctx, mock.AnythingOfType("domain.Stock")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Stock)
		}).Return(nil).Once()

	stock, err := suite.service.CreateStock(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(int64(10), stock.Quantity)
	suite.Equal(saved.Status, stock.Status)
	suite.NotEmpty(saved.Status, "status is derived before persisting")
}

func (suite *StockServiceTestSuite) TestCreateStock_ThresholdOrderEnforced() {
	ctx := context.Background()
	req := dto.CreateStockRequest{
		InventoryID: "inv-1",
		ProductID:   "prod-1",
		Quantity:    10,
		MinQuantity: 8,
		MaxQuantity: 5,
	}

	stock, err := suite.service.CreateStock(ctx, req, uuid.NewString())

	suite.Nil(stock)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "CreateStock", mock.Anything, mock.Anything)
}

func (suite *StockServiceTestSuite) TestCreateStock_UnknownInventory() {
	ctx := context.Background()
	req := dto.CreateStockRequest{InventoryID: "inv-missing", ProductID: "prod-1", Quantity: 1}

	suite.mockInventoryRepo.On("FindInventoryByID", ctx, "inv-missing").Return(nil, apperrors.ErrNotFound).Once()

	stock, err := suite.service.CreateStock(ctx, req, uuid.NewString())

	suite.Nil(stock)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *StockServiceTestSuite) TestUpdateStock_NegativeQuantityRejected() {
	ctx := context.Background()

	stock, err := suite.service.UpdateStock(ctx, uuid.NewString(), dto.UpdateStockRequest{Quantity: -1}, uuid.NewString())

	suite.Nil(stock)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpdateStockQuantity",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StockServiceTestSuite) TestCreatePurchaseOrder_GeneratesReference() {
	ctx := context.Background()
	req := dto.CreatePurchaseOrderRequest{
		SupplierID:  uuid.NewString(),
		InventoryID: "inv-1",
		Lines: []dto.CreateOrderLineRequest{
			{ProductID: "prod-1", Quantity: 10, UnitPrice: decimal.NewFromInt(5)},
		},
	}

	suite.mockInventoryRepo.On("FindInventoryByID", ctx, "inv-1").Return(&domain.Inventory{InventoryID: "inv-1"}, nil).Once()
	suite.mockOrderRepo.On("SavePurchaseOrder", ctx, mock.AnythingOfType("domain.PurchaseOrder")).Return(nil).Once()

	order, err := suite.service.CreatePurchaseOrder(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.PurchasePending, order.Status)
	suite.True(strings.HasPrefix(order.Reference, "PO-"))
}

func (suite *StockServiceTestSuite) TestCreateSaleOrder_ChecksStockEarly() {
	ctx := context.Background()
	req := dto.CreateSaleOrderRequest{
		CustomerID:  uuid.NewString(),
		InventoryID: "inv-1",
		Lines: []dto.CreateOrderLineRequest{
			{ProductID: "prod-1", Quantity: 15, UnitPrice: decimal.NewFromInt(9)},
		},
	}

	suite.mockInventoryRepo.On("FindInventoryByID", ctx, "inv-1").Return(&domain.Inventory{InventoryID: "inv-1"}, nil).Once()
	suite.mockStockRepo.On("FindStockByProductAndInventory", ctx, "prod-1", "inv-1").
		Return(&domain.Stock{StockID: uuid.NewString(), ProductID: "prod-1", InventoryID: "inv-1", Quantity: 10}, nil).Once()

	order, err := suite.service.CreateSaleOrder(ctx, req, uuid.NewString())

	suite.Nil(order)
	var insufficientErr *apperrors.InsufficientStockError
	suite.ErrorAs(err, &insufficientErr)
	suite.Equal(int64(10), insufficientErr.Available)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "SaveSaleOrder", mock.Anything, mock.Anything)
}

func (suite *StockServiceTestSuite) TestStockIn_PartialDelivery() {
	ctx := context.Background()
	order := suite.purchaseOrder()

	suite.mockOrderRepo.On("FindPurchaseOrderByID", ctx, order.OrderID).Return(order, nil).Once()

	var received domain.PurchaseOrder
	var movements []domain.StockMovement
	suite.mockOrderRepo.On("ReceivePurchase", ctx, mock.AnythingOfType("domain.PurchaseOrder"), mock.Anything).
		Run(func(args mock.Arguments) {
			received = args.Get(1).(domain.PurchaseOrder)
			movements = args.Get(2).([]domain.StockMovement)
		}).Return(map[string]domain.Stock{"prod-1": {ProductID: "prod-1", InventoryID: "inv-1", Quantity: 6}}, nil).Once()

	var posting dto.PostingRequest
	suite.mockPostingSvc.On("Post", ctx, mock.AnythingOfType("dto.PostingRequest")).
		Run(func(args mock.Arguments) {
			posting = args.Get(1).(dto.PostingRequest)
		}).Return(dto.PostingResult{EntryID: "entry-1"}).Once()

	req := dto.StockInRequest{Deliveries: []dto.DeliveryLine{{ProductID: "prod-1", Quantity: 6}}}
	result, err := suite.service.StockIn(ctx, order.OrderID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.PurchasePartial, received.Status, "undelivered lines keep the order partial")
	suite.Equal(int64(6), received.Lines[0].ReceivedQuantity)

	suite.Require().Len(movements, 1)
	suite.Equal("inv-1", movements[0].InventoryID)
	suite.Equal(int64(6), movements[0].Delta)

	// 6 units at 5 each.
	suite.Equal(domain.RolePurchasesJournal, posting.Journal)
	suite.Require().Len(posting.Lines, 2)
	suite.Equal(domain.RoleInventoryAccount, posting.Lines[0].Account)
	suite.True(posting.Lines[0].Debit.Equal(decimal.NewFromInt(30)))
	suite.Equal(domain.RoleCashAccount, posting.Lines[1].Account)
	suite.True(posting.Lines[1].Credit.Equal(decimal.NewFromInt(30)))

	suite.Len(result.Stocks, 1)
}

func (suite *StockServiceTestSuite) TestStockIn_CompletingDeliveryMarksDelivered() {
	ctx := context.Background()
	order := suite.purchaseOrder()
	order.Status = domain.PurchasePartial
	order.Lines[0].ReceivedQuantity = 10

	suite.mockOrderRepo.On("FindPurchaseOrderByID", ctx, order.OrderID).Return(order, nil).Once()

	var received domain.PurchaseOrder
	suite.mockOrderRepo.On("ReceivePurchase", ctx, mock.AnythingOfType("domain.PurchaseOrder"), mock.Anything).
		Run(func(args mock.Arguments) {
			received = args.Get(1).(domain.PurchaseOrder)
		}).Return(map[string]domain.Stock{}, nil).Once()
	suite.mockPostingSvc.On("Post", ctx, mock.Anything).Return(dto.PostingResult{EntryID: "entry-2"}).Once()

	req := dto.StockInRequest{Deliveries: []dto.DeliveryLine{{ProductID: "prod-2", Quantity: 4}}}
	_, err := suite.service.StockIn(ctx, order.OrderID, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.PurchaseDelivered, received.Status)
}

func (suite *StockServiceTestSuite) TestStockIn_OverDeliveryRejected() {
	ctx := context.Background()
	order := suite.purchaseOrder()
	order.Lines[0].ReceivedQuantity = 8

	suite.mockOrderRepo.On("FindPurchaseOrderByID", ctx, order.OrderID).Return(order, nil).Once()

	req := dto.StockInRequest{Deliveries: []dto.DeliveryLine{{ProductID: "prod-1", Quantity: 3}}}
	result, err := suite.service.StockIn(ctx, order.OrderID, req, uuid.NewString())

	suite.Nil(result)
	suite.ErrorIs(err, services.ErrOverDelivery)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "ReceivePurchase", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StockServiceTestSuite) TestStockIn_NonPositiveDeliveryRejected() {
	ctx := context.Background()
	order := suite.purchaseOrder()
	order.Lines[0].ReceivedQuantity = 5

	suite.mockOrderRepo.On("FindPurchaseOrderByID", ctx, order.OrderID).Return(order, nil).Once()

	req := dto.StockInRequest{Deliveries: []dto.DeliveryLine{{ProductID: "prod-1", Quantity: -3}}}
	result, err := suite.service.StockIn(ctx, order.OrderID, req, uuid.NewString())

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal(int64(5), order.Lines[0].ReceivedQuantity, "a rejected delivery must not walk the received quantity back")
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "ReceivePurchase", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StockServiceTestSuite) TestStockIn_UnknownProductRejected() {
	ctx := context.Background()
	order := suite.purchaseOrder()

	suite.mockOrderRepo.On("FindPurchaseOrderByID", ctx, order.OrderID).Return(order, nil).Once()

	req := dto.StockInRequest{Deliveries: []dto.DeliveryLine{{ProductID: "prod-99", Quantity: 1}}}
	result, err := suite.service.StockIn(ctx, order.OrderID, req, uuid.NewString())

	suite.Nil(result)
	suite.ErrorIs(err, services.ErrUnknownOrderProduct)
}

func (suite *StockServiceTestSuite) TestStockIn_DeliveredOrderConflicts() {
	ctx := context.Background()
	order := suite.purchaseOrder()
	order.Status = domain.PurchaseDelivered

	suite.mockOrderRepo.On("FindPurchaseOrderByID", ctx, order.OrderID).Return(order, nil).Once()

	req := dto.StockInRequest{Deliveries: []dto.DeliveryLine{{ProductID: "prod-1", Quantity: 1}}}
	result, err := suite.service.StockIn(ctx, order.OrderID, req, uuid.NewString())

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *StockServiceTestSuite) TestStockOut_DeductsAndPostsSale() {
	ctx := context.Background()
	order := &domain.SaleOrder{
		OrderID:     uuid.NewString(),
		CustomerID:  uuid.NewString(),
		InventoryID: "inv-1",
		Reference:   "SO-TEST0001",
		Status:      domain.SalePending,
		Lines: []domain.SaleOrderLine{
			{ProductID: "prod-1", Quantity: 3, UnitPrice: decimal.NewFromInt(40)},
		},
	}

	suite.mockOrderRepo.On("FindSaleOrderByID", ctx, order.OrderID).Return(order, nil).Once()

	var fulfilled domain.SaleOrder
	var movements []domain.StockMovement
	suite.mockOrderRepo.On("FulfillSale", ctx, mock.AnythingOfType("domain.SaleOrder"), mock.Anything).
		Run(func(args mock.Arguments) {
			fulfilled = args.Get(1).(domain.SaleOrder)
			movements = args.Get(2).([]domain.StockMovement)
		}).Return(nil).Once()

	var posting dto.PostingRequest
	suite.mockPostingSvc.On("Post", ctx, mock.AnythingOfType("dto.PostingRequest")).
		Run(func(args mock.Arguments) {
			posting = args.Get(1).(dto.PostingRequest)
		}).Return(dto.PostingResult{EntryID: "entry-3"}).Once()

	result, err := suite.service.StockOut(ctx, order.OrderID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.SaleDelivered, fulfilled.Status)

	suite.Require().Len(movements, 1)
	suite.Equal(int64(-3), movements[0].Delta, "fulfillment removes stock")

	// 3 units at 40 each.
	suite.Equal(domain.RoleSalesJournal, posting.Journal)
	suite.Require().Len(posting.Lines, 2)
	suite.Equal(domain.RoleCashAccount, posting.Lines[0].Account)
	suite.True(posting.Lines[0].Debit.Equal(decimal.NewFromInt(120)))
	suite.Equal(domain.RoleSalesRevenueAccount, posting.Lines[1].Account)
	suite.True(posting.Lines[1].Credit.Equal(decimal.NewFromInt(120)))

	suite.Equal("entry-3", result.Posting.EntryID)
}

func (suite *StockServiceTestSuite) TestStockOut_DeliveredOrderConflicts() {
	ctx := context.Background()
	order := &domain.SaleOrder{
		OrderID: uuid.NewString(),
		Status:  domain.SaleDelivered,
	}

	suite.mockOrderRepo.On("FindSaleOrderByID", ctx, order.OrderID).Return(order, nil).Once()

	result, err := suite.service.StockOut(ctx, order.OrderID, uuid.NewString())

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "FulfillSale", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StockServiceTestSuite) TestStockOut_ZeroValueSkipsPosting() {
	ctx := context.Background()
	order := &domain.SaleOrder{
		OrderID:     uuid.NewString(),
		InventoryID: "inv-1",
		Status:      domain.SalePending,
		Lines: []domain.SaleOrderLine{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.Zero},
		},
	}

	suite.mockOrderRepo.On("FindSaleOrderByID", ctx, order.OrderID).Return(order, nil).Once()
	suite.mockOrderRepo.On("FulfillSale", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.StockOut(ctx, order.OrderID, uuid.NewString())

	suite.Require().NoError(err)
	suite.True(result.Posting.Skipped)
	suite.mockPostingSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything)
}

func TestStockServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StockServiceTestSuite))
}
