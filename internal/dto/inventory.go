package dto

import (
	"time"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateInventoryRequest defines the payload for creating an inventory.
// Capacity is the total free capacity the location starts with.
type CreateInventoryRequest struct {
	Name           string `json:"name" binding:"required"`
	Location       string `json:"location"`
	Capacity       int64  `json:"capacity" binding:"required,gt=0"`
	ManagerID      string `json:"managerID"`
	OrganizationID string `json:"organizationID"`
}

// UpdateInventoryRequest defines the updatable fields of an inventory.
type UpdateInventoryRequest struct {
	Name      *string `json:"name"`
	Location  *string `json:"location"`
	Status    *string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE MAINTENANCE"`
	ManagerID *string `json:"managerID"`
}

// InventoryResponse defines the data returned for an inventory.
type InventoryResponse struct {
	InventoryID    string    `json:"inventoryID"`
	Name           string    `json:"name"`
	Location       string    `json:"location,omitempty"`
	Capacity       int64     `json:"capacity"`
	Status         string    `json:"status"`
	ManagerID      string    `json:"managerID,omitempty"`
	OrganizationID string    `json:"organizationID,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToInventoryResponse converts a domain.Inventory to InventoryResponse.
func ToInventoryResponse(inv *domain.Inventory) InventoryResponse {
	return InventoryResponse{
		InventoryID:    inv.InventoryID,
		Name:           inv.Name,
		Location:       inv.Location,
		Capacity:       inv.Capacity,
		Status:         string(inv.Status),
		ManagerID:      inv.ManagerID,
		OrganizationID: inv.OrganizationID,
		CreatedAt:      inv.CreatedAt,
	}
}

// CreateStockRequest defines the payload for creating a stock row.
type CreateStockRequest struct {
	InventoryID string `json:"inventoryID" binding:"required"`
	ProductID   string `json:"productID" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
	MinQuantity int64  `json:"minQuantity" binding:"gte=0"`
	MaxQuantity int64  `json:"maxQuantity" binding:"gte=0"`
}

// UpdateStockRequest defines the payload for setting a stock quantity and
// optionally its thresholds.
type UpdateStockRequest struct {
	Quantity    int64  `json:"quantity" binding:"gte=0"`
	MinQuantity *int64 `json:"minQuantity"`
	MaxQuantity *int64 `json:"maxQuantity"`
}

// StockResponse defines the data returned for a stock row.
type StockResponse struct {
	StockID     string `json:"stockID"`
	ProductID   string `json:"productID"`
	InventoryID string `json:"inventoryID"`
	Quantity    int64  `json:"quantity"`
	MinQuantity int64  `json:"minQuantity"`
	MaxQuantity int64  `json:"maxQuantity"`
	Status      string `json:"status"`
}

// ToStockResponse converts a domain.Stock to StockResponse.
func ToStockResponse(s *domain.Stock) StockResponse {
	return StockResponse{
		StockID:     s.StockID,
		ProductID:   s.ProductID,
		InventoryID: s.InventoryID,
		Quantity:    s.Quantity,
		MinQuantity: s.MinQuantity,
		MaxQuantity: s.MaxQuantity,
		Status:      string(s.Status),
	}
}

// ToStockResponses converts a slice of domain.Stock to []StockResponse.
func ToStockResponses(stocks []domain.Stock) []StockResponse {
	responses := make([]StockResponse, len(stocks))
	for i := range stocks {
		responses[i] = ToStockResponse(&stocks[i])
	}
	return responses
}

// CreateOrderLineRequest is one product line on an order request.
type CreateOrderLineRequest struct {
	ProductID string          `json:"productID" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CreatePurchaseOrderRequest defines the payload for creating a purchase
// order.
type CreatePurchaseOrderRequest struct {
	SupplierID  string                   `json:"supplierID" binding:"required"`
	InventoryID string                   `json:"inventoryID" binding:"required"`
	Reference   string                   `json:"reference"`
	Lines       []CreateOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateSaleOrderRequest defines the payload for creating a sale order.
type CreateSaleOrderRequest struct {
	CustomerID  string                   `json:"customerID" binding:"required"`
	InventoryID string                   `json:"inventoryID" binding:"required"`
	Reference   string                   `json:"reference"`
	Lines       []CreateOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// DeliveryLine is one received product quantity on a stock-in request.
type DeliveryLine struct {
	ProductID string `json:"productID" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// StockInRequest defines the payload for receiving a purchase order
// delivery.
type StockInRequest struct {
	Deliveries []DeliveryLine `json:"deliveries" binding:"required,min=1,dive"`
}

// PurchaseOrderLineResponse defines one line of a purchase order response.
type PurchaseOrderLineResponse struct {
	ProductID        string          `json:"productID"`
	Quantity         int64           `json:"quantity"`
	ReceivedQuantity int64           `json:"receivedQuantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
}

// PurchaseOrderResponse defines the data returned for a purchase order.
type PurchaseOrderResponse struct {
	OrderID     string                      `json:"orderID"`
	SupplierID  string                      `json:"supplierID"`
	InventoryID string                      `json:"inventoryID"`
	Reference   string                      `json:"reference,omitempty"`
	Status      string                      `json:"status"`
	Total       decimal.Decimal             `json:"total"`
	Lines       []PurchaseOrderLineResponse `json:"lines"`
	CreatedAt   time.Time                   `json:"createdAt"`
}

// ToPurchaseOrderResponse converts a domain.PurchaseOrder to its response.
func ToPurchaseOrderResponse(o *domain.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = PurchaseOrderLineResponse{
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			ReceivedQuantity: l.ReceivedQuantity,
			UnitPrice:        l.UnitPrice,
		}
	}
	return PurchaseOrderResponse{
		OrderID:     o.OrderID,
		SupplierID:  o.SupplierID,
		InventoryID: o.InventoryID,
		Reference:   o.Reference,
		Status:      string(o.Status),
		Total:       o.Total(),
		Lines:       lines,
		CreatedAt:   o.CreatedAt,
	}
}

// SaleOrderLineResponse defines one line of a sale order response.
type SaleOrderLineResponse struct {
	ProductID string          `json:"productID"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// SaleOrderResponse defines the data returned for a sale order.
type SaleOrderResponse struct {
	OrderID     string                  `json:"orderID"`
	CustomerID  string                  `json:"customerID"`
	InventoryID string                  `json:"inventoryID"`
	Reference   string                  `json:"reference,omitempty"`
	Status      string                  `json:"status"`
	Total       decimal.Decimal         `json:"total"`
	Lines       []SaleOrderLineResponse `json:"lines"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// ToSaleOrderResponse converts a domain.SaleOrder to its response.
func ToSaleOrderResponse(o *domain.SaleOrder) SaleOrderResponse {
	lines := make([]SaleOrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = SaleOrderLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return SaleOrderResponse{
		OrderID:     o.OrderID,
		CustomerID:  o.CustomerID,
		InventoryID: o.InventoryID,
		Reference:   o.Reference,
		Status:      string(o.Status),
		Total:       o.Total(),
		Lines:       lines,
		CreatedAt:   o.CreatedAt,
	}
}

// StockInResponse is the combined result of receiving a delivery.
type StockInResponse struct {
	Order   PurchaseOrderResponse `json:"order"`
	Stocks  []StockResponse       `json:"stocks"`
	Posting PostingResult         `json:"posting"`
}

// StockOutResponse is the combined result of fulfilling a sale order.
type StockOutResponse struct {
	Order   SaleOrderResponse `json:"order"`
	Posting PostingResult     `json:"posting"`
}
