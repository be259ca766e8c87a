package dto

import (
	"time"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferProductRequest is one product line on a transfer request.
type TransferProductRequest struct {
	ProductID string `json:"productID" binding:"required"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Unit      int64  `json:"unit" binding:"required,gt=0"`
}

// CreateTransferRequest defines the payload for creating a stock transfer.
type CreateTransferRequest struct {
	FromInventoryID string                   `json:"fromInventoryID" binding:"required"`
	ToInventoryID   string                   `json:"toInventoryID" binding:"required"`
	Reference       string                   `json:"reference"`
	Products        []TransferProductRequest `json:"products" binding:"required,min=1,dive"`
}

// ShipTransferRequest defines the payload for shipping a transfer.
type ShipTransferRequest struct {
	ShippingCost decimal.Decimal `json:"shippingCost"`
}

// TransferProductResponse is one product line of a transfer response.
type TransferProductResponse struct {
	ProductID string `json:"productID"`
	Name      string `json:"name,omitempty"`
	Code      string `json:"code,omitempty"`
	Unit      int64  `json:"unit"`
}

// TransferResponse defines the data returned for a stock transfer.
type TransferResponse struct {
	TransferID      string                    `json:"transferID"`
	FromInventoryID string                    `json:"fromInventoryID"`
	ToInventoryID   string                    `json:"toInventoryID"`
	Reference       string                    `json:"reference"`
	Status          string                    `json:"status"`
	ShippingCost    decimal.Decimal           `json:"shippingCost"`
	Products        []TransferProductResponse `json:"products"`
	ApprovedBy      string                    `json:"approvedBy,omitempty"`
	CreatedAt       time.Time                 `json:"createdAt"`
	CreatedBy       string                    `json:"createdBy"`
}

// ToTransferResponse converts a domain.StockTransfer to TransferResponse.
func ToTransferResponse(t *domain.StockTransfer) TransferResponse {
	products := make([]TransferProductResponse, len(t.Products))
	for i, p := range t.Products {
		products[i] = TransferProductResponse{
			ProductID: p.ProductID,
			Name:      p.Name,
			Code:      p.Code,
			Unit:      p.Unit,
		}
	}
	return TransferResponse{
		TransferID:      t.TransferID,
		FromInventoryID: t.FromInventoryID,
		ToInventoryID:   t.ToInventoryID,
		Reference:       t.Reference,
		Status:          string(t.Status),
		ShippingCost:    t.ShippingCost,
		Products:        products,
		ApprovedBy:      t.ApprovedBy,
		CreatedAt:       t.CreatedAt,
		CreatedBy:       t.CreatedBy,
	}
}

// TransferDocument is the delivery document of a completed transfer,
// readable only once the transfer is delivered.
type TransferDocument struct {
	Reference       string                    `json:"reference"`
	FromInventoryID string                    `json:"fromInventoryID"`
	ToInventoryID   string                    `json:"toInventoryID"`
	Products        []TransferProductResponse `json:"products"`
	ShippingCost    decimal.Decimal           `json:"shippingCost"`
	ApprovedBy      string                    `json:"approvedBy"`
	DeliveredAt     time.Time                 `json:"deliveredAt"`
}
