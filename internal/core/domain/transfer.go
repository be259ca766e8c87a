package domain

import (
	"github.com/shopspring/decimal"
)

// TransferStatus is the state of a stock transfer.
type TransferStatus string

const (
	TransferDraft     TransferStatus = "DRAFT"
	TransferShipping  TransferStatus = "SHIPPING"
	TransferDelivered TransferStatus = "DELIVERED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// TransferProduct is one product line on a stock transfer. Unit is the
// quantity being moved.
type TransferProduct struct {
	ProductID string `json:"productID"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Unit      int64  `json:"unit"`
}

// StockTransfer is a directed movement of product quantities between two
// distinct inventories. Legal paths: DRAFT -> SHIPPING -> DELIVERED, or
// DRAFT -> CANCELLED. Shipping deducts stock and returns capacity at the
// source; delivery adds stock and consumes capacity at the destination.
type StockTransfer struct {
	TransferID      string            `json:"transferID"` // Primary key (UUID)
	FromInventoryID string            `json:"fromInventoryID"`
	ToInventoryID   string            `json:"toInventoryID"`
	Products        []TransferProduct `json:"products"`
	ShippingCost    decimal.Decimal   `json:"shippingCost"`
	Reference       string            `json:"reference"` // Unique, auto-generated if absent
	Status          TransferStatus    `json:"status"`
	ApprovedBy      string            `json:"approvedBy"` // Set when shipped
	AuditFields
}

// CanShip reports whether the transfer may transition to SHIPPING.
func (t *StockTransfer) CanShip() bool {
	return t.Status == TransferDraft
}

// CanDeliver reports whether the transfer may transition to DELIVERED.
func (t *StockTransfer) CanDeliver() bool {
	return t.Status == TransferShipping
}

// CanCancel reports whether the transfer may transition to CANCELLED.
func (t *StockTransfer) CanCancel() bool {
	return t.Status == TransferDraft
}

// Delivered reports whether the transfer has reached its terminal
// delivered state; the transfer document is readable only then.
func (t *StockTransfer) Delivered() bool {
	return t.Status == TransferDelivered
}
