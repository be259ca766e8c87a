package domain

import (
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus is the receipt state of a purchase order.
type PurchaseOrderStatus string

const (
	PurchasePending   PurchaseOrderStatus = "PENDING"
	PurchasePartial   PurchaseOrderStatus = "PARTIAL"
	PurchaseDelivered PurchaseOrderStatus = "DELIVERED"
)

// PurchaseOrderLine is one ordered product on a purchase order.
type PurchaseOrderLine struct {
	ProductID        string          `json:"productID"`
	Quantity         int64           `json:"quantity"`
	ReceivedQuantity int64           `json:"receivedQuantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
}

// PurchaseOrder orders product quantities from a supplier into one
// inventory. Receiving deliveries increments line received quantities;
// the order becomes DELIVERED once nothing remains outstanding.
type PurchaseOrder struct {
	OrderID     string              `json:"orderID"` // Primary key (UUID)
	SupplierID  string              `json:"supplierID"`
	InventoryID string              `json:"inventoryID"`
	Reference   string              `json:"reference"`
	Lines       []PurchaseOrderLine `json:"lines"`
	Status      PurchaseOrderStatus `json:"status"`
	AuditFields
}

// RemainingQuantity is the total ordered quantity not yet received.
func (o *PurchaseOrder) RemainingQuantity() int64 {
	var remaining int64
	for _, l := range o.Lines {
		if d := l.Quantity - l.ReceivedQuantity; d > 0 {
			remaining += d
		}
	}
	return remaining
}

// Total is the order value, computed from the lines.
func (o *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}

// SaleOrderStatus is the fulfillment state of a sale order.
type SaleOrderStatus string

const (
	SalePending   SaleOrderStatus = "PENDING"
	SaleDelivered SaleOrderStatus = "DELIVERED"
)

// SaleOrderLine is one sold product on a sale order.
type SaleOrderLine struct {
	ProductID string          `json:"productID"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// SaleOrder sells product quantities out of one inventory to a customer.
// Fulfillment deducts all lines at once and marks the order DELIVERED.
type SaleOrder struct {
	OrderID     string          `json:"orderID"` // Primary key (UUID)
	CustomerID  string          `json:"customerID"`
	InventoryID string          `json:"inventoryID"`
	Reference   string          `json:"reference"`
	Lines       []SaleOrderLine `json:"lines"`
	Status      SaleOrderStatus `json:"status"`
	AuditFields
}

// Total is the order value, computed from the lines.
func (o *SaleOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}
