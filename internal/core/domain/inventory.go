package domain

// InventoryStatus indicates the operational state of an inventory.
type InventoryStatus string

const (
	InventoryActive      InventoryStatus = "ACTIVE"
	InventoryInactive    InventoryStatus = "INACTIVE"
	InventoryMaintenance InventoryStatus = "MAINTENANCE"
)

// Inventory is a physical or logical storage location. Capacity is the
// remaining free capacity, not the total size: adding stock decrements it,
// removing stock increments it.
type Inventory struct {
	InventoryID    string          `json:"inventoryID"` // Primary key (UUID)
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	Capacity       int64           `json:"capacity"` // Remaining free capacity
	Status         InventoryStatus `json:"status"`
	ManagerID      string          `json:"managerID"`      // Nullable user reference
	OrganizationID string          `json:"organizationID"` // Nullable organization reference
	AuditFields
}

// StockStatus is derived from a stock's quantity and its thresholds.
type StockStatus string

const (
	StockOutOfStock StockStatus = "OUT_OF_STOCK"
	StockLow        StockStatus = "LOW_STOCK"
	StockInStock    StockStatus = "IN_STOCK"
	StockOver       StockStatus = "OVERSTOCK"
)

// Stock holds the quantity of one product in one inventory. The
// (ProductID, InventoryID) pair is unique. Quantity never goes negative,
// and every quantity change adjusts the owning inventory's capacity by the
// same magnitude in the opposite direction.
type Stock struct {
	StockID     string      `json:"stockID"` // Primary key (UUID)
	ProductID   string      `json:"productID"`
	InventoryID string      `json:"inventoryID"`
	Quantity    int64       `json:"quantity"`
	MinQuantity int64       `json:"minQuantity"`
	MaxQuantity int64       `json:"maxQuantity"` // Zero means no upper threshold
	Status      StockStatus `json:"status"`      // Derived, recomputed on every save
	AuditFields
}

// StockStatusFor derives the stock status from a quantity and thresholds.
func StockStatusFor(quantity, minQuantity, maxQuantity int64) StockStatus {
	switch {
	case quantity <= 0:
		return StockOutOfStock
	case quantity < minQuantity:
		return StockLow
	case maxQuantity > 0 && quantity > maxQuantity:
		return StockOver
	default:
		return StockInStock
	}
}

// Recalculate recomputes the derived status from the current quantity.
func (s *Stock) Recalculate() {
	s.Status = StockStatusFor(s.Quantity, s.MinQuantity, s.MaxQuantity)
}

// StockMovement is one quantity delta against a (product, inventory) pair.
// A positive delta adds stock and consumes capacity; a negative delta
// removes stock and returns capacity. Movements are applied atomically as
// a batch by the stock store.
type StockMovement struct {
	InventoryID string
	ProductID   string
	Delta       int64
}
