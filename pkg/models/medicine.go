package models

import (
	"time"

	"github.com/google/uuid"
)

// Stock statuses derived from batch quantities against the low-stock threshold.
const (
	StockInStock    = "IN_STOCK"
	StockLowStock   = "LOW_STOCK"
	StockOutOfStock = "OUT_OF_STOCK"
)

// Medicine is a pharmacy item inside one tenant's partition.
type Medicine struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Manufacturer      string    `json:"manufacturer"`
	Unit              string    `json:"unit"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
}

// Batch is a dated stock lot of a medicine.
type Batch struct {
	ID          uuid.UUID `json:"id"`
	MedicineID  uuid.UUID `json:"medicine_id"`
	BatchNumber string    `json:"batch_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

// MedicineInventory is a medicine with its live batches, expiry-ordered,
// plus derived totals.
type MedicineInventory struct {
	Medicine
	Batches    []Batch `json:"batches"`
	TotalStock int     `json:"total_stock"`
	Status     string  `json:"status"`
}

// ComputeStock fills TotalStock and Status from the attached batches.
func (m *MedicineInventory) ComputeStock() {
	total := 0
	for _, b := range m.Batches {
		total += b.Quantity
	}
	m.TotalStock = total
	switch {
	case total == 0:
		m.Status = StockOutOfStock
	case total < m.LowStockThreshold:
		m.Status = StockLowStock
	default:
		m.Status = StockInStock
	}
}
