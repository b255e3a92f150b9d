/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain model from the external contract. Prices travel as decimal
  strings ("25.50") to avoid float rounding at the boundary.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the domain, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/agrovet/stock-engine/inventory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ProductDTO represents a product in API responses.
type ProductDTO struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Available   bool   `json:"available"`
	ExpiryDate  string `json:"expiry_date"`
}

// CreateProductRequest is the request to register a product.
type CreateProductRequest struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	ExpiryDate  string `json:"expiry_date"`
}

// UpdateStockRequest is the request to set a product's quantity.
// Quantity is a pointer so a missing field is distinguishable from 0.
type UpdateStockRequest struct {
	Quantity *int   `json:"quantity"`
	Reason   string `json:"reason"`
}

// StockEntryDTO represents one journal entry in API responses.
type StockEntryDTO struct {
	ProductCode      int    `json:"product_code"`
	ProductName      string `json:"product_name"`
	PreviousQuantity int    `json:"previous_quantity"`
	NewQuantity      int    `json:"new_quantity"`
	Reason           string `json:"reason"`
	RecordedAt       string `json:"recorded_at"`
}

// AlertDTO pairs a low-stock product with its effective threshold.
type AlertDTO struct {
	Code      int    `json:"code"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

// ScanResponse is the result of one edge-detector run.
type ScanResponse struct {
	New     []AlertDTO `json:"new"`
	Current []AlertDTO `json:"current"`
}

// ThresholdDTO reports the effective threshold for a product.
type ThresholdDTO struct {
	Code      int `json:"code"`
	Threshold int `json:"threshold"`
}

// SetThresholdRequest configures a product's minimum quantity.
type SetThresholdRequest struct {
	Threshold *int `json:"threshold"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toProductDTO(p inventory.Product) ProductDTO {
	return ProductDTO{
		Code:        p.Code,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price.String(),
		Quantity:    p.Quantity,
		Available:   p.Available,
		ExpiryDate:  p.ExpiryDate,
	}
}

func toProductDTOs(products []inventory.Product) []ProductDTO {
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	return dtos
}

func toStockEntryDTOs(entries []inventory.StockEntry) []StockEntryDTO {
	dtos := make([]StockEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = StockEntryDTO{
			ProductCode:      e.ProductCode,
			ProductName:      e.ProductName,
			PreviousQuantity: e.PreviousQuantity,
			NewQuantity:      e.NewQuantity,
			Reason:           e.Reason,
			RecordedAt:       e.RecordedAt.String(),
		}
	}
	return dtos
}
