package property

import (
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// PropertyDetail is the full read model of one property.
type PropertyDetail struct {
	Property        domain.PropertyRecord
	OwnerFullName   string
	Images          []domain.PropertyImage
	LastPriceChange *domain.PriceChange
	TraceCount      int
}

// PriceChangeResult describes a committed price change.
type PriceChangeResult struct {
	Property domain.PropertyRecord
	OldPrice decimal.Decimal
	NewPrice decimal.Decimal
	Trace    domain.PropertyTrace
}
