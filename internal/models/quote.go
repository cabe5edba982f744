package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quote — коммерческое предложение. Позиции храним JSON-колонкой,
// итог пересчитывается на сервере при каждой записи.
type Quote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID   uint     `gorm:"index;not null" json:"company_id"`
	Company     *Company `json:"company,omitempty"`
	ProjectID   *uint    `gorm:"index" json:"project_id"`
	CreatedByID uint     `gorm:"index;not null" json:"created_by_id"`

	Number     string         `gorm:"uniqueIndex;size:64;not null" json:"number"`
	Status     string         `gorm:"size:32;not null;default:draft" json:"status"` // draft|sent|accepted|rejected
	Items      datatypes.JSON `json:"items"`
	Total      float64        `json:"total"`
	ValidUntil *time.Time     `json:"valid_until"`
	Notes      string         `gorm:"type:text" json:"notes"`
}

// QuoteItem — элемент списка позиций внутри Quote.Items.
type QuoteItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

func QuoteTotal(items []QuoteItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Quantity * it.UnitPrice
	}
	return sum
}
