package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID              string          `json:"id"`
	Phone           string          `json:"phone"`
	Name            string          `json:"name"`
	CashbackBalance decimal.Decimal `json:"cashback_balance"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
