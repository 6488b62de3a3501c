package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
)

type Order struct {
	ID            string
	Total         decimal.Decimal
	TransactionID string
	Status        OrderStatus
	CreatedAt     time.Time
}
