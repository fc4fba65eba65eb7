package models

import (
	"gorm.io/gorm"
)

// Order lifecycle statuses. Stock is deducted exactly once, on the
// pendente -> pago or pendente -> finalizado transition.
const (
	StatusPendente   = "pendente"
	StatusPago       = "pago"
	StatusFinalizado = "finalizado"
	StatusCancelado  = "cancelado"
)

// Order is a customer order. Itens and both totals are snapshotted from the
// recipes' stored values at creation time and never recomputed afterwards.
type Order struct {
	gorm.Model
	Referencia string      `gorm:"uniqueIndex;not null" json:"referencia"`
	Status     string      `gorm:"not null;default:pendente" json:"status"`
	TotalVenda float64     `gorm:"not null" json:"totalVenda"`
	TotalCusto float64     `gorm:"not null" json:"totalCusto"`
	Itens      []OrderItem `gorm:"foreignKey:OrderID" json:"itens"`
}

// OrderItem is one purchased recipe line inside an order.
type OrderItem struct {
	gorm.Model
	OrderID       uint    `gorm:"not null" json:"-"`
	PratoID       uint    `gorm:"not null" json:"pratoId"`
	Nome          string  `gorm:"not null" json:"nome"`
	PrecoVenda    float64 `gorm:"not null" json:"precoVenda"`
	Quantidade    float64 `gorm:"not null" json:"quantidade"`
	CustoUnitario float64 `gorm:"not null" json:"custoUnitario"`
}

// ValidStatus reports whether status names a known order status.
func ValidStatus(status string) bool {
	switch status {
	case StatusPendente, StatusPago, StatusFinalizado, StatusCancelado:
		return true
	}
	return false
}

// ShortReference returns the tail of the order reference used as the origin
// label on history entries.
func (o Order) ShortReference() string {
	if len(o.Referencia) <= 6 {
		return o.Referencia
	}
	return o.Referencia[len(o.Referencia)-6:]
}
