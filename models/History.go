package models

import (
	"time"
)

// History entry kinds. One entry is appended for every stock-affecting
// operation, inside the same transaction as the stock mutation it documents.
const (
	TipoEntrada       = "entrada"
	TipoTransferencia = "transferencia"
	TipoEdicao        = "edicao"
	TipoRemocao       = "remocao"
	TipoSaida         = "saida"
	TipoConsumoPrato  = "consumo_prato"
	TipoUsoVenda      = "uso_venda"
)

// HistoryEntry is an immutable audit record of a stock movement. The table is
// append-only: entries are never updated or deleted, so the model carries its
// own primary key and timestamp instead of gorm.Model.
type HistoryEntry struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Data          time.Time `gorm:"not null;index" json:"data"`
	Tipo          string    `gorm:"not null" json:"tipo"`
	Produto       string    `gorm:"not null" json:"produto"`
	ProdutoID     uint      `json:"produtoId,omitempty"`
	Quantidade    float64   `gorm:"not null" json:"quantidade"`
	Unidade       string    `json:"unidade"`
	ValorUnitario float64   `gorm:"not null;default:0" json:"valorUnitario"`
	De            string    `json:"de,omitempty"`
	Para          string    `json:"para,omitempty"`
	Origem        string    `json:"origem,omitempty"`
}
