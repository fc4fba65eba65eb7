package models

import (
	"gorm.io/gorm"
)

// Stock locations. Every product row belongs to exactly one of them.
const (
	LocalSuperior = "superior"
	LocalInferior = "inferior"
)

// Product is a single stock record: the quantity of one ingredient, in one
// unit, at one storage location. The (Nome, Unidade, Local) triple is unique.
type Product struct {
	gorm.Model
	Nome          string  `gorm:"not null;uniqueIndex:idx_produtos_identidade" json:"nome"`
	Quantidade    float64 `gorm:"not null" json:"quantidade"`
	Unidade       string  `gorm:"not null;uniqueIndex:idx_produtos_identidade" json:"unidade"`
	Local         string  `gorm:"not null;uniqueIndex:idx_produtos_identidade" json:"local"`
	ValorUnitario float64 `gorm:"not null;default:0" json:"valorUnitario"`
	MinStock      float64 `gorm:"not null;default:0" json:"minStock"`
	Categoria     string  `gorm:"default:Outros" json:"categoria"`
	Fornecedor    string  `json:"fornecedor"`
	Arquivado     bool    `gorm:"not null;default:false" json:"arquivado"`
}

// ValidLocal reports whether local names a known storage location.
func ValidLocal(local string) bool {
	return local == LocalSuperior || local == LocalInferior
}

// OppositeLocal returns the other storage location, used by transfers.
func OppositeLocal(local string) string {
	if local == LocalSuperior {
		return LocalInferior
	}
	return LocalSuperior
}
