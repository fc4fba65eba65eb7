package models

import (
	"gorm.io/gorm"
)

// Recipe is a named, priced composition of ingredient quantities (a "prato").
type Recipe struct {
	gorm.Model
	Nome         string             `gorm:"uniqueIndex;not null" json:"nome"`
	PrecoVenda   float64            `gorm:"not null;default:0" json:"precoVenda"`
	Imagem       string             `gorm:"default:''" json:"imagem"`
	Ingredientes []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredientes"`
}

// RecipeIngredient is one line of a recipe. Quantidade, Unidade and
// ValorUnitario are frozen at recipe-definition time; they are not re-read
// from the current stock record when the recipe is fulfilled.
type RecipeIngredient struct {
	gorm.Model
	RecipeID      uint    `gorm:"not null" json:"-"`
	ProdutoID     uint    `gorm:"not null" json:"produtoId"`
	Nome          string  `gorm:"not null" json:"nome"`
	Quantidade    float64 `gorm:"not null" json:"quantidade"`
	Unidade       string  `gorm:"not null" json:"unidade"`
	ValorUnitario float64 `gorm:"not null;default:0" json:"valorUnitario"`
}

// CustoUnitario is the cost of producing one unit of the recipe, summed over
// its frozen ingredient lines.
func (r Recipe) CustoUnitario() float64 {
	total := 0.0
	for _, ing := range r.Ingredientes {
		total += ing.ValorUnitario * ing.Quantidade
	}
	return total
}
