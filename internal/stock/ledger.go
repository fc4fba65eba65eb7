package stock

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"padoca/internal/apperr"
	"padoca/internal/events"
	"padoca/models"
)

// ReceiveInput describes new stock arriving at the upper storage.
type ReceiveInput struct {
	Nome          string  `json:"nome"`
	Quantidade    float64 `json:"quantidade"`
	Unidade       string  `json:"unidade"`
	ValorUnitario float64 `json:"valorUnitario"`
	MinStock      float64 `json:"minStock"`
	Categoria     string  `json:"categoria"`
	Fornecedor    string  `json:"fornecedor"`
}

// Receive records incoming stock. New deliveries always land at the superior
// location; an existing (nome, unidade, superior) record is incremented
// instead of duplicated. An entrada history entry is appended in the same
// transaction.
func Receive(ctx context.Context, db *gorm.DB, input ReceiveInput) (*models.Product, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	input.Nome = strings.TrimSpace(input.Nome)
	input.Unidade = strings.TrimSpace(input.Unidade)
	if input.Nome == "" || input.Unidade == "" {
		return nil, apperr.InvalidInputf("nome e unidade são obrigatórios")
	}
	if input.Quantidade <= 0 {
		return nil, apperr.InvalidInputf("a quantidade recebida deve ser positiva")
	}
	if input.ValorUnitario < 0 {
		return nil, apperr.InvalidInputf("o valor unitário não pode ser negativo")
	}

	var product models.Product
	entry := models.HistoryEntry{
		Data:          time.Now().UTC(),
		Tipo:          models.TipoEntrada,
		Produto:       input.Nome,
		Quantidade:    input.Quantidade,
		Unidade:       input.Unidade,
		ValorUnitario: input.ValorUnitario,
		Para:          models.LocalSuperior,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("nome = ? AND unidade = ? AND local = ?", input.Nome, input.Unidade, models.LocalSuperior).
			First(&product).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			categoria := input.Categoria
			if strings.TrimSpace(categoria) == "" {
				categoria = "Outros"
			}
			product = models.Product{
				Nome:          input.Nome,
				Quantidade:    input.Quantidade,
				Unidade:       input.Unidade,
				Local:         models.LocalSuperior,
				ValorUnitario: input.ValorUnitario,
				MinStock:      input.MinStock,
				Categoria:     categoria,
				Fornecedor:    input.Fornecedor,
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			updates := map[string]any{
				"quantidade":     gorm.Expr("quantidade + ?", input.Quantidade),
				"valor_unitario": input.ValorUnitario,
			}
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return err
			}
			product.Quantidade += input.Quantidade
			product.ValorUnitario = input.ValorUnitario
		}
		entry.ProdutoID = product.ID
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, entry)
	return &product, nil
}

// Transfer moves quantidade of the product toward the opposite storage
// location, creating the destination record when the identity does not exist
// there yet. Source decrement and destination increment commit as one unit so
// a crash cannot leave stock lost in transit.
func Transfer(ctx context.Context, db *gorm.DB, productID uint, quantidade float64) (string, error) {
	if db == nil {
		return "", gorm.ErrInvalidDB
	}
	if quantidade <= 0 {
		return "", apperr.InvalidInputf("quantidade inválida")
	}

	var product models.Product
	if err := db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFoundf("produto %d não encontrado", productID)
		}
		return "", err
	}

	destino := models.OppositeLocal(product.Local)
	entry := models.HistoryEntry{
		Data:          time.Now().UTC(),
		Tipo:          models.TipoTransferencia,
		Produto:       product.Nome,
		ProdutoID:     product.ID,
		Quantidade:    quantidade,
		Unidade:       product.Unidade,
		ValorUnitario: product.ValorUnitario,
		De:            product.Local,
		Para:          destino,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := decrement(tx, product.Nome, product.Unidade, product.Local, quantidade)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.InvalidInputf("quantidade inválida")
		}

		var destination models.Product
		err = tx.Where("nome = ? AND unidade = ? AND local = ?", product.Nome, product.Unidade, destino).
			First(&destination).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			destination = models.Product{
				Nome:          product.Nome,
				Quantidade:    quantidade,
				Unidade:       product.Unidade,
				Local:         destino,
				ValorUnitario: product.ValorUnitario,
				MinStock:      product.MinStock,
				Categoria:     product.Categoria,
				Fornecedor:    product.Fornecedor,
			}
			if err := tx.Create(&destination).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&destination).
				Update("quantidade", gorm.Expr("quantidade + ?", quantidade)).Error; err != nil {
				return err
			}
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return "", err
	}

	events.Emit(ctx, entry)
	return destino, nil
}

// EditQuantity overwrites the product's quantity with an absolute value and
// appends an edicao history entry.
func EditQuantity(ctx context.Context, db *gorm.DB, productID uint, quantidade float64) (*models.Product, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	if quantidade < 0 {
		return nil, apperr.InvalidInputf("a quantidade não pode ser negativa")
	}

	var product models.Product
	if err := db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("produto %d não encontrado", productID)
		}
		return nil, err
	}

	entry := models.HistoryEntry{
		Data:          time.Now().UTC(),
		Tipo:          models.TipoEdicao,
		Produto:       product.Nome,
		ProdutoID:     product.ID,
		Quantidade:    quantidade,
		Unidade:       product.Unidade,
		ValorUnitario: product.ValorUnitario,
		Para:          product.Local,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&product).Update("quantidade", quantidade).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	product.Quantidade = quantidade
	events.Emit(ctx, entry)
	return &product, nil
}

// WithdrawQuantity removes quantidade from a product at the inferior storage,
// the only location direct withdrawals are allowed from. The decrement is
// conditional, so a concurrent consumer cannot drive the quantity negative.
func WithdrawQuantity(ctx context.Context, db *gorm.DB, productID uint, quantidade float64) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	if quantidade <= 0 {
		return apperr.InvalidInputf("quantidade maior que disponível ou inválida")
	}

	var product models.Product
	if err := db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("produto %d não encontrado", productID)
		}
		return err
	}
	if product.Local != models.LocalInferior {
		return apperr.InvalidInputf("só é possível remover do estoque inferior")
	}

	entry := models.HistoryEntry{
		Data:          time.Now().UTC(),
		Tipo:          models.TipoSaida,
		Produto:       product.Nome,
		ProdutoID:     product.ID,
		Quantidade:    quantidade,
		Unidade:       product.Unidade,
		ValorUnitario: product.ValorUnitario,
		De:            models.LocalInferior,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := decrement(tx, product.Nome, product.Unidade, product.Local, quantidade)
		if err != nil {
			return err
		}
		if !ok {
			return &apperr.InsufficientStockError{Ingrediente: product.Nome}
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return err
	}

	events.Emit(ctx, entry)
	return nil
}

// Remove deletes the stock record outright. The delete is unscoped so the
// (nome, unidade, local) identity can be recreated later; the removal itself
// stays on the history ledger.
func Remove(ctx context.Context, db *gorm.DB, productID uint) (*models.Product, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var product models.Product
	if err := db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("produto %d não encontrado", productID)
		}
		return nil, err
	}

	entry := models.HistoryEntry{
		Data:          time.Now().UTC(),
		Tipo:          models.TipoRemocao,
		Produto:       product.Nome,
		ProdutoID:     product.ID,
		Quantidade:    product.Quantidade,
		Unidade:       product.Unidade,
		ValorUnitario: product.ValorUnitario,
		De:            product.Local,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&models.Product{}, product.ID).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, entry)
	return &product, nil
}
