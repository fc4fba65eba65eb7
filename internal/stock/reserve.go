package stock

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"padoca/internal/apperr"
	"padoca/internal/events"
	"padoca/models"
)

// DefaultConsumeLocal is the location recipes are produced from. Both
// fulfillment paths (direct "fazer" requests and order status transitions)
// consume ingredients here unless the caller names another location.
const DefaultConsumeLocal = models.LocalInferior

// decrement applies the conditional atomic write the whole engine is built
// on: subtract required from the stock record matching the ingredient
// identity at local, but only if the current quantity covers it. The
// returned bool reports whether a row matched; false means the precondition
// failed (record missing or stock dropped below required, possibly due to a
// concurrent reservation) and the caller must abort.
func decrement(tx *gorm.DB, nome, unidade, local string, required float64) (bool, error) {
	result := tx.Model(&models.Product{}).
		Where("nome = ? AND unidade = ? AND local = ? AND quantidade >= ?", nome, unidade, local, required).
		Update("quantidade", gorm.Expr("quantidade - ?", required))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReserveForFulfillment deducts the ingredients needed to produce multiplier
// units of the recipe from the given location, appending one consumo_prato
// history entry per ingredient line. The operation is all-or-nothing: any
// insufficient ingredient aborts the transaction and leaves stock untouched.
func ReserveForFulfillment(ctx context.Context, db *gorm.DB, recipeID uint, multiplier float64, local string) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	if multiplier <= 0 {
		return apperr.InvalidInputf("a quantidade a produzir deve ser positiva")
	}
	if !models.ValidLocal(local) {
		return apperr.InvalidInputf("local de estoque desconhecido: %s", local)
	}

	var recipe models.Recipe
	if err := db.WithContext(ctx).Preload("Ingredientes").First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("prato %d não encontrado", recipeID)
		}
		return err
	}
	if len(recipe.Ingredientes) == 0 {
		return apperr.InvalidInputf("o prato %q não possui ingredientes", recipe.Nome)
	}

	// Fast-fail pre-check. Purely an optimization for the common case: the
	// conditional decrements below remain the correctness guarantee when
	// stock moves between this read and the apply pass.
	for _, ing := range recipe.Ingredientes {
		required := ing.Quantidade * multiplier
		var current models.Product
		err := db.WithContext(ctx).
			Where("nome = ? AND unidade = ? AND local = ?", ing.Nome, ing.Unidade, local).
			First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && current.Quantidade < required) {
			return &apperr.InsufficientStockError{Ingrediente: ing.Nome}
		}
		if err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	entries := make([]models.HistoryEntry, 0, len(recipe.Ingredientes))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ing := range recipe.Ingredientes {
			required := ing.Quantidade * multiplier
			ok, err := decrement(tx, ing.Nome, ing.Unidade, local, required)
			if err != nil {
				return err
			}
			if !ok {
				return &apperr.InsufficientStockError{Ingrediente: ing.Nome}
			}
			entry := models.HistoryEntry{
				Data:          now,
				Tipo:          models.TipoConsumoPrato,
				Produto:       ing.Nome,
				ProdutoID:     ing.ProdutoID,
				Quantidade:    required,
				Unidade:       ing.Unidade,
				ValorUnitario: ing.ValorUnitario,
				De:            local,
				Origem:        recipe.Nome,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return err
	}

	events.Emit(ctx, entries...)
	return nil
}

// ReserveForOrder persists the requested status on the order and, exactly
// once, deducts the stock the order consumes. The deduction fires only on the
// pendente -> pago or pendente -> finalizado transition, and that transition
// is claimed with a conditional write inside the deduction transaction, so a
// stale snapshot or a concurrent duplicate request cannot deduct twice. Each
// order item consumes the live recipe (its ingredient list may have drifted
// since the order was created), and all ingredient lines of all items commit
// or roll back as one unit.
func ReserveForOrder(ctx context.Context, db *gorm.DB, order *models.Order, status string) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	if order == nil {
		return apperr.InvalidInputf("pedido não informado")
	}
	if !models.ValidStatus(status) {
		return apperr.InvalidInputf("status inválido: %s", status)
	}

	deduct := (status == models.StatusPago || status == models.StatusFinalizado) &&
		order.Status == models.StatusPendente

	if !deduct {
		if err := db.WithContext(ctx).Model(order).Update("status", status).Error; err != nil {
			return err
		}
		order.Status = status
		return nil
	}

	now := time.Now().UTC()
	origem := "Pedido " + order.ShortReference()
	entries := make([]models.HistoryEntry, 0, len(order.Itens))
	claimed := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Claim the pendente -> status transition. The caller's snapshot may
		// be stale; only the request whose conditional write matches the row
		// performs the deduction.
		claim := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.StatusPendente).
			Update("status", status)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return nil
		}
		claimed = true

		for _, item := range order.Itens {
			var recipe models.Recipe
			if err := tx.Preload("Ingredientes").First(&recipe, item.PratoID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("receita para %s não encontrada", item.Nome)
				}
				return err
			}
			for _, ing := range recipe.Ingredientes {
				required := ing.Quantidade * item.Quantidade
				ok, err := decrement(tx, ing.Nome, ing.Unidade, DefaultConsumeLocal, required)
				if err != nil {
					return err
				}
				if !ok {
					return &apperr.InsufficientStockError{Ingrediente: ing.Nome, Item: item.Nome}
				}
				entry := models.HistoryEntry{
					Data:          now,
					Tipo:          models.TipoUsoVenda,
					Produto:       ing.Nome,
					ProdutoID:     ing.ProdutoID,
					Quantidade:    required,
					Unidade:       ing.Unidade,
					ValorUnitario: ing.ValorUnitario,
					De:            DefaultConsumeLocal,
					Origem:        origem,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
				entries = append(entries, entry)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !claimed {
		// Another request already moved the order past pendente; persist the
		// requested status without touching stock.
		if err := db.WithContext(ctx).Model(order).Update("status", status).Error; err != nil {
			return err
		}
		order.Status = status
		return nil
	}

	order.Status = status
	events.Emit(ctx, entries...)
	return nil
}
