package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"padoca/internal/apperr"
	"padoca/internal/stock"
	"padoca/models"
)

// ItemInput is one requested line of a new order: which recipe and how many.
type ItemInput struct {
	PratoID    uint    `json:"pratoId"`
	Quantidade float64 `json:"quantidade"`
}

// Create builds a pending order from the requested items. Sale price and unit
// cost are snapshotted from the recipes' current stored values; both totals
// are accumulated here and never recomputed afterwards. Stock is not touched.
func Create(ctx context.Context, db *gorm.DB, items []ItemInput) (*models.Order, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	if len(items) == 0 {
		return nil, apperr.InvalidInputf("o pedido precisa conter pelo menos um item")
	}

	var (
		totalVenda float64
		totalCusto float64
	)
	itens := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Quantidade <= 0 {
			return nil, apperr.InvalidInputf("quantidade inválida para o prato %d", item.PratoID)
		}

		var recipe models.Recipe
		if err := db.WithContext(ctx).Preload("Ingredientes").First(&recipe, item.PratoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFoundf("prato com ID %d não encontrado", item.PratoID)
			}
			return nil, err
		}

		custoUnitario := recipe.CustoUnitario()
		totalVenda += recipe.PrecoVenda * item.Quantidade
		totalCusto += custoUnitario * item.Quantidade
		itens = append(itens, models.OrderItem{
			PratoID:       recipe.ID,
			Nome:          recipe.Nome,
			PrecoVenda:    recipe.PrecoVenda,
			Quantidade:    item.Quantidade,
			CustoUnitario: custoUnitario,
		})
	}

	order := models.Order{
		Referencia: uuid.NewString(),
		Status:     models.StatusPendente,
		TotalVenda: totalVenda,
		TotalCusto: totalCusto,
		Itens:      itens,
	}
	if err := db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves the order to the requested status, delegating the
// stock deduction (and its exactly-once guarantee) to the reservation engine.
func UpdateStatus(ctx context.Context, db *gorm.DB, orderID uint, status string) (*models.Order, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	if !models.ValidStatus(status) {
		return nil, apperr.InvalidInputf("status inválido: %s", status)
	}

	var order models.Order
	if err := db.WithContext(ctx).Preload("Itens").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("pedido %d não encontrado", orderID)
		}
		return nil, err
	}

	if err := stock.ReserveForOrder(ctx, db, &order, status); err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns every order, newest first.
func List(ctx context.Context, db *gorm.DB) ([]models.Order, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	var result []models.Order
	err := db.WithContext(ctx).Preload("Itens").Order("created_at desc").Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ProfitReport aggregates the committed revenue and cost of paid and
// finalized orders.
type ProfitReport struct {
	TotalVenda float64 `json:"totalVenda"`
	TotalCusto float64 `json:"totalCusto"`
	Lucro      float64 `json:"lucro"`
}

// ProfitSummary sums totals over orders whose status is pago or finalizado
// and reports the difference as profit. Read-only.
func ProfitSummary(ctx context.Context, db *gorm.DB) (ProfitReport, error) {
	if db == nil {
		return ProfitReport{}, gorm.ErrInvalidDB
	}
	var report ProfitReport
	err := db.WithContext(ctx).Model(&models.Order{}).
		Where("status IN ?", []string{models.StatusPago, models.StatusFinalizado}).
		Select("COALESCE(SUM(total_venda), 0) AS total_venda, COALESCE(SUM(total_custo), 0) AS total_custo").
		Scan(&report).Error
	if err != nil {
		return ProfitReport{}, err
	}
	report.Lucro = report.TotalVenda - report.TotalCusto
	return report, nil
}
