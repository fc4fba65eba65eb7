package orders

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"padoca/internal/apperr"
	"padoca/models"
)

func withOrdersTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Order{},
		&models.OrderItem{},
		&models.HistoryEntry{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func seedBoloRecipe(t *testing.T, db *gorm.DB) (models.Product, models.Recipe) {
	t.Helper()
	farinha := models.Product{Nome: "Farinha", Quantidade: 50, Unidade: "kg", Local: models.LocalInferior, ValorUnitario: 4}
	if err := db.Create(&farinha).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	recipe := models.Recipe{
		Nome:       "Bolo",
		PrecoVenda: 30,
		Ingredientes: []models.RecipeIngredient{
			{ProdutoID: farinha.ID, Nome: "Farinha", Quantidade: 2, Unidade: "kg", ValorUnitario: 4},
		},
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}
	return farinha, recipe
}

func TestCreateSnapshotsPricesAndTotals(t *testing.T) {
	db, cleanup := withOrdersTestDatabase(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	_, bolo := seedBoloRecipe(t, db)
	pao := models.Recipe{
		Nome:       "Pão Francês",
		PrecoVenda: 1.5,
		Ingredientes: []models.RecipeIngredient{
			{ProdutoID: 1, Nome: "Farinha", Quantidade: 0.1, Unidade: "kg", ValorUnitario: 4},
		},
	}
	if err := db.Create(&pao).Error; err != nil {
		t.Fatalf("failed to seed second recipe: %v", err)
	}

	order, err := Create(ctx, db, []ItemInput{
		{PratoID: bolo.ID, Quantidade: 2},
		{PratoID: pao.ID, Quantidade: 10},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if order.Status != models.StatusPendente {
		t.Fatalf("expected new order pendente, got %q", order.Status)
	}
	if order.Referencia == "" {
		t.Fatal("expected a generated reference")
	}
	// 2 * 30 + 10 * 1.5
	if order.TotalVenda != 75 {
		t.Fatalf("expected total venda 75, got %v", order.TotalVenda)
	}
	// 2 * (2*4) + 10 * (0.1*4)
	if order.TotalCusto != 20 {
		t.Fatalf("expected total custo 20, got %v", order.TotalCusto)
	}
	if len(order.Itens) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Itens))
	}
	if order.Itens[0].Nome != "Bolo" || order.Itens[0].CustoUnitario != 8 {
		t.Fatalf("unexpected first item snapshot: %+v", order.Itens[0])
	}

	// stock is not deducted at creation time
	var farinha models.Product
	if err := db.Where("nome = ?", "Farinha").First(&farinha).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if farinha.Quantidade != 50 {
		t.Fatalf("expected stock untouched at 50, got %v", farinha.Quantidade)
	}
}

func TestCreateValidation(t *testing.T) {
	db, cleanup := withOrdersTestDatabase(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	_, bolo := seedBoloRecipe(t, db)

	if _, err := Create(ctx, db, nil); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty order, got %v", err)
	}
	if _, err := Create(ctx, db, []ItemInput{{PratoID: bolo.ID, Quantidade: 0}}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero quantity, got %v", err)
	}
	if _, err := Create(ctx, db, []ItemInput{{PratoID: 999, Quantidade: 1}}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown recipe, got %v", err)
	}
}

func TestUpdateStatusDeductsThroughEngine(t *testing.T) {
	db, cleanup := withOrdersTestDatabase(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	farinha, bolo := seedBoloRecipe(t, db)

	order, err := Create(ctx, db, []ItemInput{{PratoID: bolo.ID, Quantidade: 3}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := UpdateStatus(ctx, db, order.ID, models.StatusPago)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != models.StatusPago {
		t.Fatalf("expected status pago, got %q", updated.Status)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, farinha.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	// 3 units * 2kg each
	if reloaded.Quantidade != 44 {
		t.Fatalf("expected quantity 44 after payment, got %v", reloaded.Quantidade)
	}

	// finalizing a paid order must not deduct again
	if _, err := UpdateStatus(ctx, db, order.ID, models.StatusFinalizado); err != nil {
		t.Fatalf("UpdateStatus finalize returned error: %v", err)
	}
	if err := db.First(&reloaded, farinha.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if reloaded.Quantidade != 44 {
		t.Fatalf("expected quantity still 44 after finalize, got %v", reloaded.Quantidade)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	db, cleanup := withOrdersTestDatabase(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	if _, err := UpdateStatus(ctx, db, 1, "entregue"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown status, got %v", err)
	}
	if _, err := UpdateStatus(ctx, db, 999, models.StatusPago); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown order, got %v", err)
	}
}

func TestListPreloadsItems(t *testing.T) {
	db, cleanup := withOrdersTestDatabase(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	_, bolo := seedBoloRecipe(t, db)
	if _, err := Create(ctx, db, []ItemInput{{PratoID: bolo.ID, Quantidade: 1}}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := Create(ctx, db, []ItemInput{{PratoID: bolo.ID, Quantidade: 2}}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	result, err := List(ctx, db)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(result))
	}
	for _, order := range result {
		if len(order.Itens) != 1 {
			t.Fatalf("expected items preloaded, got %+v", order)
		}
	}
}

func TestProfitSummaryCountsOnlyCommittedOrders(t *testing.T) {
	db, cleanup := withOrdersTestDatabase(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	empty, err := ProfitSummary(ctx, db)
	if err != nil {
		t.Fatalf("ProfitSummary returned error: %v", err)
	}
	if empty.TotalVenda != 0 || empty.TotalCusto != 0 || empty.Lucro != 0 {
		t.Fatalf("expected zero report on empty database, got %+v", empty)
	}

	seedOrder := func(status string, venda, custo float64) {
		order := models.Order{Referencia: status + "-ref", Status: status, TotalVenda: venda, TotalCusto: custo}
		if err := db.Create(&order).Error; err != nil {
			t.Fatalf("failed to seed %s order: %v", status, err)
		}
	}
	seedOrder(models.StatusPendente, 100, 40)
	seedOrder(models.StatusCancelado, 200, 80)
	seedOrder(models.StatusPago, 50, 20)
	seedOrder(models.StatusFinalizado, 30, 10)

	report, err := ProfitSummary(ctx, db)
	if err != nil {
		t.Fatalf("ProfitSummary returned error: %v", err)
	}
	if report.TotalVenda != 80 {
		t.Fatalf("expected total venda 80, got %v", report.TotalVenda)
	}
	if report.TotalCusto != 30 {
		t.Fatalf("expected total custo 30, got %v", report.TotalCusto)
	}
	if report.Lucro != 50 {
		t.Fatalf("expected lucro 50, got %v", report.Lucro)
	}
}
