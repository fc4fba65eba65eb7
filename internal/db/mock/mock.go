package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "padoca/internal/log"
	"padoca/models"
)

// New returns an in-memory sqlite database seeded with representative
// bakery data: an admin account, stock at both locations and one recipe.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:padoca-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Order{},
		&models.OrderItem{},
		&models.HistoryEntry{},
		&models.User{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("padoca"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        "admin@padoca.local",
		PasswordHash: string(password),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	products := []models.Product{
		{Nome: "Farinha de Trigo", Quantidade: 25, Unidade: "kg", Local: models.LocalSuperior, ValorUnitario: 4.5, MinStock: 5, Categoria: "Secos", Fornecedor: "Moinho Paulista"},
		{Nome: "Farinha de Trigo", Quantidade: 10, Unidade: "kg", Local: models.LocalInferior, ValorUnitario: 4.5, MinStock: 2, Categoria: "Secos", Fornecedor: "Moinho Paulista"},
		{Nome: "Açúcar Refinado", Quantidade: 8, Unidade: "kg", Local: models.LocalInferior, ValorUnitario: 3.8, MinStock: 2, Categoria: "Secos"},
		{Nome: "Ovos", Quantidade: 60, Unidade: "un", Local: models.LocalInferior, ValorUnitario: 0.75, MinStock: 12, Categoria: "Frios", Fornecedor: "Granja Boa Vista"},
		{Nome: "Chocolate em Pó", Quantidade: 3, Unidade: "kg", Local: models.LocalSuperior, ValorUnitario: 22.0, MinStock: 1, Categoria: "Confeitaria"},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			return err
		}
	}

	farinha := products[1]
	acucar := products[2]
	ovos := products[3]
	recipe := &models.Recipe{
		Nome:       "Bolo de Cenoura",
		PrecoVenda: 42.0,
		Ingredientes: []models.RecipeIngredient{
			{ProdutoID: farinha.ID, Nome: farinha.Nome, Quantidade: 0.5, Unidade: "kg", ValorUnitario: farinha.ValorUnitario},
			{ProdutoID: acucar.ID, Nome: acucar.Nome, Quantidade: 0.3, Unidade: "kg", ValorUnitario: acucar.ValorUnitario},
			{ProdutoID: ovos.ID, Nome: ovos.Nome, Quantidade: 3, Unidade: "un", ValorUnitario: ovos.ValorUnitario},
		},
	}
	if err := db.Create(recipe).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded",
		"users", 1,
		"products", len(products),
		"recipes", 1,
	)
	return nil
}
