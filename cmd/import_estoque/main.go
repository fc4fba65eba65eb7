package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"padoca/internal/config"
	"padoca/internal/db"
	"padoca/models"
)

// import_estoque loads an initial inventory from a CSV file with the columns
// nome, quantidade, unidade, local, valorUnitario, minStock, categoria and
// fornecedor. Rows whose (nome, unidade, local) identity already exists are
// skipped, so the importer can be re-run safely.
func main() {
	csvPath := "estoque.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	products, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	imported := 0
	skipped := 0
	for idx, product := range products {
		err := database.Transaction(func(tx *gorm.DB) error {
			var existing models.Product
			err := tx.Where("nome = ? AND unidade = ? AND local = ?", product.Nome, product.Unidade, product.Local).
				First(&existing).Error
			if err == nil {
				skipped++
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			imported++
			return tx.Create(&models.HistoryEntry{
				Data:          time.Now().UTC(),
				Tipo:          models.TipoEntrada,
				Produto:       product.Nome,
				ProdutoID:     product.ID,
				Quantidade:    product.Quantidade,
				Unidade:       product.Unidade,
				ValorUnitario: product.ValorUnitario,
				Para:          product.Local,
			}).Error
		})
		if err != nil {
			return fmt.Errorf("import row %d (%s): %w", idx+1, product.Nome, err)
		}
	}

	fmt.Printf("imported %d products, skipped %d existing\n", imported, skipped)
	return nil
}

func readCSV(path string) ([]models.Product, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	for _, required := range []string{"nome", "quantidade", "unidade", "local"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var products []models.Product
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		product, err := buildProduct(record, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		products = append(products, product)
	}
	return products, nil
}

func buildProduct(record []string, columns map[string]int) (models.Product, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	number := func(name string) (float64, error) {
		raw := field(name)
		if raw == "" {
			return 0, nil
		}
		return strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	}

	nome := field("nome")
	unidade := field("unidade")
	local := field("local")
	if nome == "" || unidade == "" {
		return models.Product{}, fmt.Errorf("nome and unidade are required")
	}
	if !models.ValidLocal(local) {
		return models.Product{}, fmt.Errorf("unknown local %q", local)
	}

	quantidade, err := number("quantidade")
	if err != nil {
		return models.Product{}, fmt.Errorf("parse quantidade: %w", err)
	}
	if quantidade < 0 {
		return models.Product{}, fmt.Errorf("quantidade must not be negative")
	}
	valorUnitario, err := number("valorunitario")
	if err != nil {
		return models.Product{}, fmt.Errorf("parse valorUnitario: %w", err)
	}
	minStock, err := number("minstock")
	if err != nil {
		return models.Product{}, fmt.Errorf("parse minStock: %w", err)
	}

	categoria := field("categoria")
	if categoria == "" {
		categoria = "Outros"
	}

	return models.Product{
		Nome:          nome,
		Quantidade:    quantidade,
		Unidade:       unidade,
		Local:         local,
		ValorUnitario: valorUnitario,
		MinStock:      minStock,
		Categoria:     categoria,
		Fornecedor:    field("fornecedor"),
	}, nil
}
