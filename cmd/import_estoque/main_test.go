package main

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"padoca/models"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "estoque.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

func TestReadCSVParsesRows(t *testing.T) {
	path := writeCSV(t, "nome,quantidade,unidade,local,valorUnitario,categoria,fornecedor\n"+
		"Farinha de Trigo,25,kg,superior,\"4,50\",Secos,Moinho Paulista\n"+
		"Ovos,60,un,inferior,0.75,,\n")

	products, err := readCSV(path)
	if err != nil {
		t.Fatalf("readCSV returned error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Nome != "Farinha de Trigo" || products[0].Local != models.LocalSuperior {
		t.Fatalf("unexpected first product: %+v", products[0])
	}
	// comma decimals are tolerated
	if products[0].ValorUnitario != 4.5 {
		t.Fatalf("expected valor unitário 4.5, got %v", products[0].ValorUnitario)
	}
	if products[1].Categoria != "Outros" {
		t.Fatalf("expected default categoria, got %q", products[1].Categoria)
	}
}

func TestReadCSVRejectsMissingColumns(t *testing.T) {
	path := writeCSV(t, "nome,quantidade,unidade\nFarinha,10,kg\n")
	if _, err := readCSV(path); err == nil {
		t.Fatal("expected error for missing local column")
	}
}

func TestReadCSVRejectsBadRows(t *testing.T) {
	cases := []string{
		"nome,quantidade,unidade,local\nFarinha,10,kg,porão\n",
		"nome,quantidade,unidade,local\nFarinha,-3,kg,superior\n",
		"nome,quantidade,unidade,local\n,10,kg,superior\n",
	}
	for _, content := range cases {
		path := writeCSV(t, content)
		if _, err := readCSV(path); err == nil {
			t.Fatalf("expected error for csv %q", content)
		}
	}
}

func TestRunImportsAndSkipsExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "padoca.db")
	t.Setenv("DATABASE_URL", dbPath)

	path := writeCSV(t, "nome,quantidade,unidade,local,valorUnitario\n"+
		"Farinha de Trigo,25,kg,superior,4.5\n"+
		"Ovos,60,un,inferior,0.75\n")

	if err := run(path); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	// re-running must not duplicate identities
	if err := run(path); err != nil {
		t.Fatalf("second run returned error: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	var products, entries int64
	if err := db.Model(&models.Product{}).Count(&products).Error; err != nil {
		t.Fatalf("failed to count products: %v", err)
	}
	if err := db.Model(&models.HistoryEntry{}).Count(&entries).Error; err != nil {
		t.Fatalf("failed to count history entries: %v", err)
	}
	if products != 2 {
		t.Fatalf("expected 2 products after reruns, got %d", products)
	}
	if entries != 2 {
		t.Fatalf("expected 2 entrada entries after reruns, got %d", entries)
	}
}

func TestRunRejectsMissingFile(t *testing.T) {
	if err := run(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing csv file")
	}
}
