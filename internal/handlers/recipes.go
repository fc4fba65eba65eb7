package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "padoca/internal/log"
	"padoca/internal/stock"
	"padoca/models"
)

type recipeIngredientRequest struct {
	ProdutoID     uint    `json:"produtoId"`
	Nome          string  `json:"nome"`
	Quantidade    float64 `json:"quantidade"`
	Unidade       string  `json:"unidade"`
	ValorUnitario float64 `json:"valorUnitario"`
}

type recipeCreateRequest struct {
	Nome         string                    `json:"nome"`
	PrecoVenda   float64                   `json:"precoVenda"`
	Ingredientes []recipeIngredientRequest `json:"ingredientes"`
}

type makeRecipeRequest struct {
	Quantidade *float64 `json:"quantidade"`
	Local      string   `json:"local"`
}

// PublicMenu lists every recipe sorted by name. The one route the customer
// configurator calls without authentication.
func PublicMenu(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireDatabase(w, r) {
		return
	}

	var recipes []models.Recipe
	err := database.WithContext(r.Context()).
		Preload("Ingredientes").
		Order("nome asc").
		Find(&recipes).Error
	if err != nil {
		applog.Error(r.Context(), "failed to list public menu", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro ao buscar o cardápio")
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// RecipeResource handles the authenticated recipe routes: GET /api/pratos
// lists, POST creates (admin), DELETE /api/pratos/{id} removes (admin) and
// POST /api/pratos/{id}/fazer produces the recipe, deducting stock.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	p := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/pratos"), "/")
	if p == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			if requireAdminRole(w, r) {
				createRecipe(w, r)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	segments := strings.Split(p, "/")
	id, ok := parseID(w, r, segments[0])
	if !ok {
		return
	}

	if len(segments) > 1 && segments[1] == "fazer" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		makeRecipe(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		if requireAdminRole(w, r) {
			deleteRecipe(w, r, id)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	var recipes []models.Recipe
	err := database.WithContext(r.Context()).
		Preload("Ingredientes").
		Order("nome asc").
		Find(&recipes).Error
	if err != nil {
		applog.Error(r.Context(), "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro ao buscar pratos")
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// decodeRecipeRequest accepts either a JSON body or a multipart form whose
// "ingredientes" field carries the ingredient lines as JSON, with an optional
// "imagem" file the way the admin front-end submits it.
func decodeRecipeRequest(r *http.Request) (recipeCreateRequest, string, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var payload recipeCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return recipeCreateRequest{}, "", fmt.Errorf("requisição inválida")
		}
		return payload, "", nil
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return recipeCreateRequest{}, "", fmt.Errorf("requisição inválida")
	}

	payload := recipeCreateRequest{Nome: strings.TrimSpace(r.FormValue("nome"))}
	if raw := strings.TrimSpace(r.FormValue("precoVenda")); raw != "" {
		if _, err := fmt.Sscanf(raw, "%f", &payload.PrecoVenda); err != nil {
			return recipeCreateRequest{}, "", fmt.Errorf("preço de venda inválido")
		}
	}
	if raw := r.FormValue("ingredientes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload.Ingredientes); err != nil {
			return recipeCreateRequest{}, "", fmt.Errorf("ingredientes inválidos")
		}
	}

	imagePath, err := saveRecipeImage(r)
	if err != nil {
		return recipeCreateRequest{}, "", err
	}
	return payload, imagePath, nil
}

func saveRecipeImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("imagem")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("imagem inválida")
	}
	defer file.Close()

	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("imagem-%d%s", time.Now().UnixNano(), filepath.Ext(header.Filename))
	destination := filepath.Join(imageDir, name)
	out, err := os.Create(destination)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return path.Join("public/images", name), nil
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	payload, imagePath, err := decodeRecipeRequest(r)
	if err != nil {
		applog.Debug(r.Context(), "invalid recipe payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload.Nome = strings.TrimSpace(payload.Nome)
	if payload.Nome == "" || len(payload.Ingredientes) == 0 {
		writeJSONError(w, http.StatusBadRequest, "nome e ingredientes são obrigatórios")
		return
	}
	if payload.PrecoVenda < 0 {
		writeJSONError(w, http.StatusBadRequest, "o preço de venda não pode ser negativo")
		return
	}

	ingredientes := make([]models.RecipeIngredient, 0, len(payload.Ingredientes))
	for _, ing := range payload.Ingredientes {
		nome := strings.TrimSpace(ing.Nome)
		if ing.ProdutoID == 0 || nome == "" || strings.TrimSpace(ing.Unidade) == "" {
			writeJSONError(w, http.StatusBadRequest, "ingrediente inválido: "+nome)
			return
		}
		if ing.Quantidade <= 0 || ing.ValorUnitario < 0 {
			writeJSONError(w, http.StatusBadRequest, "ingrediente inválido: "+nome)
			return
		}
		var produto models.Product
		if err := database.WithContext(r.Context()).First(&produto, ing.ProdutoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeJSONError(w, http.StatusNotFound, "produto não encontrado para o ingrediente "+nome)
				return
			}
			applog.Error(r.Context(), "failed to resolve ingredient product", "error", err, "produtoId", ing.ProdutoID)
			writeJSONError(w, http.StatusInternalServerError, "erro ao criar o prato")
			return
		}
		ingredientes = append(ingredientes, models.RecipeIngredient{
			ProdutoID:     ing.ProdutoID,
			Nome:          nome,
			Quantidade:    ing.Quantidade,
			Unidade:       strings.TrimSpace(ing.Unidade),
			ValorUnitario: ing.ValorUnitario,
		})
	}

	var count int64
	if err := database.WithContext(r.Context()).Model(&models.Recipe{}).Where("nome = ?", payload.Nome).Count(&count).Error; err != nil {
		applog.Error(r.Context(), "failed to check recipe name", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro ao criar o prato")
		return
	}
	if count > 0 {
		writeJSONError(w, http.StatusConflict, "o prato com nome \""+payload.Nome+"\" já existe")
		return
	}

	recipe := models.Recipe{
		Nome:         payload.Nome,
		PrecoVenda:   payload.PrecoVenda,
		Imagem:       imagePath,
		Ingredientes: ingredientes,
	}
	if err := database.WithContext(r.Context()).Create(&recipe).Error; err != nil {
		applog.Error(r.Context(), "failed to create recipe", "error", err, "nome", payload.Nome)
		writeJSONError(w, http.StatusInternalServerError, "erro ao criar o prato")
		return
	}

	writeJSON(w, http.StatusCreated, recipe)
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, id uint) {
	var recipe models.Recipe
	if err := database.WithContext(r.Context()).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "prato não encontrado")
			return
		}
		applog.Error(r.Context(), "failed to load recipe for delete", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "erro ao remover o prato")
		return
	}

	err := database.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Recipe{}, recipe.ID).Error
	})
	if err != nil {
		applog.Error(r.Context(), "failed to delete recipe", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "erro ao remover o prato")
		return
	}

	if recipe.Imagem != "" {
		imagePath := filepath.Join(imageDir, filepath.Base(recipe.Imagem))
		if err := os.Remove(imagePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			applog.Warn(r.Context(), "failed to remove recipe image", "error", err, "path", imagePath)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "prato \"" + recipe.Nome + "\" removido com sucesso"})
}

func makeRecipe(w http.ResponseWriter, r *http.Request, id uint) {
	quantidade := 1.0
	local := stock.DefaultConsumeLocal
	if r.Body != nil {
		var body makeRecipeRequest
		err := json.NewDecoder(r.Body).Decode(&body)
		switch {
		case errors.Is(err, io.EOF):
			// empty body keeps the defaults
		case err != nil:
			applog.Debug(r.Context(), "invalid make-recipe payload", "error", err)
			writeJSONError(w, http.StatusBadRequest, "requisição inválida")
			return
		default:
			// an absent quantidade defaults to one unit; an explicit value is
			// passed through so the engine can reject non-positive requests
			if body.Quantidade != nil {
				quantidade = *body.Quantidade
			}
			if body.Local != "" {
				local = body.Local
			}
		}
	}

	if err := stock.ReserveForFulfillment(r.Context(), database, id, quantidade, local); err != nil {
		writeDomainError(w, r, err, "erro ao processar o prato")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "prato feito com sucesso e estoque atualizado"})
}
