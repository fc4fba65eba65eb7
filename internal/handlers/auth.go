package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "padoca/internal/log"
	"padoca/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid credentials payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "requisição inválida")
		return credentialsRequest{}, false
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Email == "" || payload.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "email e senha são obrigatórios")
		return credentialsRequest{}, false
	}
	return payload, true
}

// SetupStatus reports whether the initial admin account still needs to be
// created, so the front-end can decide between the setup and login screens.
func SetupStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireDatabase(w, r) {
		return
	}

	var count int64
	if err := database.WithContext(r.Context()).Model(&models.User{}).Count(&count).Error; err != nil {
		applog.Error(r.Context(), "failed to count users", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro interno do servidor")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"setupNeeded": count == 0})
}

// SetupAdmin registers the very first account as the administrator. It only
// works while the user table is empty.
func SetupAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireDatabase(w, r) {
		return
	}

	payload, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if len(payload.Password) < 6 {
		writeJSONError(w, http.StatusBadRequest, "a senha deve ter no mínimo 6 caracteres")
		return
	}

	var count int64
	if err := database.WithContext(r.Context()).Model(&models.User{}).Count(&count).Error; err != nil {
		applog.Error(r.Context(), "failed to count users during setup", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro interno do servidor")
		return
	}
	if count > 0 {
		writeJSONError(w, http.StatusForbidden, "a configuração inicial já foi realizada")
		return
	}

	user, err := createUser(r, payload.Email, payload.Password, models.RoleAdmin)
	if err != nil {
		applog.Error(r.Context(), "failed to create admin account", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro interno do servidor")
		return
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session after setup", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro interno do servidor")
		return
	}

	applog.Info(r.Context(), "admin account created", "email", user.Email)
	writeJSON(w, http.StatusCreated, sessionResponse{Message: "administrador criado com sucesso", Email: user.Email, Role: user.Role})
}

// Login authenticates an account and opens a session.
func Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sessionManager == nil || !requireDatabase(w, r) {
		if sessionManager == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "serviço indisponível")
		}
		return
	}

	payload, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := findUserByEmail(r, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusUnauthorized, "email ou senha inválidos")
			return
		}
		applog.Error(r.Context(), "failed to load user during login", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro interno do servidor")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "email ou senha inválidos")
		return
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro interno do servidor")
		return
	}

	applog.Debug(r.Context(), "login succeeded", "email", user.Email, "role", user.Role)
	writeJSON(w, http.StatusOK, sessionResponse{Message: "login realizado com sucesso", Email: user.Email, Role: user.Role})
}

// Logout destroys the current session.
func Logout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "sessão encerrada"})
}

// Register creates a funcionario account. Admin-gated by the router.
func Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireDatabase(w, r) {
		return
	}

	payload, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if len(payload.Password) < 6 {
		writeJSONError(w, http.StatusBadRequest, "a senha deve ter no mínimo 6 caracteres")
		return
	}

	if _, err := findUserByEmail(r, payload.Email); err == nil {
		writeJSONError(w, http.StatusBadRequest, "um usuário com este email já existe")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		applog.Error(r.Context(), "failed to check existing user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro interno do servidor")
		return
	}

	user, err := createUser(r, payload.Email, payload.Password, models.RoleFuncionario)
	if err != nil {
		applog.Error(r.Context(), "failed to register user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro interno do servidor")
		return
	}

	applog.Info(r.Context(), "funcionario registered", "email", user.Email)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "funcionário " + user.Email + " registrado com sucesso"})
}

func createUser(r *http.Request, email, password, role string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: string(hashed),
		Role:         role,
	}

	if err := database.WithContext(r.Context()).Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func findUserByEmail(r *http.Request, email string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	user := &models.User{}
	err := database.WithContext(r.Context()).Where("lower(email) = ?", strings.ToLower(email)).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}
