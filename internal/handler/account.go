package handler

import (
	"errors"
	"net/http"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/Florianperidy/crashledger/internal/service"
)

// AccountHandler handles HTTP requests for registration and login.
type AccountHandler struct {
	accountSvc *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// credentialsRequest is the JSON request body for both auth endpoints.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.accountSvc.Register(req.Email, req.Password); err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			WriteError(w, http.StatusBadRequest, validationErr.Message)
		case errors.Is(err, domain.ErrEmailTaken):
			WriteError(w, http.StatusConflict, "An account with this email already exists.")
		default:
			WriteError(w, http.StatusInternalServerError, "Failed to create account.")
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Login handles POST /api/auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.accountSvc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to sign in.")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}
