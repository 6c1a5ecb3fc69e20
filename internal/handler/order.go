package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/Florianperidy/crashledger/internal/service"
)

// OrderHandler handles HTTP requests for order placement.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// placeOrderRequest is the JSON request body for POST /api/orders.
type placeOrderRequest struct {
	Symbol    string   `json:"symbol"`
	Amount    *float64 `json:"amount"`
	OrderType string   `json:"orderType"`
}

// placeOrderResponse is the JSON response for a settled order.
type placeOrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PlaceOrder handles POST /api/orders.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount == nil {
		WriteError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	message, err := h.orderSvc.PlaceOrder(service.PlaceOrderRequest{
		UserID:    userIDFrom(r),
		Symbol:    req.Symbol,
		Amount:    *req.Amount,
		OrderType: req.OrderType,
	})
	if err != nil {
		mapOrderError(w, err, strings.ToUpper(req.Symbol))
		return
	}

	WriteJSON(w, http.StatusOK, placeOrderResponse{Success: true, Message: message})
}

// mapOrderError maps domain errors to HTTP responses for the order
// endpoint.
func mapOrderError(w http.ResponseWriter, err error, symbol string) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, validationErr.Message)
		return
	}
	var faultErr *domain.FaultError
	if errors.As(err, &faultErr) {
		WriteFault(w, http.StatusBadRequest, faultErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnknownAsset):
		WriteError(w, http.StatusBadRequest, "Unknown asset")
	case errors.Is(err, domain.ErrPortfolioNotFound):
		WriteError(w, http.StatusNotFound, "Portfolio not found")
	case errors.Is(err, domain.ErrCorruptPortfolio):
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("%s balance missing", domain.SymbolFiat))
	case errors.Is(err, domain.ErrInsufficientFunds):
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Insufficient %s balance", domain.SymbolFiat))
	case errors.Is(err, domain.ErrInsufficientBalance):
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Insufficient %s balance", symbol))
	case errors.Is(err, domain.ErrInvalidOrderType):
		WriteError(w, http.StatusBadRequest, "Invalid order type")
	default:
		WriteError(w, http.StatusInternalServerError, "Failed to process order")
	}
}
