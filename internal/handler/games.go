package handler

import (
	"errors"
	"net/http"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/Florianperidy/crashledger/internal/service"
)

// GamesHandler handles HTTP requests for mini-game reward claims.
type GamesHandler struct {
	rewardSvc *service.RewardService
}

// NewGamesHandler creates a new GamesHandler.
func NewGamesHandler(rewardSvc *service.RewardService) *GamesHandler {
	return &GamesHandler{rewardSvc: rewardSvc}
}

// rewardRequest is the JSON request body for POST /api/games/reward.
type rewardRequest struct {
	GameType string   `json:"gameType"`
	Score    *float64 `json:"score"`
}

// rewardResponse is the JSON response for a granted reward.
type rewardResponse struct {
	Success  bool   `json:"success"`
	Reward   int    `json:"reward"`
	Currency string `json:"currency"`
	Message  string `json:"message"`
}

// GrantReward handles POST /api/games/reward.
func (h *GamesHandler) GrantReward(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Score == nil || req.GameType == "" {
		WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	result, err := h.rewardSvc.Grant(userIDFrom(r), req.GameType, *req.Score)
	if err != nil {
		if errors.Is(err, domain.ErrPortfolioNotFound) {
			WriteError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to process reward")
		return
	}

	WriteJSON(w, http.StatusOK, rewardResponse{
		Success:  true,
		Reward:   result.Reward,
		Currency: result.Currency,
		Message:  result.Message,
	})
}
