package api

import (
	"fmt"
	"net/http"

	"ewaste-pickup/internal/auth"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/users"
	"ewaste-pickup/internal/utils"
)

type Handler struct {
	Users  *users.Service
	Logger *logger.Logger
}

func NewHandler(svc *users.Service, log *logger.Logger) *Handler {
	return &Handler{Users: svc, Logger: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	user, err := h.Users.Register(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Register: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	result, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, result)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Logout(r.Context(), auth.TokenID(r.Context())); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "logged out"})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Profile(r.Context(), auth.CurrentActor(r.Context()))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, user)
}
