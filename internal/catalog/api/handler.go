package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ewaste-pickup/internal/catalog"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/models"
	"ewaste-pickup/internal/utils"
)

type Handler struct {
	Catalog *catalog.Service
	Logger  *logger.Logger
}

func NewHandler(svc *catalog.Service, log *logger.Logger) *Handler {
	return &Handler{Catalog: svc, Logger: log}
}

// CheckPincode is the public serviceability lookup.
func (h *Handler) CheckPincode(w http.ResponseWriter, r *http.Request) {
	result, err := h.Catalog.CheckServiceability(r.Context(), chi.URLParam(r, "pincode"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, result)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	categories, err := h.Catalog.ListCategories(r.Context(), includeInactive)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, categories)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.Category
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	category, err := h.Catalog.CreateCategory(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateCategory: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.Category
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	category, err := h.Catalog.UpdateCategory(r.Context(), chi.URLParam(r, "categoryId"), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateCategory: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, category)
}

func (h *Handler) ListPincodes(w http.ResponseWriter, r *http.Request) {
	pincodes, err := h.Catalog.ListPincodes(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, pincodes)
}

func (h *Handler) CreatePincode(w http.ResponseWriter, r *http.Request) {
	var req models.Pincode
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	pincode, err := h.Catalog.CreatePincode(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreatePincode: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, pincode)
}
