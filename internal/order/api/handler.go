package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ewaste-pickup/internal/auth"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/order"
	"ewaste-pickup/internal/utils"
)

type Handler struct {
	Orders *order.Service
	Logger *logger.Logger
}

func NewHandler(orders *order.Service, log *logger.Logger) *Handler {
	return &Handler{Orders: orders, Logger: log}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CreateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	actor := auth.CurrentActor(r.Context())
	o, err := h.Orders.Create(r.Context(), actor, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateOrder: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, o)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentActor(r.Context())
	o, err := h.Orders.Get(r.Context(), actor, chi.URLParam(r, "orderId"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, o)
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentActor(r.Context())
	orders, err := h.Orders.ListForCustomer(r.Context(), actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, orders)
}

func (h *Handler) ListAssignedOrders(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentActor(r.Context())
	orders, err := h.Orders.ListAssigned(r.Context(), actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, orders)
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := utils.ParsePage(r)
	status := r.URL.Query().Get("status")

	orders, total, err := h.Orders.ListAll(r.Context(), status, page, limit)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteList(w, orders, len(orders), total, page, limit)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	// body is optional on cancel
	_ = utils.DecodeAndValidate(r, &req)

	actor := auth.CurrentActor(r.Context())
	o, err := h.Orders.Cancel(r.Context(), actor, chi.URLParam(r, "orderId"), req.Reason)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelOrder: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required"`
		Note   string `json:"note"`
	}
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	actor := auth.CurrentActor(r.Context())
	o, err := h.Orders.UpdateStatus(r.Context(), actor, chi.URLParam(r, "orderId"), req.Status, req.Note)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateOrderStatus: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, o)
}

func (h *Handler) AssignPickupAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PickupBoyID string `json:"pickupBoyId" validate:"required"`
	}
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	actor := auth.CurrentActor(r.Context())
	o, err := h.Orders.AssignAgent(r.Context(), actor, chi.URLParam(r, "orderId"), req.PickupBoyID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AssignPickupAgent: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, o)
}

func (h *Handler) VerifyPickupPin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pin string `json:"pin" validate:"required"`
	}
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	actor := auth.CurrentActor(r.Context())
	o, err := h.Orders.VerifyPin(r.Context(), actor, chi.URLParam(r, "orderId"), req.Pin)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("VerifyPickupPin: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, o)
}

// PickupSlip streams the QR code PNG printed on the collection slip.
func (h *Handler) PickupSlip(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentActor(r.Context())
	png, err := h.Orders.PickupSlip(r.Context(), actor, chi.URLParam(r, "orderId"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
