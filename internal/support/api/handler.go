package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ewaste-pickup/internal/auth"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/support"
	"ewaste-pickup/internal/utils"
)

type Handler struct {
	Support *support.Service
	Logger  *logger.Logger
}

func NewHandler(svc *support.Service, log *logger.Logger) *Handler {
	return &Handler{Support: svc, Logger: log}
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req support.CreateRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	actor := auth.CurrentActor(r.Context())
	t, err := h.Support.Create(r.Context(), actor, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTicket: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, t)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentActor(r.Context())
	t, err := h.Support.Get(r.Context(), actor, chi.URLParam(r, "ticketId"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, t)
}

func (h *Handler) ListMyTickets(w http.ResponseWriter, r *http.Request) {
	actor := auth.CurrentActor(r.Context())
	tickets, err := h.Support.ListForCustomer(r.Context(), actor)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, tickets)
}

func (h *Handler) ListAllTickets(w http.ResponseWriter, r *http.Request) {
	page, limit := utils.ParsePage(r)
	filter := support.ListFilter{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
		Category: r.URL.Query().Get("category"),
	}

	actor := auth.CurrentActor(r.Context())
	tickets, total, err := h.Support.ListAll(r.Context(), actor, filter, page, limit)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteList(w, tickets, len(tickets), total, page, limit)
}

func (h *Handler) TicketStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Support.Stats(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, stats)
}

func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req support.MessageRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	actor := auth.CurrentActor(r.Context())
	t, err := h.Support.AddMessage(r.Context(), actor, chi.URLParam(r, "ticketId"), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddMessage: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, t)
}

func (h *Handler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required"`
		Note   string `json:"note"`
	}
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	actor := auth.CurrentActor(r.Context())
	t, err := h.Support.UpdateStatus(r.Context(), actor, chi.URLParam(r, "ticketId"), req.Status, req.Note)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateTicketStatus: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, t)
}

func (h *Handler) AssignTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffID string `json:"staffId" validate:"required"`
	}
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	actor := auth.CurrentActor(r.Context())
	t, err := h.Support.Assign(r.Context(), actor, chi.URLParam(r, "ticketId"), req.StaffID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AssignTicket: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, t)
}

func (h *Handler) RateTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating   int    `json:"rating" validate:"required"`
		Feedback string `json:"feedback"`
	}
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	actor := auth.CurrentActor(r.Context())
	t, err := h.Support.Rate(r.Context(), actor, chi.URLParam(r, "ticketId"), req.Rating, req.Feedback)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RateTicket: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteData(w, http.StatusOK, t)
}
