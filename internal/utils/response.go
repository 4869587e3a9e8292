package utils

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ewaste-pickup/internal/apperr"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Total      *int        `json:"total,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination describes the neighbouring windows of a paged listing.
type Pagination struct {
	Next *Page `json:"next,omitempty"`
	Prev *Page `json:"prev,omitempty"`
}

// ParsePage reads page/limit query params with the 1/10 defaults.
func ParsePage(r *http.Request) (page, limit int) {
	page, limit = 1, 10
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}

// BuildPagination computes next/prev descriptors from the window bounds
// against the total row count.
func BuildPagination(page, limit, total int) *Pagination {
	p := &Pagination{}
	if page*limit < total {
		p.Next = &Page{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		p.Prev = &Page{Page: page - 1, Limit: limit}
	}
	if p.Next == nil && p.Prev == nil {
		return nil
	}
	return p
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// WriteData writes a successful single-object response.
func WriteData(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, APIResponse{Success: true, Data: data})
}

// WriteList writes a paged listing response.
func WriteList(w http.ResponseWriter, data interface{}, count, total, page, limit int) {
	WriteJSON(w, http.StatusOK, APIResponse{
		Success:    true,
		Count:      &count,
		Total:      &total,
		Pagination: BuildPagination(page, limit, total),
		Data:       data,
	})
}

// WriteError maps err onto the status taxonomy. Causes never reach the body.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperr.HTTPStatus(err), APIResponse{
		Success: false,
		Message: apperr.Message(err),
	})
}
