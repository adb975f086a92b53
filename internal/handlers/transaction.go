package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/paytrackhq/sms-finance-backend/internal/dto"
	"github.com/paytrackhq/sms-finance-backend/internal/errs"
	"github.com/paytrackhq/sms-finance-backend/internal/models"
	"github.com/paytrackhq/sms-finance-backend/internal/response"
)

type TransactionService interface {
	Create(ctx context.Context, req dto.CreateTransactionRequest) (*models.Transaction, error)
	Get(ctx context.Context, id string) (*models.Transaction, error)
	Update(ctx context.Context, id string, req dto.UpdateTransactionRequest) (*models.Transaction, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int, cursor, search string) (dto.TransactionPage, error)
}

type transactionHandlers struct {
	ResponseHandler response.ResponseHandler
	TransactionSvc  TransactionService
}

func NewTransactionHandlers(deps *Deps) *transactionHandlers {
	return &transactionHandlers{
		ResponseHandler: deps.ResponseHandler,
		TransactionSvc:  deps.TransactionSvc,
	}
}

func (h *transactionHandlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *transactionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateTransactionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	created, err := h.TransactionSvc.Create(r.Context(), body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, created)
}

func (h *transactionHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	page, err := h.TransactionSvc.List(
		r.Context(),
		limit,
		r.URL.Query().Get("cursor"),
		r.URL.Query().Get("search"),
	)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, http.StatusOK, page)
}

func (h *transactionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.TransactionSvc.Get(r.Context(), id)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, http.StatusOK, record)
}

func (h *transactionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body dto.UpdateTransactionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	updated, err := h.TransactionSvc.Update(r.Context(), id, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, http.StatusOK, updated)
}

func (h *transactionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.TransactionSvc.Delete(r.Context(), id); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}
