package api

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"medbill/m/domain"
)

type customerRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Phone       string          `json:"phone" validate:"omitempty,max=20"`
	Address     string          `json:"address"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

func (req customerRequest) toDomain() domain.Customer {
	c := domain.Customer{Name: req.Name, Address: req.Address, CreditLimit: req.CreditLimit}
	if req.Phone != "" {
		phone := req.Phone
		c.Phone = &phone
	}
	return c
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.Customers.ListCustomers(r.Context(), strings.TrimSpace(r.URL.Query().Get("query")))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c, err := h.svc.Customers.CreateCustomer(r.Context(), req.toDomain())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "customer")
	if !ok {
		return
	}
	c, err := h.svc.Customers.GetCustomer(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "customer")
	if !ok {
		return
	}
	var req customerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c := req.toDomain()
	c.ID = id
	updated, err := h.svc.Customers.UpdateCustomer(r.Context(), c)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

type paymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentMode string          `json:"payment_mode" validate:"omitempty,max=20"`
	Notes       string          `json:"notes" validate:"max=500"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "customer")
	if !ok {
		return
	}
	var req paymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	entry, err := h.svc.Customers.RecordPayment(r.Context(), id, domain.PaymentRequest{
		Amount:      req.Amount,
		PaymentMode: req.PaymentMode,
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) customerLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "customer")
	if !ok {
		return
	}
	entries, err := h.svc.Customers.Ledger(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) balanceCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "customer")
	if !ok {
		return
	}
	check, err := h.svc.Customers.VerifyBalance(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"check":      check,
		"consistent": check.Consistent(),
	})
}
