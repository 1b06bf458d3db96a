package api

import (
	"net/http"
	"strings"

	"medbill/m/domain"
)

type salesReturnRequest struct {
	BillID int64 `json:"bill_id" validate:"required,gt=0"`
	Lines  []struct {
		BillItemID int64 `json:"bill_item_id" validate:"required,gt=0"`
		Quantity   int64 `json:"quantity" validate:"required,gt=0,max=1000000"`
	} `json:"lines" validate:"required,min=1,dive"`
	RefundMode string `json:"refund_mode" validate:"required"`
	Reason     string `json:"reason" validate:"max=500"`
}

func (h *Handler) createSalesReturn(w http.ResponseWriter, r *http.Request) {
	var req salesReturnRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in := domain.SalesReturnRequest{
		BillID:     req.BillID,
		RefundMode: domain.RefundMode(strings.ToUpper(strings.TrimSpace(req.RefundMode))),
		Reason:     req.Reason,
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, domain.ReturnLine{BillItemID: l.BillItemID, Quantity: l.Quantity})
	}
	result, err := h.svc.Returns.CreateSalesReturn(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

type supplierReturnRequest struct {
	SupplierID int64  `json:"supplier_id" validate:"required,gt=0"`
	BatchID    int64  `json:"batch_id" validate:"required,gt=0"`
	Quantity   int64  `json:"quantity" validate:"required,gt=0,max=1000000"`
	Reason     string `json:"reason" validate:"max=500"`
}

func (h *Handler) createSupplierReturn(w http.ResponseWriter, r *http.Request) {
	var req supplierReturnRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ret, err := h.svc.Returns.CreateSupplierReturn(r.Context(), domain.SupplierReturnRequest{
		SupplierID: req.SupplierID,
		BatchID:    req.BatchID,
		Quantity:   req.Quantity,
		Reason:     req.Reason,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ret)
}

func (h *Handler) listSupplierReturns(w http.ResponseWriter, r *http.Request) {
	status := domain.SupplierReturnStatus(strings.ToUpper(r.URL.Query().Get("status")))
	returns, err := h.svc.Returns.ListSupplierReturns(r.Context(), status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, returns)
}

func (h *Handler) updateSupplierReturnStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "supplier return")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" validate:"required,oneof=APPROVED COMPLETED REJECTED approved completed rejected"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ret, err := h.svc.Returns.UpdateSupplierReturnStatus(r.Context(), id, domain.SupplierReturnStatus(strings.ToUpper(req.Status)))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ret)
}
