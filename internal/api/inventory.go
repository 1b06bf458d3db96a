package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"medbill/m/domain"
)

type medicineRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	GenericName  string          `json:"generic_name"`
	Manufacturer string          `json:"manufacturer"`
	HSNCode      string          `json:"hsn_code" validate:"omitempty,numeric,max=8"`
	Category     string          `json:"category"`
	DrugType     string          `json:"drug_type"`
	PackSize     string          `json:"pack_size"`
	Unit         string          `json:"unit"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	Schedule     domain.Schedule `json:"schedule" validate:"omitempty,oneof=NONE H H1"`
	ReorderLevel int64           `json:"reorder_level" validate:"min=0"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

func (req medicineRequest) toDomain() domain.Medicine {
	m := domain.Medicine{
		Name:         req.Name,
		GenericName:  req.GenericName,
		Manufacturer: req.Manufacturer,
		HSNCode:      req.HSNCode,
		Category:     req.Category,
		DrugType:     req.DrugType,
		PackSize:     req.PackSize,
		Unit:         req.Unit,
		GSTRate:      req.GSTRate,
		Schedule:     req.Schedule,
		ReorderLevel: req.ReorderLevel,
		IsActive:     true,
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	return m
}

func (h *Handler) searchMedicines(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	medicines, err := h.svc.Inventory.SearchMedicines(r.Context(), strings.TrimSpace(r.URL.Query().Get("query")), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	m, err := h.svc.Inventory.CreateMedicine(r.Context(), req.toDomain())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "medicine")
	if !ok {
		return
	}
	m, err := h.svc.Inventory.GetMedicine(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "medicine")
	if !ok {
		return
	}
	var req medicineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	m := req.toDomain()
	m.ID = id
	updated, err := h.svc.Inventory.UpdateMedicine(r.Context(), m)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) medicineBatches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "medicine")
	if !ok {
		return
	}
	batches, err := h.svc.Inventory.ListBatches(r.Context(), id, queryBool(r, "in_stock"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, batches)
}

type batchRequest struct {
	MedicineID        int64           `json:"medicine_id" validate:"required,gt=0"`
	SupplierID        int64           `json:"supplier_id" validate:"required,gt=0"`
	BatchNumber       string          `json:"batch_number" validate:"required,max=50"`
	ExpiryDate        string          `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Quantity          int64           `json:"quantity" validate:"required,gt=0,max=1000000"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	MRP               decimal.Decimal `json:"mrp"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	PurchaseInvoiceNo string          `json:"purchase_invoice_no"`
}

func (h *Handler) receiveBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	b, err := h.svc.Inventory.ReceiveBatch(r.Context(), domain.Batch{
		MedicineID:        req.MedicineID,
		SupplierID:        req.SupplierID,
		BatchNumber:       req.BatchNumber,
		ExpiryDate:        req.ExpiryDate,
		Quantity:          req.Quantity,
		PurchasePrice:     req.PurchasePrice,
		MRP:               req.MRP,
		SellingPrice:      req.SellingPrice,
		PurchaseInvoiceNo: req.PurchaseInvoiceNo,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	medicineID, err := queryInt(r, "medicine_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine_id")
		return
	}
	batches, err := h.svc.Inventory.ListBatches(r.Context(), medicineID, queryBool(r, "in_stock"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, batches)
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "batch")
	if !ok {
		return
	}
	b, err := h.svc.Inventory.GetBatch(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (h *Handler) restockBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "batch")
	if !ok {
		return
	}
	var req struct {
		Quantity int64 `json:"quantity" validate:"required,gt=0,max=1000000"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}
	b, err := h.svc.Inventory.RestockBatch(r.Context(), id, req.Quantity)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

type supplierRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone" validate:"max=20"`
	Email         string `json:"email" validate:"omitempty,email"`
	GSTIN         string `json:"gstin" validate:"omitempty,len=15"`
	Address       string `json:"address"`
}

func (req supplierRequest) toDomain() domain.Supplier {
	return domain.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		GSTIN:         req.GSTIN,
		Address:       req.Address,
	}
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.svc.Suppliers.ListSuppliers(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sup, err := h.svc.Suppliers.CreateSupplier(r.Context(), req.toDomain())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sup)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "supplier")
	if !ok {
		return
	}
	sup, err := h.svc.Suppliers.GetSupplier(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sup)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "supplier")
	if !ok {
		return
	}
	var req supplierRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sup := req.toDomain()
	sup.ID = id
	updated, err := h.svc.Suppliers.UpdateSupplier(r.Context(), sup)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
