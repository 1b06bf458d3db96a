package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"medbill/m/domain"
)

type billLineRequest struct {
	BatchID         int64           `json:"batch_id" validate:"required,gt=0"`
	Quantity        int64           `json:"quantity" validate:"required,gt=0,max=1000000"`
	DiscountPercent decimal.Decimal `json:"discount_percent" validate:"min=0,max=100"`
}

type patientRequest struct {
	Name                 string `json:"name"`
	Age                  int    `json:"age"`
	Gender               string `json:"gender"`
	Address              string `json:"address"`
	DoctorRegistrationNo string `json:"doctor_registration_no"`
	PrescriptionNo       string `json:"prescription_no"`
}

// Patient fields are checked by the billing service so a Schedule H/H1 sale
// gets one consistent message.
type billRequest struct {
	CustomerID    *int64            `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	CustomerName  string            `json:"customer_name" validate:"max=200"`
	CustomerPhone string            `json:"customer_phone" validate:"max=20"`
	DoctorName    string            `json:"doctor_name" validate:"max=200"`
	PaymentMode   string            `json:"payment_mode" validate:"required"`
	Items         []billLineRequest `json:"items" validate:"required,min=1,dive"`
	Patient       *patientRequest   `json:"patient,omitempty"`
}

func (req billRequest) toDomain() domain.CreateBillRequest {
	out := domain.CreateBillRequest{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		DoctorName:    req.DoctorName,
		PaymentMode:   domain.PaymentMode(strings.ToUpper(strings.TrimSpace(req.PaymentMode))),
		Items:         make([]domain.BillLine, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		out.Items = append(out.Items, domain.BillLine{
			BatchID:         it.BatchID,
			Quantity:        it.Quantity,
			DiscountPercent: it.DiscountPercent,
		})
	}
	if p := req.Patient; p != nil {
		out.Patient = &domain.Patient{
			Name:                 p.Name,
			Age:                  p.Age,
			Gender:               p.Gender,
			Address:              p.Address,
			DoctorRegistrationNo: p.DoctorRegistrationNo,
			PrescriptionNo:       p.PrescriptionNo,
		}
	}
	return out
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	bill, err := h.svc.Billing.CreateBill(r.Context(), req.toDomain())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, bill)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "bill")
	if !ok {
		return
	}
	bill, err := h.svc.Billing.GetBill(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bill)
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customerID, err := queryInt(r, "customer_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid customer_id")
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	bills, err := h.svc.Billing.ListBills(r.Context(), domain.BillFilter{
		From:        q.Get("from"),
		To:          q.Get("to"),
		CustomerID:  customerID,
		PaymentMode: domain.PaymentMode(strings.ToUpper(q.Get("payment_mode"))),
		Limit:       limit,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bills)
}

func (h *Handler) billPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "bill")
	if !ok {
		return
	}
	pdf, bill, err := h.svc.Billing.BillPDF(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", bill.BillNumber+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) billReturns(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "bill")
	if !ok {
		return
	}
	returns, err := h.svc.Returns.SalesReturnsForBill(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, returns)
}

type runningBillRequest struct {
	CustomerID    *int64          `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	CustomerName  string          `json:"customer_name" validate:"max=200"`
	CustomerPhone string          `json:"customer_phone" validate:"max=20"`
	MedicineID    *int64          `json:"medicine_id,omitempty" validate:"omitempty,gt=0"`
	MedicineName  string          `json:"medicine_name" validate:"max=200"`
	Quantity      int64           `json:"quantity" validate:"required,gt=0,max=1000000"`
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"min=0"`
	Notes         string          `json:"notes" validate:"max=500"`
}

func (h *Handler) createRunningBill(w http.ResponseWriter, r *http.Request) {
	var req runningBillRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rb, err := h.svc.RunningBills.CreateRunningBill(r.Context(), domain.CreateRunningBillRequest{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		MedicineID:    req.MedicineID,
		MedicineName:  req.MedicineName,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rb)
}

func (h *Handler) listRunningBills(w http.ResponseWriter, r *http.Request) {
	status := domain.RunningBillStatus(strings.ToUpper(r.URL.Query().Get("status")))
	bills, err := h.svc.RunningBills.ListRunningBills(r.Context(), status)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bills)
}

func (h *Handler) linkRunningBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "running bill")
	if !ok {
		return
	}
	var req struct {
		BatchID int64 `json:"batch_id" validate:"required,gt=0"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rb, err := h.svc.RunningBills.LinkRunningBill(r.Context(), id, req.BatchID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rb)
}

func (h *Handler) cancelRunningBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "running bill")
	if !ok {
		return
	}
	rb, err := h.svc.RunningBills.CancelRunningBill(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rb)
}
