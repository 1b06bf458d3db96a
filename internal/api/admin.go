package api

import (
	"net/http"

	"medbill/m/domain"
)

type settingsRequest struct {
	PharmacyName    string `json:"pharmacy_name" validate:"required,max=200"`
	Address         string `json:"address" validate:"max=500"`
	Phone           string `json:"phone" validate:"max=20"`
	GSTIN           string `json:"gstin" validate:"omitempty,len=15"`
	DrugLicenseNo   string `json:"drug_license_no" validate:"max=100"`
	BillPrefix      string `json:"bill_prefix" validate:"required"`
	ExpiryAlertDays int    `json:"expiry_alert_days" validate:"required"`
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Settings.Get())
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	settings, err := h.svc.Settings.Update(r.Context(), domain.Settings{
		PharmacyName:    req.PharmacyName,
		Address:         req.Address,
		Phone:           req.Phone,
		GSTIN:           req.GSTIN,
		DrugLicenseNo:   req.DrugLicenseNo,
		BillPrefix:      req.BillPrefix,
		ExpiryAlertDays: req.ExpiryAlertDays,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (h *Handler) listBackups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		respondError(w, http.StatusServiceUnavailable, "backups are not configured")
		return
	}
	snaps, err := h.backups.List()
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snaps)
}

func (h *Handler) createBackup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		respondError(w, http.StatusServiceUnavailable, "backups are not configured")
		return
	}
	snap, err := h.backups.Snapshot(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}
