package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbill/m/domain"
)

func TestSettingsRoundTrip(t *testing.T) {
	f := newFixture(t)

	loaded, err := f.svc.Settings.Load(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), loaded)

	updated, err := f.svc.Settings.Update(f.ctx, domain.Settings{
		PharmacyName:    "Sri Sai Medicals",
		GSTIN:           "29abcde1234f1z5",
		BillPrefix:      "ssm",
		ExpiryAlertDays: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "SSM", updated.BillPrefix)
	assert.Equal(t, "29ABCDE1234F1Z5", updated.GSTIN)
	assert.Equal(t, updated, f.svc.Settings.Get())

	b := f.stock(t, "Antacid", domain.ScheduleNone, 5, "2")
	bill := f.cashBill(t, b.ID, 1)
	assert.Equal(t, "SSM-000001", bill.BillNumber)
}

func TestSettingsValidation(t *testing.T) {
	f := newFixture(t)
	valid := domain.Settings{PharmacyName: "Care", BillPrefix: "C", ExpiryAlertDays: 30}

	for name, mutate := range map[string]func(*domain.Settings){
		"name":         func(s *domain.Settings) { s.PharmacyName = "" },
		"prefix":       func(s *domain.Settings) { s.BillPrefix = "IN-V" },
		"empty prefix": func(s *domain.Settings) { s.BillPrefix = " " },
		"long prefix":  func(s *domain.Settings) { s.BillPrefix = "PHARMACY123" },
		"days":         func(s *domain.Settings) { s.ExpiryAlertDays = 0 },
	} {
		s := valid
		mutate(&s)
		_, err := f.svc.Settings.Update(f.ctx, s)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}
	assert.Equal(t, domain.DefaultSettings(), f.svc.Settings.Get())
}
