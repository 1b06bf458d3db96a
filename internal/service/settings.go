package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"medbill/m/domain"
	"medbill/m/internal/appstate"
	"medbill/m/internal/database"
	"medbill/m/internal/store"
)

var validate = validator.New()

const billPrefixRule = "required,alphanum,max=10"

type SettingsService struct {
	db    *sqlx.DB
	state *appstate.State
}

// Load reads the settings table into the application state, filling missing
// keys with defaults.
func (s *SettingsService) Load(ctx context.Context) (domain.Settings, error) {
	values, err := store.New(s.db).AllSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	settings := domain.DefaultSettings()
	for key, value := range values {
		switch key {
		case domain.SettingPharmacyName:
			settings.PharmacyName = value
		case domain.SettingAddress:
			settings.Address = value
		case domain.SettingPhone:
			settings.Phone = value
		case domain.SettingGSTIN:
			settings.GSTIN = value
		case domain.SettingDrugLicenseNo:
			settings.DrugLicenseNo = value
		case domain.SettingBillPrefix:
			if value != "" {
				settings.BillPrefix = value
			}
		case domain.SettingExpiryAlertDays:
			if days, err := strconv.Atoi(value); err == nil && days > 0 {
				settings.ExpiryAlertDays = days
			}
		}
	}
	s.state.SetSettings(settings)
	return settings, nil
}

func (s *SettingsService) Get() domain.Settings {
	return s.state.Settings()
}

func (s *SettingsService) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	settings.PharmacyName = strings.TrimSpace(settings.PharmacyName)
	settings.BillPrefix = strings.ToUpper(strings.TrimSpace(settings.BillPrefix))
	settings.GSTIN = strings.ToUpper(strings.TrimSpace(settings.GSTIN))
	switch {
	case settings.PharmacyName == "":
		return domain.Settings{}, domain.Invalid("pharmacy name is required")
	case validate.Var(settings.BillPrefix, billPrefixRule) != nil:
		return domain.Settings{}, domain.Invalid("bill prefix must be 1-10 letters or digits")
	case settings.ExpiryAlertDays < 1 || settings.ExpiryAlertDays > 365:
		return domain.Settings{}, domain.Invalid("expiry alert days must be between 1 and 365")
	}

	values := map[string]string{
		domain.SettingPharmacyName:    settings.PharmacyName,
		domain.SettingAddress:         strings.TrimSpace(settings.Address),
		domain.SettingPhone:           strings.TrimSpace(settings.Phone),
		domain.SettingGSTIN:           settings.GSTIN,
		domain.SettingDrugLicenseNo:   strings.TrimSpace(settings.DrugLicenseNo),
		domain.SettingBillPrefix:      settings.BillPrefix,
		domain.SettingExpiryAlertDays: strconv.Itoa(settings.ExpiryAlertDays),
	}
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		for key, value := range values {
			if err := q.PutSetting(ctx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
	track("update_settings", err)
	if err != nil {
		return domain.Settings{}, err
	}
	log.Info().Str("pharmacy", settings.PharmacyName).Msg("settings updated")
	return s.Load(ctx)
}
