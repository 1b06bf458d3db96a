package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
	"medbill/m/internal/appstate"
	"medbill/m/internal/backup"
	"medbill/m/internal/metrics"
	"medbill/m/internal/service"
)

// genericFailure is the only message clients see for storage failures.
const genericFailure = "failed to save, try again"

var validate = validator.New()

func init() {
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc     *service.Services
	state   *appstate.State
	backups *backup.Service
	origins []string
}

// New constructs a Handler. backups may be nil when snapshots are disabled.
func New(svc *service.Services, state *appstate.State, backups *backup.Service, origins []string) *Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{svc: svc, state: state, backups: backups, origins: origins}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(metrics.Middleware(routePattern))

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Get("/session", h.session)
			protected.Post("/logout", h.logout)
			protected.Post("/change-password", h.changePassword)
			protected.With(requireRole(domain.RoleOwner)).Post("/register", h.register)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.searchMedicines)
			r.Post("/", h.createMedicine)
			r.Get("/{id}", h.getMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.Get("/{id}/batches", h.medicineBatches)
		})

		pr.Route("/batches", func(r chi.Router) {
			r.Get("/", h.listBatches)
			r.Post("/", h.receiveBatch)
			r.Get("/{id}", h.getBatch)
			r.Post("/{id}/stock", h.restockBatch)
		})

		pr.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.listSuppliers)
			r.Post("/", h.createSupplier)
			r.Get("/{id}", h.getSupplier)
			r.Put("/{id}", h.updateSupplier)
		})

		pr.Route("/customers", func(r chi.Router) {
			r.Get("/", h.listCustomers)
			r.Post("/", h.createCustomer)
			r.Get("/{id}", h.getCustomer)
			r.Put("/{id}", h.updateCustomer)
			r.Post("/{id}/payments", h.recordPayment)
			r.Get("/{id}/ledger", h.customerLedger)
			r.Get("/{id}/balance-check", h.balanceCheck)
		})

		pr.Route("/bills", func(r chi.Router) {
			r.Get("/", h.listBills)
			r.Post("/", h.createBill)
			r.Get("/{id}", h.getBill)
			r.Get("/{id}/pdf", h.billPDF)
			r.Get("/{id}/returns", h.billReturns)
		})

		pr.Route("/running-bills", func(r chi.Router) {
			r.Get("/", h.listRunningBills)
			r.Post("/", h.createRunningBill)
			r.Post("/{id}/link", h.linkRunningBill)
			r.Post("/{id}/cancel", h.cancelRunningBill)
		})

		pr.Route("/returns", func(r chi.Router) {
			r.Post("/sales", h.createSalesReturn)
			r.Get("/supplier", h.listSupplierReturns)
			r.Post("/supplier", h.createSupplierReturn)
			r.With(requireRole(domain.RoleOwner)).Put("/supplier/{id}/status", h.updateSupplierReturnStatus)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", h.dashboard)
			r.Get("/low-stock", h.lowStock)
			r.Get("/expiring", h.expiring)
			r.Get("/sales-summary", h.salesSummary)
			r.Get("/sales-register", h.salesRegister)
			r.Get("/schedule-register", h.scheduleRegister)
		})

		pr.Route("/settings", func(r chi.Router) {
			r.Get("/", h.getSettings)
			r.With(requireRole(domain.RoleOwner)).Put("/", h.updateSettings)
		})

		pr.Route("/backups", func(r chi.Router) {
			r.Use(requireRole(domain.RoleOwner))
			r.Get("/", h.listBackups)
			r.Post("/", h.createBackup)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Helpers

// decodeAndValidate decodes a JSON body and runs validator tags. It writes the
// error response itself when it returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := decodeJSON(r, dest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := validate.Struct(dest); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			respondError(w, http.StatusBadRequest, err.Error())
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": fields,
		})
		return false
	}
	return true
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the domain error taxonomy onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrNoSession):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Error().Err(err).
			Str("request_id", requestIDFrom(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		respondError(w, http.StatusInternalServerError, genericFailure)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid "+name+" id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
