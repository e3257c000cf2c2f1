// Package httpapi exposes the ledger operations over a JSON HTTP surface.
//
// Caller identity arrives in the X-Caller header and the privileged flag in
// X-Privileged; both are trusted as-is, so deployments must strip them at
// the edge and only set them from authenticated gateways.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/communis/ledger/internal/ledger/service"
	apperrors "github.com/communis/ledger/internal/platform/errors"
	"github.com/communis/ledger/internal/platform/errors/i18n"
	"github.com/communis/ledger/internal/platform/requestctx"
)

// Handler serves the ledger JSON API.
type Handler struct {
	svc *service.Service
}

// New returns a handler bound to a ledger service.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes builds the API mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/currencies", h.createCurrency)
	mux.HandleFunc("GET /v1/currencies/{code}", h.getCurrency)
	mux.HandleFunc("PATCH /v1/currencies/{code}", h.updateCurrency)
	mux.HandleFunc("POST /v1/currencies/{code}/issue", h.issue)
	mux.HandleFunc("POST /v1/currencies/{code}/retire", h.retire)
	mux.HandleFunc("POST /v1/currencies/{code}/accounts", h.initAccount)
	mux.HandleFunc("PUT /v1/currencies/{code}/expiry", h.setExpiry)
	mux.HandleFunc("GET /v1/currencies/{code}/expiry", h.getPolicy)
	mux.HandleFunc("POST /v1/transfers", h.transfer)
	mux.HandleFunc("GET /v1/balances", h.listBalances)
	mux.HandleFunc("GET /v1/accounts/{account}/balances/{code}", h.getBalance)

	return identity(mux)
}

// identity copies the request identity headers into context.
func identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if caller := r.Header.Get("X-Caller"); caller != "" {
			ctx = requestctx.WithCaller(ctx, caller)
		}
		if r.Header.Get("X-Privileged") == "true" {
			ctx = requestctx.WithPrivileged(ctx)
		}
		if origin := r.Header.Get("X-Origin"); origin != "" {
			ctx = requestctx.WithOrigin(ctx, origin)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": "MALFORMED_REQUEST", "message": "request body is not valid JSON"},
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	catalog := i18n.GetCatalog(r.Header.Get("Accept-Language"))
	message := catalog.Format(string(code), apperrors.GetMetadata(err))

	body := map[string]any{
		"error": map[string]any{
			"code":    string(code),
			"message": message,
		},
	}
	if metadata := apperrors.GetMetadata(err); len(metadata) > 0 {
		body["error"].(map[string]any)["metadata"] = metadata
	}
	if code == apperrors.CodeUnknown {
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, code.HTTPStatus(), body)
}
