package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/infra/logging"
)

func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return ""
	}
	return strings.TrimSpace(hdr[7:])
}

type checkoutRequest struct {
	Plan string `json:"plan"` // basic|premium
}

func (s *Server) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	url, err := s.billingUC.Checkout(r.Context(), userID(r.Context()), model.PlanID(req.Plan))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		URL string `json:"url"`
	}{URL: url})
}

func (s *Server) portalHandler(w http.ResponseWriter, r *http.Request) {
	url, err := s.billingUC.Portal(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		URL string `json:"url"`
	}{URL: url})
}

func (s *Server) cancelHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.billingUC.Cancel(r.Context(), userID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const maxWebhookBody = 64 << 10

// stripeWebhookHandler receives provider notifications. Authenticity comes
// from the signature header, verified inside the gateway.
func (s *Server) stripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if err := s.billingUC.HandleWebhook(r.Context(), body, sig); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("webhook processing failed")
		// Non-2xx makes Stripe retry later.
		http.Error(w, "webhook processing failed", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}
