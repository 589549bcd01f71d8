package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/usecase"
)

func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// ===== Business registration and setup =====

type businessRegisterRequest struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

func (s *Server) businessRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req businessRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	biz, err := s.businessUC.Register(r.Context(), userID(r.Context()), usecase.RegisterBusinessParams{
		Name:  req.Name,
		Type:  model.BusinessType(req.Type),
		Email: req.Email,
		Phone: req.Phone,
		Address: model.Address{
			Street:     req.Street,
			City:       req.City,
			PostalCode: req.PostalCode,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, biz)
}

func (s *Server) businessGetHandler(w http.ResponseWriter, r *http.Request) {
	biz, err := s.businessUC.Get(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, biz)
}

type businessSetupRequest struct {
	QRType string `json:"qrType"` // static|dynamic
}

func (s *Server) businessSetupHandler(w http.ResponseWriter, r *http.Request) {
	var req businessSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	biz, err := s.businessUC.CompleteSetup(r.Context(), userID(r.Context()), model.QRType(req.QRType))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, biz)
}

func (s *Server) businessDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.businessUC.Delete(r.Context(), userID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Loyalty settings =====

func (s *Server) loyaltySettingsGetHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := s.businessUC.LoyaltySettings(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type loyaltySettingsRequest struct {
	ScansRequired int    `json:"scansRequired"`
	Reward        string `json:"reward"`
}

func (s *Server) loyaltySettingsUpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req loyaltySettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	settings, err := s.businessUC.UpdateLoyaltySettings(r.Context(), userID(r.Context()), req.ScansRequired, req.Reward)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// ===== Codes =====

func (s *Server) staticCodeHandler(w http.ResponseWriter, r *http.Request) {
	code, err := s.qrUC.GenerateStatic(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, code)
}

type mintDynamicRequest struct {
	TransactionID string            `json:"transactionId"`
	AmountCents   int64             `json:"amount"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// mintDynamicHandler serves point-of-sale systems; they authenticate with the
// business API key, not a user token.
func (s *Server) mintDynamicHandler(w http.ResponseWriter, r *http.Request) {
	apiKey := bearerToken(r)
	if apiKey == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid API key"})
		return
	}

	var req mintDynamicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	code, err := s.qrUC.MintDynamic(r.Context(), apiKey, req.TransactionID, req.AmountCents, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, code)
}

// ===== Offers =====

type offerCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Terms       string `json:"terms"`
	ValidDays   int    `json:"validDays"`
}

func (s *Server) offerCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req offerCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	offer, err := s.offerUC.Create(r.Context(), userID(r.Context()), usecase.CreateOfferParams{
		Title:       req.Title,
		Description: req.Description,
		Terms:       req.Terms,
		ValidDays:   req.ValidDays,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

func (s *Server) offersListHandler(w http.ResponseWriter, r *http.Request) {
	offers, err := s.offerUC.ListActive(r.Context(), pathParam(r, "businessID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.Offer `json:"data"`
	}{Data: offers})
}

func (s *Server) offerViewHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.offerUC.View(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) offerClaimHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.offerUC.Claim(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Dashboard =====

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.statsUC.Dashboard(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
