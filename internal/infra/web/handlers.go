package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/infra/logging"
	"github.com/bekimbicaku/scan-perks/internal/infra/metrics"
	red "github.com/bekimbicaku/scan-perks/internal/infra/redis"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses with a stable message the
// client can show.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, domain.ErrInvalidAPIKey):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid API key"})
	case errors.Is(err, domain.ErrMalformedCode):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid QR code"})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, domain.ErrBusinessNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "business not found"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, domain.ErrDailyLimitExceeded):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "already scanned today, come back tomorrow"})
	case errors.Is(err, domain.ErrOfferQuotaReached):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "weekly offer limit reached"})
	case errors.Is(err, domain.ErrSettingsLocked):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "loyalty settings can only be changed once per month"})
	case errors.Is(err, domain.ErrRewardRedeemed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "reward already redeemed"})
	case errors.Is(err, domain.ErrRewardExpired):
		writeJSON(w, http.StatusGone, errorResponse{Error: "reward expired"})
	case errors.Is(err, domain.ErrCodeUsed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "code already used"})
	case errors.Is(err, domain.ErrCodeExpired):
		writeJSON(w, http.StatusGone, errorResponse{Error: "code expired"})
	case errors.Is(err, domain.ErrPlanNotActive):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{Error: "active subscription required"})
	case errors.Is(err, domain.ErrTransactionFailed):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "temporarily unavailable, please retry"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// ===== Session =====

type sessionRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// sessionHandler exchanges a verified identity for an API token. Identity
// verification happens upstream at the identity provider; this endpoint sits
// behind it.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	user, err := s.userUC.FindOrRegister(r.Context(), req.Email, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.auth.Mint(user.ID, user.Email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
	}{Token: token, User: user})
}

// ===== Scan =====

type scanRequest struct {
	Payload string `json:"payload"` // raw scanned text
}

func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(ctx)
	start := time.Now()

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Payload == "" {
		metrics.IncScan("malformed")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, red.ScanKey(uid), s.rateLimit, s.rateWin)
		if err != nil {
			// A limiter outage must not take scanning down with it.
			logging.With(ctx, s.log).Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			metrics.IncScan("rate_limited")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many scan attempts"})
			return
		}
	}

	// Dynamic codes are checked against their stored record before the scan
	// is counted, and burned after.
	payload, err := model.DecodeQRPayload(req.Payload)
	if err != nil {
		metrics.IncScan("malformed")
		writeError(w, err)
		return
	}
	if payload.IsDynamic() {
		if err := s.qrUC.ValidateDynamic(ctx, payload); err != nil {
			metrics.IncScan("code_rejected")
			writeError(w, err)
			return
		}
	}

	outcome, err := s.scanUC.RecordScan(ctx, uid, req.Payload)
	if err != nil {
		metrics.IncScan(scanOutcomeLabel(err))
		writeError(w, err)
		return
	}

	if payload.IsDynamic() {
		if err := s.qrUC.Consume(ctx, payload.BusinessID, payload.TransactionID); err != nil {
			logging.With(ctx, s.log).Warn().Err(err).
				Str("transaction_id", payload.TransactionID).
				Msg("failed to burn dynamic code")
		}
	}

	metrics.IncScan("accepted")
	if outcome.RewardIssued {
		metrics.IncRewardsIssued()
	}
	metrics.ObserveScanLatency(float64(time.Since(start).Milliseconds()))
	writeJSON(w, http.StatusOK, outcome)
}

func scanOutcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrDailyLimitExceeded):
		return "daily_limit"
	case errors.Is(err, domain.ErrMalformedCode):
		return "malformed"
	case errors.Is(err, domain.ErrBusinessNotFound):
		return "business_not_found"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrTransactionFailed):
		return "tx_failed"
	default:
		return "error"
	}
}

// ===== Rewards =====

func (s *Server) rewardsListHandler(w http.ResponseWriter, r *http.Request) {
	rewards, err := s.rewardUC.ListActive(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Data []*model.Reward `json:"data"`
	}{Data: rewards})
}

func (s *Server) rewardRedeemHandler(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	reward, err := s.rewardUC.Redeem(r.Context(), userID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reward)
}
