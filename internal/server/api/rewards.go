package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecosortai/ecosort/internal/app"
	"github.com/ecosortai/ecosort/internal/ledger"
	"github.com/ecosortai/ecosort/internal/metrics"
	"github.com/ecosortai/ecosort/internal/redeem"
)

// RewardsHandler exposes the point ledger and the redemption flows.
type RewardsHandler struct {
	app  *app.App
	flow *redeem.Flow
}

// NewRewardsHandler creates a new RewardsHandler.
func NewRewardsHandler(a *app.App, f *redeem.Flow) *RewardsHandler {
	return &RewardsHandler{app: a, flow: f}
}

type ledgerResponse struct {
	EarnedPoints    int      `json:"earned_points"`
	SpentPoints     int      `json:"spent_points"`
	AvailablePoints int      `json:"available_points"`
	Avatar          string   `json:"avatar"`
	Vouchers        []string `json:"vouchers"`
}

type catalogResponse struct {
	Avatars          redeem.Catalog `json:"avatars"`
	AvatarChangeCost int            `json:"avatar_change_cost"`
	VoucherCost      int            `json:"voucher_cost"`
}

type changeAvatarRequest struct {
	AvatarID string `json:"avatar_id"`
}

type redeemVoucherRequest struct {
	VoucherID string `json:"voucher_id"`
}

type redeemVoucherResponse struct {
	Code            string `json:"code"`
	AvailablePoints int    `json:"available_points"`
}

func toLedgerResponse(r ledger.Record) ledgerResponse {
	return ledgerResponse{
		EarnedPoints:    r.EarnedPoints,
		SpentPoints:     r.SpentPoints,
		AvailablePoints: r.Available(),
		Avatar:          r.Avatar,
		Vouchers:        r.Vouchers,
	}
}

// Ledger handles GET /api/ledger. Earned points are refreshed from the
// detection history first, subject to the ledger's cooldown.
func (h *RewardsHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	if _, err := h.app.Ledger().Recompute(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh points")
		return
	}
	writeJSON(w, http.StatusOK, toLedgerResponse(h.app.Ledger().Snapshot()))
}

// Catalog handles GET /api/catalog.
func (h *RewardsHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	costs := h.flow.Costs()
	writeJSON(w, http.StatusOK, catalogResponse{
		Avatars:          h.flow.Catalog(),
		AvatarChangeCost: costs.AvatarChange,
		VoucherCost:      costs.Voucher,
	})
}

// ChangeAvatar handles POST /api/avatar.
func (h *RewardsHandler) ChangeAvatar(w http.ResponseWriter, r *http.Request) {
	var req changeAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.AvatarID == "" {
		writeError(w, http.StatusBadRequest, "avatar_id is required")
		return
	}

	err := h.flow.ChangeAvatar(req.AvatarID)
	switch {
	case errors.Is(err, redeem.ErrUnknownAvatar):
		writeError(w, http.StatusNotFound, "Unknown avatar")
		return
	case errors.Is(err, redeem.ErrSameAvatar):
		writeError(w, http.StatusConflict, "Avatar is already selected")
		return
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(w, http.StatusPaymentRequired, "Not enough points")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to change avatar")
		return
	}

	metrics.Redemptions.WithLabelValues("avatar").Inc()
	writeJSON(w, http.StatusOK, toLedgerResponse(h.app.Ledger().Snapshot()))
}

// RedeemVoucher handles POST /api/redeem.
func (h *RewardsHandler) RedeemVoucher(w http.ResponseWriter, r *http.Request) {
	var req redeemVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VoucherID == "" {
		writeError(w, http.StatusBadRequest, "voucher_id is required")
		return
	}

	code, err := h.flow.RedeemVoucher(req.VoucherID)
	switch {
	case errors.Is(err, redeem.ErrUnknownVoucher):
		writeError(w, http.StatusNotFound, "Unknown voucher")
		return
	case errors.Is(err, redeem.ErrAlreadyRedeemed):
		writeError(w, http.StatusConflict, "Voucher already redeemed")
		return
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(w, http.StatusPaymentRequired, "Not enough points")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to redeem voucher")
		return
	}

	metrics.Redemptions.WithLabelValues("voucher").Inc()
	writeJSON(w, http.StatusOK, redeemVoucherResponse{
		Code:            code,
		AvailablePoints: h.app.Ledger().Available(),
	})
}
