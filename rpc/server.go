package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frntpump/fnt-contracts/core"
	"github.com/frntpump/fnt-contracts/native/claims"
	nativecommon "github.com/frntpump/fnt-contracts/native/common"
	"github.com/frntpump/fnt-contracts/native/purchase"
	"github.com/frntpump/fnt-contracts/native/registry"
	"github.com/frntpump/fnt-contracts/native/staking"
	"github.com/frntpump/fnt-contracts/observability/metrics"
)

// Server exposes the node operations over HTTP: POST for mutating units,
// GET for views.
type Server struct {
	node    *core.Node
	log     *slog.Logger
	metrics *metrics.MembershipMetrics
}

// NewServer wires an HTTP surface over a node.
func NewServer(node *core.Node, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{node: node, log: log, metrics: metrics.Membership()}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/members/register", s.handleRegister)
		v1.Post("/members/register-sponsored", s.handleRegisterSponsored)
		v1.Post("/members/wallets/link", s.handleLinkWallet)
		v1.Post("/members/wallets/unlink", s.handleUnlinkWallet)
		v1.Post("/members/activity", s.handleRecomputeActivity)
		v1.Post("/members/resync-tier", s.handleResyncTier)
		v1.Get("/members/{address}", s.handleParticipant)
		v1.Get("/members/{address}/stakes", s.handleOwnerStakes)
		v1.Get("/counters", s.handleCounters)

		v1.Post("/purchase/preview", s.handlePreviewPurchase)
		v1.Post("/purchase", s.handleExecutePurchase)
		v1.Post("/purchase/redeem-tax", s.handleRedeemTax)

		v1.Post("/claims/token-bonus", s.handleClaimTokenBonus)
		v1.Post("/claims/native-bonus", s.handleClaimNativeBonus)
		v1.Post("/claims/credited", s.handleClaimCredited)
		v1.Post("/claims/all", s.handleClaimAll)
		v1.Post("/claims/credit", s.handleCreditTokens)

		v1.Post("/stakes", s.handleCreateStake)
		v1.Get("/stakes/{id}", s.handleStakePosition)
		v1.Post("/stakes/{id}/settle", s.handleSettleStake)
		v1.Post("/stakes/{id}/claim", s.handleClaimStake)
		v1.Post("/stakes/{id}/add", s.handleAddToStake)
		v1.Post("/stakes/{id}/auto-compound", s.handleStakeAutoCompound)
		v1.Post("/stakes/{id}/exit", s.handleExitStake)
		v1.Get("/staking/metrics", s.handleStakeMetrics)

		v1.Post("/admin/pause", s.handleSetPaused)
		v1.Post("/admin/credit-allowance", s.handleSetCreditAllowance)
		v1.Post("/admin/config/purchase", s.handleUpdatePurchaseConfig)
		v1.Post("/admin/config/rewards", s.handleUpdateRewardConfig)
		v1.Post("/admin/config/claims", s.handleUpdateClaimConfig)
		v1.Post("/admin/config/staking", s.handleUpdateStakingConfig)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

// writeError maps engine sentinel errors onto HTTP statuses: not-found for
// missing records, conflict for business-rule rejections, bad request for
// malformed input and 500 for everything else.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, nativecommon.ErrModulePaused):
		status = http.StatusServiceUnavailable
	case errors.Is(err, nativecommon.ErrReentrantCall):
		status = http.StatusConflict
	case errors.Is(err, registry.ErrNotRegistered),
		errors.Is(err, registry.ErrReferrerNotFound),
		errors.Is(err, purchase.ErrNotRegistered),
		errors.Is(err, claims.ErrNotRegistered),
		errors.Is(err, staking.ErrPositionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, registry.ErrAlreadyRegistered),
		errors.Is(err, registry.ErrSelfReferral),
		errors.Is(err, registry.ErrWalletCapReached),
		errors.Is(err, registry.ErrWalletTaken),
		errors.Is(err, registry.ErrWalletNotLinked),
		errors.Is(err, registry.ErrNotPrimaryWallet),
		errors.Is(err, registry.ErrUnlinkPrimary),
		errors.Is(err, purchase.ErrCannotPurchase),
		errors.Is(err, purchase.ErrRedeemDisabled),
		errors.Is(err, purchase.ErrRedeemReferrals),
		errors.Is(err, purchase.ErrAlreadyRedeemed),
		errors.Is(err, purchase.ErrNothingToRedeem),
		errors.Is(err, claims.ErrClaimInactive),
		errors.Is(err, claims.ErrBelowThreshold),
		errors.Is(err, claims.ErrNothingToClaim),
		errors.Is(err, claims.ErrExceedsAccrued),
		errors.Is(err, claims.ErrAllowanceSpent),
		errors.Is(err, staking.ErrUnknownLockTier),
		errors.Is(err, staking.ErrNotOwner),
		errors.Is(err, staking.ErrStillLocked),
		errors.Is(err, staking.ErrNothingToClaim):
		status = http.StatusConflict
	case errors.Is(err, registry.ErrZeroAddress),
		errors.Is(err, claims.ErrZeroAddress),
		errors.Is(err, claims.ErrZeroCredit),
		errors.Is(err, staking.ErrInvalidAmount):
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

func (s *Server) decode(r *http.Request, into interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func parseAddress(raw string) (common.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, errors.Join(errBadRequest, errors.New("invalid address "+strconv.Quote(raw)))
	}
	return common.HexToAddress(trimmed), nil
}

// parseAmount accepts a decimal base-unit string; empty means nil.
func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, errors.Join(errBadRequest, errors.New("invalid amount "+strconv.Quote(raw)))
	}
	return amount, nil
}

func pathID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.Join(errBadRequest, err)
	}
	return id, nil
}
