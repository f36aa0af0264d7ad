package rpc

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/frntpump/fnt-contracts/native/claims"
)

type registerRequest struct {
	Caller      string `json:"caller"`
	ReferrerSeq uint64 `json:"referrerSeq"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	record, err := s.node.RegisterWithReferral(caller, req.ReferrerSeq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveRegistration("referral")
	s.metrics.ObserveReferral()
	s.writeJSON(w, http.StatusCreated, newParticipantView(record))
}

type addressRequest struct {
	Address string `json:"address"`
}

func (s *Server) handleRegisterSponsored(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	record, err := s.node.RegisterSponsored(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveRegistration("sponsored")
	s.writeJSON(w, http.StatusCreated, newParticipantView(record))
}

type walletRequest struct {
	Caller string `json:"caller"`
	Wallet string `json:"wallet"`
}

func (s *Server) handleLinkWallet(w http.ResponseWriter, r *http.Request) {
	s.handleWalletOp(w, r, s.node.LinkWallet)
}

func (s *Server) handleUnlinkWallet(w http.ResponseWriter, r *http.Request) {
	s.handleWalletOp(w, r, s.node.UnlinkWallet)
}

func (s *Server) handleWalletOp(w http.ResponseWriter, r *http.Request, op func(caller, wallet common.Address) error) {
	var req walletRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	wallet, err := parseAddress(req.Wallet)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := op(caller, wallet); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRecomputeActivity(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	active, err := s.node.RecomputeActivity(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

func (s *Server) handleParticipant(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	record, ok, err := s.node.Participant(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: "participant not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, newParticipantView(record))
}

func (s *Server) handleCounters(w http.ResponseWriter, _ *http.Request) {
	counters, err := s.node.Counters()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newCountersView(counters))
}

type purchaseRequest struct {
	Buyer   string `json:"buyer"`
	Payment string `json:"payment"`
}

func (s *Server) handlePreviewPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	buyer, err := parseAddress(req.Buyer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	payment, err := parseAmount(req.Payment)
	if err != nil {
		s.writeError(w, err)
		return
	}
	quote, err := s.node.PreviewPurchase(buyer, payment)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newQuoteView(quote))
}

func (s *Server) handleExecutePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	buyer, err := parseAddress(req.Buyer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	payment, err := parseAmount(req.Payment)
	if err != nil {
		s.writeError(w, err)
		return
	}
	quote, err := s.node.ExecutePurchase(buyer, payment)
	if quote != nil {
		s.metrics.ObservePurchase(string(quote.Reason), quote.WhaleTax != nil && quote.WhaleTax.Sign() > 0)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newQuoteView(quote))
}

type callerRequest struct {
	Caller string `json:"caller"`
}

func (s *Server) handleRedeemTax(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := s.node.RedeemPurchaseTax(caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, amountView{Amount: bigString(amount)})
}

func (s *Server) handleClaimTokenBonus(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := s.node.ClaimTokenBonus(caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveClaim(string(claims.KindTokenBonus))
	s.writeJSON(w, http.StatusOK, amountView{Amount: bigString(amount)})
}

func (s *Server) handleClaimNativeBonus(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := s.node.ClaimNativeBonus(caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveClaim(string(claims.KindNativeBonus))
	s.writeJSON(w, http.StatusOK, amountView{Amount: bigString(amount)})
}

type claimCreditedRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

func (s *Server) handleClaimCredited(w http.ResponseWriter, r *http.Request) {
	var req claimCreditedRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	paid, err := s.node.ClaimCredited(caller, amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveClaim(string(claims.KindCredited))
	s.writeJSON(w, http.StatusOK, amountView{Amount: bigString(paid)})
}

func (s *Server) handleClaimAll(w http.ResponseWriter, r *http.Request) {
	var req callerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	summary, err := s.node.ClaimAll(caller)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveClaim("all")
	s.writeJSON(w, http.StatusOK, claimSummaryView{
		TokenBonus:  bigString(summary.TokenBonus),
		NativeBonus: bigString(summary.NativeBonus),
		Credited:    bigString(summary.Credited),
		Minted:      bigString(summary.Minted),
	})
}

type creditRequest struct {
	Granter string `json:"granter"`
	Wallet  string `json:"wallet"`
	Amount  string `json:"amount"`
	Memo    string `json:"memo"`
}

func (s *Server) handleCreditTokens(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	granter, err := parseAddress(req.Granter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	wallet, err := parseAddress(req.Wallet)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.node.CreditTokens(granter, wallet, amount, req.Memo); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nil)
}

type pauseRequest struct {
	Module string `json:"module"`
	Paused bool   `json:"paused"`
}

func (s *Server) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.node.SetModulePaused(req.Module, req.Paused); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nil)
}

type allowanceRequest struct {
	Granter   string `json:"granter"`
	Remaining string `json:"remaining"`
}

func (s *Server) handleSetCreditAllowance(w http.ResponseWriter, r *http.Request) {
	var req allowanceRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	granter, err := parseAddress(req.Granter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	remaining, err := parseAmount(req.Remaining)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.node.SetCreditAllowance(granter, remaining); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nil)
}
