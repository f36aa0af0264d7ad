package rpc

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createStakeRequest struct {
	Owner        string `json:"owner"`
	LockTier     uint8  `json:"lockTier"`
	Amount       string `json:"amount"`
	AutoCompound bool   `json:"autoCompound"`
}

func (s *Server) handleCreateStake(w http.ResponseWriter, r *http.Request) {
	var req createStakeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	owner, err := parseAddress(req.Owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	position, err := s.node.CreateStake(owner, req.LockTier, amount, req.AutoCompound)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveStakeOp("create")
	s.writeJSON(w, http.StatusCreated, newPositionView(position))
}

func (s *Server) handleStakePosition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	position, err := s.node.StakePosition(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newPositionView(position))
}

func (s *Server) handleOwnerStakes(w http.ResponseWriter, r *http.Request) {
	owner, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	positions, err := s.node.StakePositions(owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	views := make([]positionView, 0, len(positions))
	for _, position := range positions {
		views = append(views, newPositionView(position))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSettleStake(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	position, err := s.node.SettleStake(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveStakeOp("settle")
	s.writeJSON(w, http.StatusOK, newPositionView(position))
}

type ownerRequest struct {
	Owner string `json:"owner"`
}

func (s *Server) handleClaimStake(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req ownerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	owner, err := parseAddress(req.Owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	paid, err := s.node.ClaimStakeRewards(owner, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveStakeOp("claim")
	s.writeJSON(w, http.StatusOK, amountView{Amount: bigString(paid)})
}

type addToStakeRequest struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

func (s *Server) handleAddToStake(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req addToStakeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	owner, err := parseAddress(req.Owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	position, err := s.node.AddToStake(owner, id, amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveStakeOp("add")
	s.writeJSON(w, http.StatusOK, newPositionView(position))
}

type autoCompoundRequest struct {
	Owner   string `json:"owner"`
	Enabled bool   `json:"enabled"`
}

func (s *Server) handleStakeAutoCompound(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req autoCompoundRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	owner, err := parseAddress(req.Owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	position, err := s.node.SetStakeAutoCompound(owner, id, req.Enabled)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveStakeOp("auto_compound")
	s.writeJSON(w, http.StatusOK, newPositionView(position))
}

type exitStakeRequest struct {
	Owner string `json:"owner"`
	Force bool   `json:"force"`
}

func (s *Server) handleExitStake(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req exitStakeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	owner, err := parseAddress(req.Owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	payout, err := s.node.ExitStake(owner, id, req.Force)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveStakeOp("exit")
	s.writeJSON(w, http.StatusOK, amountView{Amount: bigString(payout)})
}

func (s *Server) handleStakeMetrics(w http.ResponseWriter, _ *http.Request) {
	stats, pool, err := s.node.StakeMetrics()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.SetOpenPositions(float64(stats.OpenPositions))
	s.writeJSON(w, http.StatusOK, stakeMetricsView{
		TotalStaked:      bigString(stats.TotalStaked),
		TotalRewardsPaid: bigString(stats.TotalRewardsPaid),
		OpenPositions:    stats.OpenPositions,
		PenaltyPool:      bigString(pool),
	})
}
