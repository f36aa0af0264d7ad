package rpc

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/frntpump/fnt-contracts/core"
	"github.com/frntpump/fnt-contracts/native/rewards"
	"github.com/frntpump/fnt-contracts/native/staking"
)

func (s *Server) handleResyncTier(w http.ResponseWriter, r *http.Request) {
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
	tier, err := s.node.ResyncTier(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]uint8{"tier": tier})
}

// parseOptionalAmount keeps nil (field absent) as "leave unchanged".
func parseOptionalAmount(raw *string) (*big.Int, error) {
	if raw == nil {
		return nil, nil
	}
	amount, err := parseAmount(*raw)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return nil, errors.Join(errBadRequest, errors.New("amount must not be empty"))
	}
	return amount, nil
}

type purchaseConfigUpdateRequest struct {
	Active             *bool   `json:"active"`
	StartTime          *uint64 `json:"startTime"`
	Rate               *string `json:"rate"`
	MinPayment         *string `json:"minPayment"`
	Cap                *string `json:"cap"`
	WhaleThresholdBps  *uint64 `json:"whaleThresholdBps"`
	WhaleTaxBps        *uint64 `json:"whaleTaxBps"`
	RedeemEnabled      *bool   `json:"redeemEnabled"`
	RedeemMinReferrals *uint64 `json:"redeemMinReferrals"`
}

func (s *Server) handleUpdatePurchaseConfig(w http.ResponseWriter, r *http.Request) {
	var req purchaseConfigUpdateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	update := core.PurchaseConfigUpdate{
		Active:             req.Active,
		StartTime:          req.StartTime,
		WhaleThresholdBps:  req.WhaleThresholdBps,
		WhaleTaxBps:        req.WhaleTaxBps,
		RedeemEnabled:      req.RedeemEnabled,
		RedeemMinReferrals: req.RedeemMinReferrals,
	}
	var err error
	if update.Rate, err = parseOptionalAmount(req.Rate); err != nil {
		s.writeError(w, err)
		return
	}
	if update.MinPayment, err = parseOptionalAmount(req.MinPayment); err != nil {
		s.writeError(w, err)
		return
	}
	if update.Cap, err = parseOptionalAmount(req.Cap); err != nil {
		s.writeError(w, err)
		return
	}
	cfg, err := s.node.UpdatePurchaseConfig(update)
	if err != nil {
		// A failed overlay is a rejected document, not a server fault.
		s.writeError(w, errors.Join(errBadRequest, err))
		return
	}
	s.writeJSON(w, http.StatusOK, newPurchaseConfigView(cfg))
}

type tierStepRequest struct {
	Threshold uint64 `json:"threshold"`
	Reward    string `json:"reward"`
}

type milestoneRequest struct {
	Bonus         string `json:"bonus"`
	Interval      uint64 `json:"interval"`
	MaxMilestones uint64 `json:"maxMilestones"`
	GrowthBps     uint64 `json:"growthBps"`
}

type multiplierRequest struct {
	Activation uint64 `json:"activation"`
	Factor     uint64 `json:"factor"`
	Window     uint64 `json:"window"`
}

type rewardConfigUpdateRequest struct {
	Steps     []tierStepRequest  `json:"steps"`
	Milestone *milestoneRequest  `json:"milestone"`
	Organic   *multiplierRequest `json:"organic"`
	Sponsored *multiplierRequest `json:"sponsored"`
}

func (s *Server) handleUpdateRewardConfig(w http.ResponseWriter, r *http.Request) {
	var req rewardConfigUpdateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	update := core.RewardConfigUpdate{}
	if req.Steps != nil {
		update.Steps = make([]rewards.TierStep, 0, len(req.Steps))
		for _, step := range req.Steps {
			reward, err := parseOptionalAmount(&step.Reward)
			if err != nil {
				s.writeError(w, err)
				return
			}
			update.Steps = append(update.Steps, rewards.TierStep{Threshold: step.Threshold, Reward: reward})
		}
	}
	if req.Milestone != nil {
		bonus, err := parseOptionalAmount(&req.Milestone.Bonus)
		if err != nil {
			s.writeError(w, err)
			return
		}
		update.Milestone = &rewards.MilestoneConfig{
			Bonus:         bonus,
			Interval:      req.Milestone.Interval,
			MaxMilestones: req.Milestone.MaxMilestones,
			GrowthBps:     req.Milestone.GrowthBps,
		}
	}
	if req.Organic != nil {
		update.Organic = &rewards.MultiplierConfig{
			Activation: req.Organic.Activation,
			Factor:     req.Organic.Factor,
			Window:     req.Organic.Window,
		}
	}
	if req.Sponsored != nil {
		update.Sponsored = &rewards.MultiplierConfig{
			Activation: req.Sponsored.Activation,
			Factor:     req.Sponsored.Factor,
			Window:     req.Sponsored.Window,
		}
	}
	cfg, err := s.node.UpdateRewardConfig(update)
	if err != nil {
		s.writeError(w, errors.Join(errBadRequest, err))
		return
	}
	s.writeJSON(w, http.StatusOK, newRewardConfigView(cfg))
}

type claimConfigUpdateRequest struct {
	TokenBonusActive  *bool `json:"tokenBonusActive"`
	NativeBonusActive *bool `json:"nativeBonusActive"`
	CreditedActive    *bool `json:"creditedActive"`

	TokenThreshold           *string `json:"tokenThreshold"`
	TokenThresholdSponsored  *string `json:"tokenThresholdSponsored"`
	NativeThreshold          *string `json:"nativeThreshold"`
	NativeThresholdSponsored *string `json:"nativeThresholdSponsored"`

	FreeClaim *bool `json:"freeClaim"`
}

func (s *Server) handleUpdateClaimConfig(w http.ResponseWriter, r *http.Request) {
	var req claimConfigUpdateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	update := core.ClaimConfigUpdate{
		TokenBonusActive:  req.TokenBonusActive,
		NativeBonusActive: req.NativeBonusActive,
		CreditedActive:    req.CreditedActive,
		FreeClaim:         req.FreeClaim,
	}
	var err error
	if update.TokenThreshold, err = parseOptionalAmount(req.TokenThreshold); err != nil {
		s.writeError(w, err)
		return
	}
	if update.TokenThresholdSponsored, err = parseOptionalAmount(req.TokenThresholdSponsored); err != nil {
		s.writeError(w, err)
		return
	}
	if update.NativeThreshold, err = parseOptionalAmount(req.NativeThreshold); err != nil {
		s.writeError(w, err)
		return
	}
	if update.NativeThresholdSponsored, err = parseOptionalAmount(req.NativeThresholdSponsored); err != nil {
		s.writeError(w, err)
		return
	}
	cfg, err := s.node.UpdateClaimConfig(update)
	if err != nil {
		s.writeError(w, errors.Join(errBadRequest, err))
		return
	}
	s.writeJSON(w, http.StatusOK, newClaimConfigView(cfg))
}

type lockTierRequest struct {
	Enabled    bool   `json:"enabled"`
	Days       uint64 `json:"days"`
	BaseAprBps uint64 `json:"baseAprBps"`
}

type referralTierRequest struct {
	Enabled      bool   `json:"enabled"`
	MinReferrals uint64 `json:"minReferrals"`
	BonusBps     uint64 `json:"bonusBps"`
}

type stakingConfigUpdateRequest struct {
	Lock     []lockTierRequest     `json:"lock"`
	Referral []referralTierRequest `json:"referral"`

	AutoCompoundBonusBps  *uint64 `json:"autoCompoundBonusBps"`
	EarlyExitPrincipalBps *uint64 `json:"earlyExitPrincipalBps"`
	EarlyExitRewardBps    *uint64 `json:"earlyExitRewardBps"`
}

func (s *Server) handleUpdateStakingConfig(w http.ResponseWriter, r *http.Request) {
	var req stakingConfigUpdateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	update := core.StakingConfigUpdate{
		AutoCompoundBonusBps:  req.AutoCompoundBonusBps,
		EarlyExitPrincipalBps: req.EarlyExitPrincipalBps,
		EarlyExitRewardBps:    req.EarlyExitRewardBps,
	}
	day := uint64(24 * 60 * 60)
	if req.Lock != nil {
		update.Lock = make([]staking.LockTier, 0, len(req.Lock))
		for _, tier := range req.Lock {
			update.Lock = append(update.Lock, staking.LockTier{
				Enabled:    tier.Enabled,
				Duration:   tier.Days * day,
				BaseAprBps: tier.BaseAprBps,
			})
		}
	}
	if req.Referral != nil {
		update.Referral = make([]staking.ReferralTier, 0, len(req.Referral))
		for _, tier := range req.Referral {
			update.Referral = append(update.Referral, staking.ReferralTier{
				Enabled:      tier.Enabled,
				MinReferrals: tier.MinReferrals,
				BonusBps:     tier.BonusBps,
			})
		}
	}
	cfg, err := s.node.UpdateStakingConfig(update)
	if err != nil {
		s.writeError(w, errors.Join(errBadRequest, err))
		return
	}
	s.writeJSON(w, http.StatusOK, newStakingConfigView(cfg))
}
