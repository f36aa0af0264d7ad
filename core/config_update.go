package core

import (
	"math/big"

	"github.com/frntpump/fnt-contracts/core/events"
	"github.com/frntpump/fnt-contracts/native/claims"
	"github.com/frntpump/fnt-contracts/native/purchase"
	"github.com/frntpump/fnt-contracts/native/rewards"
	"github.com/frntpump/fnt-contracts/native/staking"
)

// Field-by-field configuration updates use optional pointer fields instead
// of reserved sentinel values: a nil field leaves the current value alone,
// a nil array field leaves the current table alone. Each update loads the
// current config, overlays the set fields, re-validates the whole struct
// and persists it atomically.

// PurchaseConfigUpdate overlays selected purchase config fields.
type PurchaseConfigUpdate struct {
	Active             *bool
	StartTime          *uint64
	Rate               *big.Int
	MinPayment         *big.Int
	Cap                *big.Int
	WhaleThresholdBps  *uint64
	WhaleTaxBps        *uint64
	RedeemEnabled      *bool
	RedeemMinReferrals *uint64
}

// UpdatePurchaseConfig applies a partial purchase config update.
func (n *Node) UpdatePurchaseConfig(update PurchaseConfigUpdate) (*purchase.Config, error) {
	defer n.begin()()
	cfg, err := n.store.PurchaseConfig()
	if err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	if update.Active != nil {
		cfg.Active = *update.Active
	}
	if update.StartTime != nil {
		cfg.StartTime = *update.StartTime
	}
	if update.Rate != nil {
		cfg.Rate = new(big.Int).Set(update.Rate)
	}
	if update.MinPayment != nil {
		cfg.MinPayment = new(big.Int).Set(update.MinPayment)
	}
	if update.Cap != nil {
		cfg.Cap = new(big.Int).Set(update.Cap)
	}
	if update.WhaleThresholdBps != nil {
		cfg.WhaleThresholdBps = *update.WhaleThresholdBps
	}
	if update.WhaleTaxBps != nil {
		cfg.WhaleTaxBps = *update.WhaleTaxBps
	}
	if update.RedeemEnabled != nil {
		cfg.RedeemEnabled = *update.RedeemEnabled
	}
	if update.RedeemMinReferrals != nil {
		cfg.RedeemMinReferrals = *update.RedeemMinReferrals
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := n.store.SetPurchaseConfig(cfg); err != nil {
		return nil, err
	}
	n.events.Emit(events.ConfigUpdated("purchase"))
	return cfg, nil
}

// RewardConfigUpdate overlays selected reward config fields. A nil Steps
// slice keeps the current threshold table.
type RewardConfigUpdate struct {
	Steps     []rewards.TierStep
	Milestone *rewards.MilestoneConfig
	Organic   *rewards.MultiplierConfig
	Sponsored *rewards.MultiplierConfig
}

// UpdateRewardConfig applies a partial reward config update.
func (n *Node) UpdateRewardConfig(update RewardConfigUpdate) (*rewards.Config, error) {
	defer n.begin()()
	cfg, err := n.store.RewardConfig()
	if err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	if update.Steps != nil {
		cfg.Steps = update.Steps
	}
	if update.Milestone != nil {
		cfg.Milestone = *update.Milestone
	}
	if update.Organic != nil {
		cfg.Organic = *update.Organic
	}
	if update.Sponsored != nil {
		cfg.Sponsored = *update.Sponsored
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := n.store.SetRewardConfig(cfg); err != nil {
		return nil, err
	}
	n.events.Emit(events.ConfigUpdated("rewards"))
	return cfg, nil
}

// ClaimConfigUpdate overlays selected claim config fields.
type ClaimConfigUpdate struct {
	TokenBonusActive  *bool
	NativeBonusActive *bool
	CreditedActive    *bool

	TokenThreshold           *big.Int
	TokenThresholdSponsored  *big.Int
	NativeThreshold          *big.Int
	NativeThresholdSponsored *big.Int

	FreeClaim *bool
}

// UpdateClaimConfig applies a partial claim config update.
func (n *Node) UpdateClaimConfig(update ClaimConfigUpdate) (*claims.Config, error) {
	defer n.begin()()
	cfg, err := n.store.ClaimConfig()
	if err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	if update.TokenBonusActive != nil {
		cfg.TokenBonusActive = *update.TokenBonusActive
	}
	if update.NativeBonusActive != nil {
		cfg.NativeBonusActive = *update.NativeBonusActive
	}
	if update.CreditedActive != nil {
		cfg.CreditedActive = *update.CreditedActive
	}
	if update.TokenThreshold != nil {
		cfg.TokenThreshold = new(big.Int).Set(update.TokenThreshold)
	}
	if update.TokenThresholdSponsored != nil {
		cfg.TokenThresholdSponsored = new(big.Int).Set(update.TokenThresholdSponsored)
	}
	if update.NativeThreshold != nil {
		cfg.NativeThreshold = new(big.Int).Set(update.NativeThreshold)
	}
	if update.NativeThresholdSponsored != nil {
		cfg.NativeThresholdSponsored = new(big.Int).Set(update.NativeThresholdSponsored)
	}
	if update.FreeClaim != nil {
		cfg.FreeClaim = *update.FreeClaim
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := n.store.SetClaimConfig(cfg); err != nil {
		return nil, err
	}
	n.events.Emit(events.ConfigUpdated("claims"))
	return cfg, nil
}

// StakingConfigUpdate overlays selected staking config fields. Nil tier
// tables keep the current tables.
type StakingConfigUpdate struct {
	Lock     []staking.LockTier
	Referral []staking.ReferralTier

	AutoCompoundBonusBps  *uint64
	EarlyExitPrincipalBps *uint64
	EarlyExitRewardBps    *uint64
}

// UpdateStakingConfig applies a partial staking config update.
func (n *Node) UpdateStakingConfig(update StakingConfigUpdate) (*staking.Config, error) {
	defer n.begin()()
	cfg, err := n.store.StakingConfig()
	if err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	if update.Lock != nil {
		cfg.Lock = update.Lock
	}
	if update.Referral != nil {
		cfg.Referral = update.Referral
	}
	if update.AutoCompoundBonusBps != nil {
		cfg.AutoCompoundBonusBps = *update.AutoCompoundBonusBps
	}
	if update.EarlyExitPrincipalBps != nil {
		cfg.EarlyExitPrincipalBps = *update.EarlyExitPrincipalBps
	}
	if update.EarlyExitRewardBps != nil {
		cfg.EarlyExitRewardBps = *update.EarlyExitRewardBps
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := n.store.SetStakingConfig(cfg); err != nil {
		return nil, err
	}
	n.events.Emit(events.ConfigUpdated("staking"))
	return cfg, nil
}
