package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/frntpump/fnt-contracts/native/claims"
	"github.com/frntpump/fnt-contracts/native/purchase"
	"github.com/frntpump/fnt-contracts/native/rewards"
	"github.com/frntpump/fnt-contracts/native/staking"
)

// Genesis carries the initial module configurations as a JSON document.
// Every section is optional; absent sections keep the built-in defaults.
// Amounts are decimal base-unit strings.
type Genesis struct {
	Purchase *PurchaseGenesis `json:"purchase,omitempty"`
	Rewards  *RewardsGenesis  `json:"rewards,omitempty"`
	Claims   *ClaimsGenesis   `json:"claims,omitempty"`
	Staking  *StakingGenesis  `json:"staking,omitempty"`
}

// PurchaseGenesis mirrors purchase.Config with JSON-safe amounts.
type PurchaseGenesis struct {
	Active             bool   `json:"active"`
	StartTime          uint64 `json:"startTime"`
	Rate               string `json:"rate"`
	MinPayment         string `json:"minPayment"`
	Cap                string `json:"cap"`
	WhaleThresholdBps  uint64 `json:"whaleThresholdBps"`
	WhaleTaxBps        uint64 `json:"whaleTaxBps"`
	RedeemEnabled      bool   `json:"redeemEnabled"`
	RedeemMinReferrals uint64 `json:"redeemMinReferrals"`
}

// RewardsGenesis mirrors rewards.Config.
type RewardsGenesis struct {
	Steps []struct {
		Threshold uint64 `json:"threshold"`
		Reward    string `json:"reward"`
	} `json:"steps"`
	Milestone struct {
		Bonus         string `json:"bonus"`
		Interval      uint64 `json:"interval"`
		MaxMilestones uint64 `json:"maxMilestones"`
		GrowthBps     uint64 `json:"growthBps"`
	} `json:"milestone"`
	Organic   MultiplierGenesis `json:"organic"`
	Sponsored MultiplierGenesis `json:"sponsored"`
}

// MultiplierGenesis mirrors rewards.MultiplierConfig.
type MultiplierGenesis struct {
	Activation uint64 `json:"activation"`
	Factor     uint64 `json:"factor"`
	Window     uint64 `json:"window"`
}

// ClaimsGenesis mirrors claims.Config.
type ClaimsGenesis struct {
	TokenBonusActive  bool `json:"tokenBonusActive"`
	NativeBonusActive bool `json:"nativeBonusActive"`
	CreditedActive    bool `json:"creditedActive"`

	TokenThreshold           string `json:"tokenThreshold"`
	TokenThresholdSponsored  string `json:"tokenThresholdSponsored"`
	NativeThreshold          string `json:"nativeThreshold"`
	NativeThresholdSponsored string `json:"nativeThresholdSponsored"`

	FreeClaim bool `json:"freeClaim"`
}

// StakingGenesis mirrors staking.Config; lock durations are given in days.
type StakingGenesis struct {
	Lock []struct {
		Enabled    bool   `json:"enabled"`
		Days       uint64 `json:"days"`
		BaseAprBps uint64 `json:"baseAprBps"`
	} `json:"lock"`
	Referral []struct {
		Enabled      bool   `json:"enabled"`
		MinReferrals uint64 `json:"minReferrals"`
		BonusBps     uint64 `json:"bonusBps"`
	} `json:"referral"`
	AutoCompoundBonusBps  uint64 `json:"autoCompoundBonusBps"`
	EarlyExitPrincipalBps uint64 `json:"earlyExitPrincipalBps"`
	EarlyExitRewardBps    uint64 `json:"earlyExitRewardBps"`
}

// LoadGenesis reads and parses a genesis document.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genesis: read %s: %w", path, err)
	}
	gen := &Genesis{}
	if err := json.Unmarshal(raw, gen); err != nil {
		return nil, fmt.Errorf("genesis: parse %s: %w", path, err)
	}
	return gen, nil
}

func genesisAmount(field, raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("genesis: invalid %s amount %q", field, raw)
	}
	return amount, nil
}

// PurchaseConfig converts the section into an engine configuration.
func (g *PurchaseGenesis) PurchaseConfig() (*purchase.Config, error) {
	rate, err := genesisAmount("purchase rate", g.Rate)
	if err != nil {
		return nil, err
	}
	minPayment, err := genesisAmount("purchase minPayment", g.MinPayment)
	if err != nil {
		return nil, err
	}
	cap, err := genesisAmount("purchase cap", g.Cap)
	if err != nil {
		return nil, err
	}
	return &purchase.Config{
		Active:             g.Active,
		StartTime:          g.StartTime,
		Rate:               rate,
		MinPayment:         minPayment,
		Cap:                cap,
		WhaleThresholdBps:  g.WhaleThresholdBps,
		WhaleTaxBps:        g.WhaleTaxBps,
		RedeemEnabled:      g.RedeemEnabled,
		RedeemMinReferrals: g.RedeemMinReferrals,
	}, nil
}

// RewardConfig converts the section into an engine configuration.
func (g *RewardsGenesis) RewardConfig() (*rewards.Config, error) {
	cfg := &rewards.Config{
		Milestone: rewards.MilestoneConfig{
			Interval:      g.Milestone.Interval,
			MaxMilestones: g.Milestone.MaxMilestones,
			GrowthBps:     g.Milestone.GrowthBps,
		},
		Organic: rewards.MultiplierConfig{
			Activation: g.Organic.Activation,
			Factor:     g.Organic.Factor,
			Window:     g.Organic.Window,
		},
		Sponsored: rewards.MultiplierConfig{
			Activation: g.Sponsored.Activation,
			Factor:     g.Sponsored.Factor,
			Window:     g.Sponsored.Window,
		},
	}
	bonus, err := genesisAmount("milestone bonus", g.Milestone.Bonus)
	if err != nil {
		return nil, err
	}
	cfg.Milestone.Bonus = bonus
	for _, step := range g.Steps {
		reward, err := genesisAmount("step reward", step.Reward)
		if err != nil {
			return nil, err
		}
		cfg.Steps = append(cfg.Steps, rewards.TierStep{Threshold: step.Threshold, Reward: reward})
	}
	return cfg, nil
}

// ClaimConfig converts the section into an engine configuration.
func (g *ClaimsGenesis) ClaimConfig() (*claims.Config, error) {
	cfg := &claims.Config{
		TokenBonusActive:  g.TokenBonusActive,
		NativeBonusActive: g.NativeBonusActive,
		CreditedActive:    g.CreditedActive,
		FreeClaim:         g.FreeClaim,
	}
	var err error
	if cfg.TokenThreshold, err = genesisAmount("token threshold", g.TokenThreshold); err != nil {
		return nil, err
	}
	if cfg.TokenThresholdSponsored, err = genesisAmount("sponsored token threshold", g.TokenThresholdSponsored); err != nil {
		return nil, err
	}
	if cfg.NativeThreshold, err = genesisAmount("native threshold", g.NativeThreshold); err != nil {
		return nil, err
	}
	if cfg.NativeThresholdSponsored, err = genesisAmount("sponsored native threshold", g.NativeThresholdSponsored); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StakingConfig converts the section into an engine configuration.
func (g *StakingGenesis) StakingConfig() (*staking.Config, error) {
	day := uint64(24 * 60 * 60)
	cfg := &staking.Config{
		AutoCompoundBonusBps:  g.AutoCompoundBonusBps,
		EarlyExitPrincipalBps: g.EarlyExitPrincipalBps,
		EarlyExitRewardBps:    g.EarlyExitRewardBps,
	}
	for _, tier := range g.Lock {
		cfg.Lock = append(cfg.Lock, staking.LockTier{
			Enabled:    tier.Enabled,
			Duration:   tier.Days * day,
			BaseAprBps: tier.BaseAprBps,
		})
	}
	for _, tier := range g.Referral {
		cfg.Referral = append(cfg.Referral, staking.ReferralTier{
			Enabled:      tier.Enabled,
			MinReferrals: tier.MinReferrals,
			BonusBps:     tier.BonusBps,
		})
	}
	return cfg, nil
}
