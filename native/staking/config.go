package staking

import (
	"errors"
	"fmt"
)

const (
	maxLockTiers     = 7
	maxReferralTiers = 7

	minBaseAprBps = 1_500   // 15%
	maxBaseAprBps = 200_000 // 2000%

	maxAutoCompoundBonusBps = 5_000   // 50%
	maxEarlyExitBps         = 10_000  // 100%
	maxReferralBonusBps     = 20_000  // 200%
)

var allowedLockDays = [...]uint64{7, 14, 30, 45, 60, 90}

var (
	errNilConfig          = errors.New("staking: config must not be nil")
	errTooManyLockTiers   = errors.New("staking: too many lock tiers")
	errTooManyRefTiers    = errors.New("staking: too many referral tiers")
	errLockDuration       = errors.New("staking: lock duration not on the allow-list")
	errBaseAprRange       = errors.New("staking: base APR out of range")
	errAutoCompoundBonus  = errors.New("staking: auto-compound bonus too large")
	errEarlyExitPenalty   = errors.New("staking: early-exit penalty exceeds scale")
	errReferralBonusRange = errors.New("staking: referral bonus too large")
	errRefTierOrder       = errors.New("staking: referral thresholds must be strictly ascending")
)

// LockTier configures one lock duration and its base APR.
type LockTier struct {
	Enabled    bool
	Duration   uint64 // seconds
	BaseAprBps uint64
}

// ReferralTier configures one referral-count threshold and its APR bonus.
type ReferralTier struct {
	Enabled      bool
	MinReferrals uint64
	BonusBps     uint64
}

// Config is the whole staking configuration, replaced atomically.
type Config struct {
	Lock     []LockTier
	Referral []ReferralTier

	AutoCompoundBonusBps  uint64
	EarlyExitPrincipalBps uint64
	EarlyExitRewardBps    uint64
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Lock = append([]LockTier(nil), c.Lock...)
	out.Referral = append([]ReferralTier(nil), c.Referral...)
	return &out
}

// Validate enforces the structural invariants on every config update, not
// only at genesis.
func (c *Config) Validate() error {
	if c == nil {
		return errNilConfig
	}
	if len(c.Lock) > maxLockTiers {
		return errTooManyLockTiers
	}
	if len(c.Referral) > maxReferralTiers {
		return errTooManyRefTiers
	}
	for i, tier := range c.Lock {
		if !tier.Enabled {
			continue
		}
		if !allowedDuration(tier.Duration) {
			return fmt.Errorf("%w: tier %d", errLockDuration, i)
		}
		if tier.BaseAprBps < minBaseAprBps || tier.BaseAprBps > maxBaseAprBps {
			return fmt.Errorf("%w: tier %d", errBaseAprRange, i)
		}
	}
	for i, tier := range c.Referral {
		if tier.BonusBps > maxReferralBonusBps {
			return fmt.Errorf("%w: tier %d", errReferralBonusRange, i)
		}
		if i > 0 && tier.MinReferrals <= c.Referral[i-1].MinReferrals {
			return fmt.Errorf("%w: tier %d", errRefTierOrder, i)
		}
	}
	if c.AutoCompoundBonusBps > maxAutoCompoundBonusBps {
		return errAutoCompoundBonus
	}
	if c.EarlyExitPrincipalBps > maxEarlyExitBps || c.EarlyExitRewardBps > maxEarlyExitBps {
		return errEarlyExitPenalty
	}
	return nil
}

func allowedDuration(seconds uint64) bool {
	for _, days := range allowedLockDays {
		if seconds == days*24*60*60 {
			return true
		}
	}
	return false
}

// ReferralBonus resolves the APR bonus for a referral count. Disabled tiers
// and counts below every threshold resolve to tier "None" with no bonus.
func (c *Config) ReferralBonus(referralCount uint64) (uint8, uint64) {
	tier := uint8(0)
	bonus := uint64(0)
	for i, rt := range c.Referral {
		if referralCount < rt.MinReferrals {
			break
		}
		if !rt.Enabled {
			continue
		}
		tier = uint8(i + 1)
		bonus = rt.BonusBps
	}
	return tier, bonus
}

// DefaultConfig returns the genesis staking configuration.
func DefaultConfig() *Config {
	day := uint64(24 * 60 * 60)
	return &Config{
		Lock: []LockTier{
			{Enabled: true, Duration: 7 * day, BaseAprBps: 1_500},
			{Enabled: true, Duration: 14 * day, BaseAprBps: 2_200},
			{Enabled: true, Duration: 30 * day, BaseAprBps: 3_500},
			{Enabled: true, Duration: 45 * day, BaseAprBps: 4_500},
			{Enabled: true, Duration: 60 * day, BaseAprBps: 6_000},
			{Enabled: true, Duration: 90 * day, BaseAprBps: 9_000},
		},
		Referral: []ReferralTier{
			{Enabled: true, MinReferrals: 1, BonusBps: 100},
			{Enabled: true, MinReferrals: 5, BonusBps: 300},
			{Enabled: true, MinReferrals: 15, BonusBps: 700},
			{Enabled: true, MinReferrals: 40, BonusBps: 1_200},
			{Enabled: true, MinReferrals: 100, BonusBps: 2_000},
		},
		AutoCompoundBonusBps:  500,
		EarlyExitPrincipalBps: 1_000,
		EarlyExitRewardBps:    5_000,
	}
}
