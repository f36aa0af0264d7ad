package rewards

import (
	"errors"
	"fmt"
	"math/big"
)

// Scale is the basis-point denominator shared by every percentage knob.
const Scale = 10_000

const (
	maxMilestoneCount   = 100
	minMultiplierFactor = 2
	maxMultiplierFactor = 10
	maxMultiplierWindow = 20
)

var (
	errEmptyTable       = errors.New("rewards: threshold table must not be empty")
	errZeroThreshold    = errors.New("rewards: thresholds must be non-zero")
	errUnsortedTable    = errors.New("rewards: thresholds must be strictly ascending")
	errDecreasingReward = errors.New("rewards: rewards must be non-decreasing")
	errNilReward        = errors.New("rewards: reward amount must be set")
	errMilestoneWindow  = errors.New("rewards: milestone interval must be positive")
	errMilestoneCount   = errors.New("rewards: max milestones out of range")
	errMilestoneGrowth  = errors.New("rewards: milestone growth exceeds scale")
	errMultiplierFactor = errors.New("rewards: multiplier factor out of range")
	errMultiplierWindow = errors.New("rewards: multiplier window out of range")
	errMultiplierActive = errors.New("rewards: activation threshold must be positive")
)

// TierStep maps a referral-count threshold to the token reward paid per
// referral once the participant's count reaches the threshold.
type TierStep struct {
	Threshold uint64
	Reward    *big.Int
}

// MilestoneConfig parameterises the progressive native-currency bonus paid
// to a referrer each time its active-referee count crosses an interval.
type MilestoneConfig struct {
	Bonus         *big.Int
	Interval      uint64
	MaxMilestones uint64
	GrowthBps     uint64
}

// MultiplierConfig parameterises the periodic reward multiplier for one
// sponsorship class. The multiplier reactivates every Activation referrals
// and stays on for Window referral-count units.
type MultiplierConfig struct {
	Activation uint64
	Factor     uint64
	Window     uint64
}

// Config is the whole referral reward configuration, replaced atomically by
// governance.
type Config struct {
	Steps     []TierStep
	Milestone MilestoneConfig
	Organic   MultiplierConfig
	Sponsored MultiplierConfig
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{
		Milestone: c.Milestone,
		Organic:   c.Organic,
		Sponsored: c.Sponsored,
	}
	if c.Milestone.Bonus != nil {
		out.Milestone.Bonus = new(big.Int).Set(c.Milestone.Bonus)
	}
	out.Steps = make([]TierStep, len(c.Steps))
	for i, step := range c.Steps {
		out.Steps[i] = TierStep{Threshold: step.Threshold}
		if step.Reward != nil {
			out.Steps[i].Reward = new(big.Int).Set(step.Reward)
		}
	}
	return out
}

// Validate enforces the structural invariants on every config replacement,
// not just at genesis.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("rewards: config must not be nil")
	}
	if err := validateSteps(c.Steps); err != nil {
		return err
	}
	if c.Milestone.Bonus == nil || c.Milestone.Bonus.Sign() < 0 {
		return errNilReward
	}
	if c.Milestone.Interval == 0 {
		return errMilestoneWindow
	}
	if c.Milestone.MaxMilestones == 0 || c.Milestone.MaxMilestones > maxMilestoneCount {
		return errMilestoneCount
	}
	if c.Milestone.GrowthBps > Scale {
		return errMilestoneGrowth
	}
	for _, m := range []MultiplierConfig{c.Organic, c.Sponsored} {
		if m.Activation == 0 {
			return errMultiplierActive
		}
		if m.Factor < minMultiplierFactor || m.Factor > maxMultiplierFactor {
			return errMultiplierFactor
		}
		if m.Window == 0 || m.Window > maxMultiplierWindow {
			return errMultiplierWindow
		}
	}
	return nil
}

func validateSteps(steps []TierStep) error {
	if len(steps) == 0 {
		return errEmptyTable
	}
	var prevReward *big.Int
	for i, step := range steps {
		if step.Threshold == 0 {
			return errZeroThreshold
		}
		if i > 0 && step.Threshold <= steps[i-1].Threshold {
			return fmt.Errorf("%w: index %d", errUnsortedTable, i)
		}
		if step.Reward == nil || step.Reward.Sign() < 0 {
			return errNilReward
		}
		if prevReward != nil && step.Reward.Cmp(prevReward) < 0 {
			return fmt.Errorf("%w: index %d", errDecreasingReward, i)
		}
		prevReward = step.Reward
	}
	return nil
}

// DefaultConfig returns the genesis reward configuration.
func DefaultConfig() *Config {
	token := func(units int64) *big.Int {
		return new(big.Int).Mul(big.NewInt(units), big.NewInt(1e18))
	}
	return &Config{
		Steps: []TierStep{
			{Threshold: 1, Reward: token(10)},
			{Threshold: 5, Reward: token(15)},
			{Threshold: 15, Reward: token(25)},
			{Threshold: 40, Reward: token(40)},
			{Threshold: 100, Reward: token(60)},
		},
		Milestone: MilestoneConfig{
			Bonus:         token(5),
			Interval:      10,
			MaxMilestones: 20,
			GrowthBps:     2_500,
		},
		Organic:   MultiplierConfig{Activation: 25, Factor: 2, Window: 5},
		Sponsored: MultiplierConfig{Activation: 20, Factor: 3, Window: 5},
	}
}
