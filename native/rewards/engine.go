package rewards

import "math/big"

// BaseReward returns the per-referral token reward for the given referral
// count: the reward attached to the highest threshold less than or equal to
// count, or the first tier's reward when count sits below every threshold.
// An empty table is a configuration error surfaced by Config.Validate, so it
// is rejected here rather than treated as a zero reward.
func BaseReward(count uint64, steps []TierStep) (*big.Int, error) {
	if len(steps) == 0 {
		return nil, errEmptyTable
	}
	idx := 0
	for i, step := range steps {
		if count < step.Threshold {
			break
		}
		idx = i
	}
	reward := steps[idx].Reward
	if reward == nil {
		return nil, errNilReward
	}
	return new(big.Int).Set(reward), nil
}

// RewardWithMultiplier boosts the base reward during the periodic multiplier
// window of the participant's sponsorship class. The window reopens every
// Activation referrals: position = count mod Activation, boosted while
// position < Window.
func RewardWithMultiplier(count uint64, sponsored bool, cfg *Config) (*big.Int, error) {
	if cfg == nil {
		return nil, errEmptyTable
	}
	reward, err := BaseReward(count, cfg.Steps)
	if err != nil {
		return nil, err
	}
	m := cfg.Organic
	if sponsored {
		m = cfg.Sponsored
	}
	if m.Activation == 0 || count < m.Activation {
		return reward, nil
	}
	if count%m.Activation < m.Window {
		reward.Mul(reward, new(big.Int).SetUint64(m.Factor))
	}
	return reward, nil
}

// Tier classifies a referral count into a 1-based tier index. Counts below
// the first threshold map to tier 1; counts at or above the highest map to
// len(steps).
func Tier(count uint64, steps []TierStep) uint8 {
	tier := uint8(1)
	for i, step := range steps {
		if count < step.Threshold {
			break
		}
		tier = uint8(i + 1)
	}
	return tier
}

// MilestoneReward computes the native-currency bonus owed for every
// milestone crossed between lastMilestone and the milestone implied by
// currentCount, plus the new milestone watermark. A single milestone m pays
// Bonus + (m-1) * increment where increment = Bonus * GrowthBps / Scale; the
// total for the crossed range is the closed-form arithmetic-series sum, kept
// integer-safe by multiplying before the only halving division.
func MilestoneReward(currentCount, lastMilestone uint64, cfg MilestoneConfig) (*big.Int, uint64) {
	if cfg.Interval == 0 || cfg.Bonus == nil {
		return big.NewInt(0), lastMilestone
	}
	milestone := currentCount / cfg.Interval
	if milestone > cfg.MaxMilestones {
		milestone = cfg.MaxMilestones
	}
	last := lastMilestone
	if last > cfg.MaxMilestones {
		last = cfg.MaxMilestones
	}
	if milestone <= last {
		return big.NewInt(0), last
	}

	increment := new(big.Int).Mul(cfg.Bonus, new(big.Int).SetUint64(cfg.GrowthBps))
	increment.Quo(increment, big.NewInt(Scale))

	n := new(big.Int).SetUint64(milestone - last)
	// First crossed milestone is last+1, paying Bonus + last*increment.
	first := new(big.Int).Mul(increment, new(big.Int).SetUint64(last))
	first.Add(first, cfg.Bonus)

	// sum = n*first + increment * n*(n-1)/2
	pairs := new(big.Int).Sub(n, big.NewInt(1))
	pairs.Mul(pairs, n)
	pairs.Quo(pairs, big.NewInt(2))

	total := new(big.Int).Mul(n, first)
	total.Add(total, new(big.Int).Mul(increment, pairs))
	return total, milestone
}
