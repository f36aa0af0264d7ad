package rewards

import (
	"errors"
	"math/big"
	"testing"
)

func testSteps() []TierStep {
	return []TierStep{
		{Threshold: 1, Reward: big.NewInt(100)},
		{Threshold: 5, Reward: big.NewInt(150)},
		{Threshold: 20, Reward: big.NewInt(400)},
	}
}

func TestBaseRewardLookup(t *testing.T) {
	steps := testSteps()
	cases := []struct {
		count uint64
		want  int64
	}{
		{0, 100}, // below the first threshold falls back to the first tier
		{1, 100},
		{4, 100},
		{5, 150},
		{19, 150},
		{20, 400},
		{1000, 400},
	}
	for _, tc := range cases {
		got, err := BaseReward(tc.count, steps)
		if err != nil {
			t.Fatalf("count %d: %v", tc.count, err)
		}
		if got.Int64() != tc.want {
			t.Fatalf("count %d: got %s want %d", tc.count, got, tc.want)
		}
	}
}

func TestBaseRewardEmptyTable(t *testing.T) {
	if _, err := BaseReward(3, nil); err == nil {
		t.Fatal("empty table must fail")
	}
}

func TestBaseRewardMonotone(t *testing.T) {
	steps := testSteps()
	prev := big.NewInt(-1)
	for count := uint64(0); count <= 64; count++ {
		got, err := BaseReward(count, steps)
		if err != nil {
			t.Fatalf("count %d: %v", count, err)
		}
		if got.Cmp(prev) < 0 {
			t.Fatalf("reward decreased at count %d: %s < %s", count, got, prev)
		}
		prev = got
	}
}

func TestRewardWithMultiplierPeriodic(t *testing.T) {
	cfg := &Config{
		Steps:     testSteps(),
		Milestone: MilestoneConfig{Bonus: big.NewInt(1), Interval: 10, MaxMilestones: 10},
		Organic:   MultiplierConfig{Activation: 25, Factor: 2, Window: 5},
		Sponsored: MultiplierConfig{Activation: 20, Factor: 3, Window: 5},
	}

	// Every exact multiple of the activation threshold reopens the window.
	for k := uint64(1); k <= 4; k++ {
		count := k * 25
		base, _ := BaseReward(count, cfg.Steps)
		got, err := RewardWithMultiplier(count, false, cfg)
		if err != nil {
			t.Fatalf("count %d: %v", count, err)
		}
		want := new(big.Int).Mul(base, big.NewInt(2))
		if got.Cmp(want) != 0 {
			t.Fatalf("count %d: got %s want %s", count, got, want)
		}
		// One past the window the boost is gone.
		edge := count + 5
		base, _ = BaseReward(edge, cfg.Steps)
		got, err = RewardWithMultiplier(edge, false, cfg)
		if err != nil {
			t.Fatalf("count %d: %v", edge, err)
		}
		if got.Cmp(base) != 0 {
			t.Fatalf("count %d: boost applied outside window: %s", edge, got)
		}
	}

	// Below the activation threshold the modulo window never opens.
	got, err := RewardWithMultiplier(3, false, cfg)
	if err != nil {
		t.Fatalf("count 3: %v", err)
	}
	if got.Int64() != 100 {
		t.Fatalf("count 3: got %s want 100", got)
	}

	// Sponsored participants use their own activation and factor.
	got, err = RewardWithMultiplier(20, true, cfg)
	if err != nil {
		t.Fatalf("sponsored count 20: %v", err)
	}
	if got.Int64() != 400*3 {
		t.Fatalf("sponsored count 20: got %s want 1200", got)
	}
}

func TestTierClassification(t *testing.T) {
	steps := testSteps()
	cases := []struct {
		count uint64
		want  uint8
	}{
		{0, 1},
		{1, 1},
		{5, 2},
		{19, 2},
		{20, 3},
		{500, 3},
	}
	for _, tc := range cases {
		if got := Tier(tc.count, steps); got != tc.want {
			t.Fatalf("count %d: tier %d want %d", tc.count, got, tc.want)
		}
	}
}

func TestMilestoneRewardProgression(t *testing.T) {
	cfg := MilestoneConfig{
		Bonus:         big.NewInt(1000),
		Interval:      10,
		MaxMilestones: 5,
		GrowthBps:     2_500, // increment of 250 per milestone
	}

	// Crossing the first milestone pays the flat bonus.
	reward, milestone := MilestoneReward(10, 0, cfg)
	if reward.Int64() != 1000 || milestone != 1 {
		t.Fatalf("first milestone: got %s/%d", reward, milestone)
	}

	// Milestone 3 alone pays 1000 + 2*250.
	reward, milestone = MilestoneReward(30, 2, cfg)
	if reward.Int64() != 1500 || milestone != 3 {
		t.Fatalf("third milestone: got %s/%d", reward, milestone)
	}

	// Crossing several at once sums the arithmetic series.
	reward, milestone = MilestoneReward(30, 0, cfg)
	if reward.Int64() != 1000+1250+1500 || milestone != 3 {
		t.Fatalf("milestones 1..3: got %s/%d", reward, milestone)
	}

	// The watermark clamps at MaxMilestones.
	reward, milestone = MilestoneReward(1000, 4, cfg)
	if reward.Int64() != 1000+4*250 || milestone != 5 {
		t.Fatalf("clamped milestone: got %s/%d", reward, milestone)
	}
	reward, milestone = MilestoneReward(1000, 5, cfg)
	if reward.Sign() != 0 || milestone != 5 {
		t.Fatalf("beyond clamp: got %s/%d", reward, milestone)
	}
}

func TestMilestoneRewardAdditive(t *testing.T) {
	cfg := MilestoneConfig{
		Bonus:         big.NewInt(777),
		Interval:      3,
		MaxMilestones: 40,
		GrowthBps:     1_337,
	}
	counts := []uint64{0, 5, 11, 29, 60, 120}
	for i := 0; i < len(counts); i++ {
		for j := i; j < len(counts); j++ {
			for k := j; k < len(counts); k++ {
				a, b, c := counts[i], counts[j], counts[k]
				direct, _ := MilestoneReward(c, a/cfg.Interval, cfg)
				firstLeg, mid := MilestoneReward(b, a/cfg.Interval, cfg)
				secondLeg, _ := MilestoneReward(c, mid, cfg)
				split := new(big.Int).Add(firstLeg, secondLeg)
				if direct.Cmp(split) != 0 {
					t.Fatalf("split %d/%d/%d: direct %s split %s", a, b, c, direct, split)
				}
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty table", func(c *Config) { c.Steps = nil }},
		{"zero threshold", func(c *Config) { c.Steps[0].Threshold = 0 }},
		{"unsorted", func(c *Config) { c.Steps[1].Threshold = c.Steps[0].Threshold }},
		{"decreasing reward", func(c *Config) { c.Steps[1].Reward = big.NewInt(0) }},
		{"nil reward", func(c *Config) { c.Steps[2].Reward = nil }},
		{"zero interval", func(c *Config) { c.Milestone.Interval = 0 }},
		{"zero milestones", func(c *Config) { c.Milestone.MaxMilestones = 0 }},
		{"too many milestones", func(c *Config) { c.Milestone.MaxMilestones = 101 }},
		{"growth above scale", func(c *Config) { c.Milestone.GrowthBps = Scale + 1 }},
		{"factor too small", func(c *Config) { c.Organic.Factor = 1 }},
		{"factor too large", func(c *Config) { c.Sponsored.Factor = 11 }},
		{"window zero", func(c *Config) { c.Organic.Window = 0 }},
		{"window too long", func(c *Config) { c.Sponsored.Window = 21 }},
		{"zero activation", func(c *Config) { c.Organic.Activation = 0 }},
	}
	for _, tc := range cases {
		cfg := valid.Clone()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateStepsErrorIdentity(t *testing.T) {
	steps := []TierStep{
		{Threshold: 1, Reward: big.NewInt(5)},
		{Threshold: 1, Reward: big.NewInt(6)},
	}
	if err := validateSteps(steps); !errors.Is(err, errUnsortedTable) {
		t.Fatalf("expected unsorted error, got %v", err)
	}
}
