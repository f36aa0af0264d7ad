package staking

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/native/membership"
)

type mockState struct {
	positions    map[uint64]*Position
	ownerIdx     map[common.Address][]uint64
	seq          uint64
	cfg          *Config
	pool         *big.Int
	metrics      Metrics
	participants map[common.Address]*membership.Participant
}

func newMockState(cfg *Config) *mockState {
	return &mockState{
		positions:    make(map[uint64]*Position),
		ownerIdx:     make(map[common.Address][]uint64),
		cfg:          cfg,
		pool:         big.NewInt(0),
		participants: make(map[common.Address]*membership.Participant),
	}
}

func (m *mockState) StakingPosition(id uint64) (*Position, bool, error) {
	pos, ok := m.positions[id]
	if !ok {
		return nil, false, nil
	}
	return pos.Clone(), true, nil
}

func (m *mockState) PutStakingPosition(p *Position) error {
	m.positions[p.ID] = p.Clone()
	return nil
}

func (m *mockState) DeleteStakingPosition(id uint64) error {
	delete(m.positions, id)
	return nil
}

func (m *mockState) OwnerPositions(addr common.Address) ([]uint64, error) {
	return append([]uint64(nil), m.ownerIdx[addr]...), nil
}

func (m *mockState) SetOwnerPositions(addr common.Address, ids []uint64) error {
	m.ownerIdx[addr] = append([]uint64(nil), ids...)
	return nil
}

func (m *mockState) NextPositionID() (uint64, error) {
	m.seq++
	return m.seq, nil
}

func (m *mockState) StakingConfig() (*Config, error) {
	return m.cfg.Clone(), nil
}

func (m *mockState) PenaltyPool() (*big.Int, error) {
	return new(big.Int).Set(m.pool), nil
}

func (m *mockState) SetPenaltyPool(pool *big.Int) error {
	m.pool = new(big.Int).Set(pool)
	return nil
}

func (m *mockState) StakingMetrics() (*Metrics, error) {
	clone := m.metrics
	return (&clone).Normalize(), nil
}

func (m *mockState) PutStakingMetrics(metrics *Metrics) error {
	m.metrics = *metrics
	return nil
}

func (m *mockState) Participant(addr common.Address) (*membership.Participant, bool, error) {
	record, ok := m.participants[addr]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

type mockToken struct {
	balances map[common.Address]*big.Int
}

func newMockToken() *mockToken {
	return &mockToken{balances: make(map[common.Address]*big.Int)}
}

func (m *mockToken) Mint(to common.Address, amount *big.Int) error {
	m.balances[to] = new(big.Int).Add(m.balance(to), amount)
	return nil
}

func (m *mockToken) Burn(from common.Address, amount *big.Int) error {
	balance := m.balance(from)
	if balance.Cmp(amount) < 0 {
		return errors.New("insufficient")
	}
	m.balances[from] = new(big.Int).Sub(balance, amount)
	return nil
}

func (m *mockToken) BalanceOf(addr common.Address) (*big.Int, error) {
	return new(big.Int).Set(m.balance(addr)), nil
}

func (m *mockToken) Paused() bool { return false }

func (m *mockToken) balance(addr common.Address) *big.Int {
	if b, ok := m.balances[addr]; ok {
		return b
	}
	return big.NewInt(0)
}

// flatConfig is a one-tier configuration with a round 100% APR so reward
// expectations stay exact.
func flatConfig() *Config {
	day := uint64(24 * 60 * 60)
	return &Config{
		Lock: []LockTier{
			{Enabled: true, Duration: 30 * day, BaseAprBps: 10_000},
		},
		EarlyExitPrincipalBps: 1_000,
		EarlyExitRewardBps:    5_000,
	}
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type clock struct{ now int64 }

func (c *clock) advance(seconds int64) { c.now += seconds }

func newTestEngine(cfg *Config) (*Engine, *mockState, *mockToken, *clock) {
	st := newMockState(cfg)
	token := newMockToken()
	clk := &clock{now: 1_700_000_000}
	engine := NewEngine()
	engine.SetState(st)
	engine.SetToken(token)
	engine.SetNowFunc(func() int64 { return clk.now })
	return engine, st, token, clk
}

func TestCreateBurnsPrincipal(t *testing.T) {
	engine, st, token, _ := newTestEngine(flatConfig())
	owner := common.HexToAddress("0x01")
	token.balances[owner] = tokens(1_500)

	pos, err := engine.Create(owner, 0, tokens(1_000), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pos.ID != 1 {
		t.Fatalf("position id: got %d", pos.ID)
	}
	if pos.Principal.Cmp(tokens(1_000)) != 0 || pos.RewardBase.Cmp(tokens(1_000)) != 0 {
		t.Fatalf("principal/base: %s/%s", pos.Principal, pos.RewardBase)
	}
	if pos.AprBps != 10_000 {
		t.Fatalf("apr: got %d", pos.AprBps)
	}
	if pos.UnlockAt != pos.StartAt+30*24*60*60 {
		t.Fatalf("unlock time: %d vs %d", pos.UnlockAt, pos.StartAt)
	}
	if token.balance(owner).Cmp(tokens(500)) != 0 {
		t.Fatalf("remaining balance: %s", token.balance(owner))
	}
	if ids := st.ownerIdx[owner]; len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("owner index: %v", ids)
	}
	if st.metrics.TotalStaked.Cmp(tokens(1_000)) != 0 {
		t.Fatalf("total staked: %s", st.metrics.TotalStaked)
	}
	if st.metrics.OpenPositions != 1 {
		t.Fatalf("open positions: %d", st.metrics.OpenPositions)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	engine, _, token, _ := newTestEngine(flatConfig())
	owner := common.HexToAddress("0x02")
	token.balances[owner] = tokens(10)

	if _, err := engine.Create(owner, 0, big.NewInt(0), false); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected amount error, got %v", err)
	}
	if _, err := engine.Create(owner, 5, tokens(1), false); !errors.Is(err, ErrUnknownLockTier) {
		t.Fatalf("expected tier error, got %v", err)
	}
	if _, err := engine.Create(owner, 0, tokens(100), false); err == nil {
		t.Fatal("expected burn failure on insufficient balance")
	}
}

func TestAccrueOneFullYear(t *testing.T) {
	// 100% APR on a base of 1000 tokens over exactly one year pays exactly
	// 1000 tokens.
	engine, _, token, clk := newTestEngine(flatConfig())
	owner := common.HexToAddress("0x03")
	token.balances[owner] = tokens(1_000)

	pos, err := engine.Create(owner, 0, tokens(1_000), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clk.advance(int64(SecondsPerYear))

	settled, err := engine.Settle(pos.ID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Unclaimed.Cmp(tokens(1_000)) != 0 {
		t.Fatalf("unclaimed after one year: got %s, want %s", settled.Unclaimed, tokens(1_000))
	}
	// Settling again at the same instant accrues nothing.
	settled, err = engine.Settle(pos.ID)
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if settled.Unclaimed.Cmp(tokens(1_000)) != 0 {
		t.Fatalf("double accrual: %s", settled.Unclaimed)
	}
}

func TestReferralTierBoostsApr(t *testing.T) {
	cfg := flatConfig()
	cfg.Referral = []ReferralTier{
		{Enabled: true, MinReferrals: 1, BonusBps: 100},
		{Enabled: true, MinReferrals: 5, BonusBps: 300},
	}
	engine, st, token, _ := newTestEngine(cfg)
	owner := common.HexToAddress("0x04")
	token.balances[owner] = tokens(10)
	st.participants[owner] = (&membership.Participant{
		Seq:           1,
		Primary:       owner,
		ReferralCount: 5,
	}).Normalize()

	pos, err := engine.Create(owner, 0, tokens(10), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pos.AprBps != 10_300 {
		t.Fatalf("boosted apr: got %d", pos.AprBps)
	}
	if pos.ReferralTier != 2 || pos.ReferralBonusBps != 300 {
		t.Fatalf("referral tier: %d/%d", pos.ReferralTier, pos.ReferralBonusBps)
	}
}

func TestAutoCompoundFoldsIntoBase(t *testing.T) {
	cfg := flatConfig()
	cfg.AutoCompoundBonusBps = 0
	engine, _, token, clk := newTestEngine(cfg)
	owner := common.HexToAddress("0x05")
	token.balances[owner] = tokens(1_000)

	pos, err := engine.Create(owner, 0, tokens(1_000), true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clk.advance(int64(SecondsPerYear))

	settled, err := engine.Settle(pos.ID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Unclaimed.Sign() != 0 {
		t.Fatalf("auto-compound left unclaimed: %s", settled.Unclaimed)
	}
	if settled.RewardBase.Cmp(tokens(2_000)) != 0 {
		t.Fatalf("compounded base: got %s", settled.RewardBase)
	}
	if settled.Compounded.Cmp(tokens(1_000)) != 0 {
		t.Fatalf("compounded meter: got %s", settled.Compounded)
	}
	// Nothing to claim while compounding.
	if _, err := engine.Claim(owner, pos.ID); !errors.Is(err, ErrNothingToClaim) {
		t.Fatalf("expected nothing to claim, got %v", err)
	}
}

func TestClaimPaysRewards(t *testing.T) {
	engine, st, token, clk := newTestEngine(flatConfig())
	owner := common.HexToAddress("0x06")
	token.balances[owner] = tokens(1_000)

	pos, err := engine.Create(owner, 0, tokens(1_000), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clk.advance(int64(SecondsPerYear) / 2)

	amount, err := engine.Claim(owner, pos.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if amount.Cmp(tokens(500)) != 0 {
		t.Fatalf("claimed: got %s, want %s", amount, tokens(500))
	}
	if token.balance(owner).Cmp(tokens(500)) != 0 {
		t.Fatalf("owner balance: %s", token.balance(owner))
	}
	after := st.positions[pos.ID]
	if after.Unclaimed.Sign() != 0 {
		t.Fatalf("unclaimed after payout: %s", after.Unclaimed)
	}
	if after.TotalClaimed.Cmp(tokens(500)) != 0 {
		t.Fatalf("total claimed: %s", after.TotalClaimed)
	}
	if st.metrics.TotalRewardsPaid.Cmp(tokens(500)) != 0 {
		t.Fatalf("rewards paid metric: %s", st.metrics.TotalRewardsPaid)
	}

	if _, err := engine.Claim(owner, pos.ID); !errors.Is(err, ErrNothingToClaim) {
		t.Fatalf("expected nothing to claim, got %v", err)
	}
	other := common.HexToAddress("0x07")
	if _, err := engine.Claim(other, pos.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner check, got %v", err)
	}
}

func TestAddToPositionSettlesFirst(t *testing.T) {
	engine, st, token, clk := newTestEngine(flatConfig())
	owner := common.HexToAddress("0x08")
	token.balances[owner] = tokens(2_000)

	pos, err := engine.Create(owner, 0, tokens(1_000), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clk.advance(int64(SecondsPerYear))

	updated, err := engine.AddToPosition(owner, pos.ID, tokens(1_000))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	// The first year accrued against the original base only.
	if updated.Unclaimed.Cmp(tokens(1_000)) != 0 {
		t.Fatalf("settled rewards: %s", updated.Unclaimed)
	}
	if updated.Principal.Cmp(tokens(2_000)) != 0 || updated.RewardBase.Cmp(tokens(2_000)) != 0 {
		t.Fatalf("increased principal/base: %s/%s", updated.Principal, updated.RewardBase)
	}
	if st.metrics.TotalStaked.Cmp(tokens(2_000)) != 0 {
		t.Fatalf("total staked: %s", st.metrics.TotalStaked)
	}
}

func TestSetAutoCompoundRebasesRewardBase(t *testing.T) {
	cfg := flatConfig()
	cfg.AutoCompoundBonusBps = 500
	engine, _, token, clk := newTestEngine(cfg)
	owner := common.HexToAddress("0x09")
	token.balances[owner] = tokens(1_000)

	pos, err := engine.Create(owner, 0, tokens(1_000), true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pos.AprBps != 10_500 {
		t.Fatalf("auto-compound apr: got %d", pos.AprBps)
	}
	clk.advance(int64(SecondsPerYear))

	updated, err := engine.SetAutoCompound(owner, pos.ID, false)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if updated.AutoCompound {
		t.Fatal("still auto-compounding")
	}
	if updated.AprBps != 10_000 {
		t.Fatalf("apr after toggle: got %d", updated.AprBps)
	}
	// Compounded rewards keep earning: base = principal + compounded.
	want := new(big.Int).Add(updated.Principal, updated.Compounded)
	if updated.RewardBase.Cmp(want) != 0 {
		t.Fatalf("reward base: got %s, want %s", updated.RewardBase, want)
	}
}

func TestExitAfterUnlock(t *testing.T) {
	engine, st, token, clk := newTestEngine(flatConfig())
	owner := common.HexToAddress("0x0a")
	token.balances[owner] = tokens(1_000)

	pos, err := engine.Create(owner, 0, tokens(1_000), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clk.advance(int64(SecondsPerYear))

	payout, err := engine.Exit(owner, pos.ID, false)
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	// Principal plus one year of rewards, no penalty.
	if payout.Cmp(tokens(2_000)) != 0 {
		t.Fatalf("payout: got %s, want %s", payout, tokens(2_000))
	}
	if token.balance(owner).Cmp(tokens(2_000)) != 0 {
		t.Fatalf("owner balance: %s", token.balance(owner))
	}
	if st.pool.Sign() != 0 {
		t.Fatalf("penalty pool moved: %s", st.pool)
	}
	if _, ok := st.positions[pos.ID]; ok {
		t.Fatal("position record not removed")
	}
	if len(st.ownerIdx[owner]) != 0 {
		t.Fatalf("owner index: %v", st.ownerIdx[owner])
	}
	if st.metrics.OpenPositions != 0 {
		t.Fatalf("open positions: %d", st.metrics.OpenPositions)
	}
	if st.metrics.TotalStaked.Sign() != 0 {
		t.Fatalf("total staked: %s", st.metrics.TotalStaked)
	}
}

func TestEarlyExitPenalties(t *testing.T) {
	engine, st, token, clk := newTestEngine(flatConfig())
	owner := common.HexToAddress("0x0b")
	token.balances[owner] = tokens(1_000)

	pos, err := engine.Create(owner, 0, tokens(1_000), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// One day in: still locked.
	clk.advance(24 * 60 * 60)

	if _, err := engine.Exit(owner, pos.ID, false); !errors.Is(err, ErrStillLocked) {
		t.Fatalf("expected still locked, got %v", err)
	}

	payout, err := engine.Exit(owner, pos.ID, true)
	if err != nil {
		t.Fatalf("forced exit: %v", err)
	}
	// 10% of principal plus 50% of accrued rewards goes to the pool.
	rewards := accrue(tokens(1_000), 10_000, 24*60*60)
	principalCut := tokens(100)
	rewardCut := new(big.Int).Quo(rewards, big.NewInt(2))
	penalty := new(big.Int).Add(principalCut, rewardCut)
	want := new(big.Int).Add(tokens(1_000), rewards)
	want.Sub(want, penalty)
	if payout.Cmp(want) != 0 {
		t.Fatalf("penalised payout: got %s, want %s", payout, want)
	}
	if st.pool.Cmp(penalty) != 0 {
		t.Fatalf("penalty pool: got %s, want %s", st.pool, penalty)
	}
	// The metric counts what the owner actually received, not the
	// pre-penalty accrual.
	paid := new(big.Int).Sub(rewards, rewardCut)
	if st.metrics.TotalRewardsPaid.Cmp(paid) != 0 {
		t.Fatalf("rewards paid metric: got %s, want %s", st.metrics.TotalRewardsPaid, paid)
	}
}

func TestExitSwapAndPopKeepsIndexDense(t *testing.T) {
	engine, st, token, clk := newTestEngine(flatConfig())
	owner := common.HexToAddress("0x0c")
	token.balances[owner] = tokens(30)

	var ids []uint64
	for i := 0; i < 3; i++ {
		pos, err := engine.Create(owner, 0, tokens(10), false)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, pos.ID)
	}
	clk.advance(int64(31 * 24 * 60 * 60))

	if _, err := engine.Exit(owner, ids[1], false); err != nil {
		t.Fatalf("exit middle: %v", err)
	}
	remaining := st.ownerIdx[owner]
	if len(remaining) != 2 {
		t.Fatalf("index length: %d", len(remaining))
	}
	seen := map[uint64]bool{}
	for _, id := range remaining {
		seen[id] = true
	}
	if !seen[ids[0]] || !seen[ids[2]] || seen[ids[1]] {
		t.Fatalf("index contents: %v", remaining)
	}

	positions, err := engine.Positions(owner)
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("open positions: %d", len(positions))
	}
}

func TestStakeReentryRejected(t *testing.T) {
	engine, _, token, _ := newTestEngine(flatConfig())
	owner := common.HexToAddress("0x0d")
	token.balances[owner] = tokens(10)

	if err := engine.guard.Enter(owner); err != nil {
		t.Fatalf("enter: %v", err)
	}
	defer engine.guard.Exit(owner)
	if _, err := engine.Create(owner, 0, tokens(10), false); err == nil {
		t.Fatal("expected reentrant create to fail")
	}
}
