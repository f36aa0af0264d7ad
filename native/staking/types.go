package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SecondsPerYear is the accrual denominator for APR math.
const SecondsPerYear = 365 * 24 * 60 * 60

const bpsDenom = 10_000

// Position is one staking position. Lifecycle: Active (accruing) until
// withdrawn, at which point the record is removed outright.
type Position struct {
	ID    uint64
	Owner common.Address

	LockTier         uint8
	ReferralTier     uint8
	ReferralBonusBps uint64
	AutoCompound     bool

	Principal    *big.Int
	RewardBase   *big.Int
	Unclaimed    *big.Int
	Compounded   *big.Int
	TotalClaimed *big.Int

	StartAt    uint64
	LastUpdate uint64
	UnlockAt   uint64

	AprBps uint64
}

// Normalize replaces nil amounts with zeros.
func (p *Position) Normalize() *Position {
	if p == nil {
		return nil
	}
	if p.Principal == nil {
		p.Principal = big.NewInt(0)
	}
	if p.RewardBase == nil {
		p.RewardBase = big.NewInt(0)
	}
	if p.Unclaimed == nil {
		p.Unclaimed = big.NewInt(0)
	}
	if p.Compounded == nil {
		p.Compounded = big.NewInt(0)
	}
	if p.TotalClaimed == nil {
		p.TotalClaimed = big.NewInt(0)
	}
	return p
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	out := *p
	if p.Principal != nil {
		out.Principal = new(big.Int).Set(p.Principal)
	}
	if p.RewardBase != nil {
		out.RewardBase = new(big.Int).Set(p.RewardBase)
	}
	if p.Unclaimed != nil {
		out.Unclaimed = new(big.Int).Set(p.Unclaimed)
	}
	if p.Compounded != nil {
		out.Compounded = new(big.Int).Set(p.Compounded)
	}
	if p.TotalClaimed != nil {
		out.TotalClaimed = new(big.Int).Set(p.TotalClaimed)
	}
	return &out
}

// Metrics aggregates module-wide staking totals.
type Metrics struct {
	TotalStaked      *big.Int
	TotalRewardsPaid *big.Int
	OpenPositions    uint64
}

// Normalize replaces nil amounts with zeros.
func (m *Metrics) Normalize() *Metrics {
	if m.TotalStaked == nil {
		m.TotalStaked = big.NewInt(0)
	}
	if m.TotalRewardsPaid == nil {
		m.TotalRewardsPaid = big.NewInt(0)
	}
	return m
}
