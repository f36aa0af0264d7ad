package membership

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MaxLinkedWallets caps the number of wallets (primary included) a single
// participant may hold.
const MaxLinkedWallets = 5

// BonusMeter tracks one accrued bonus balance together with its lifetime
// claimed counter and claim timestamps.
type BonusMeter struct {
	Accrued      *big.Int
	Claimed      *big.Int
	FirstClaimAt uint64
	LastClaimAt  uint64
}

// Normalize replaces nil amounts with zeros.
func (m *BonusMeter) Normalize() {
	if m.Accrued == nil {
		m.Accrued = big.NewInt(0)
	}
	if m.Claimed == nil {
		m.Claimed = big.NewInt(0)
	}
}

// Clone returns a deep copy of the meter.
func (m BonusMeter) Clone() BonusMeter {
	out := m
	if m.Accrued != nil {
		out.Accrued = new(big.Int).Set(m.Accrued)
	}
	if m.Claimed != nil {
		out.Claimed = new(big.Int).Set(m.Claimed)
	}
	return out
}

// RecordClaim moves amount from the accrued balance into the claimed
// counter and stamps the claim timestamps.
func (m *BonusMeter) RecordClaim(amount *big.Int, now uint64) {
	m.Normalize()
	m.Accrued.Sub(m.Accrued, amount)
	m.Claimed.Add(m.Claimed, amount)
	if m.FirstClaimAt == 0 {
		m.FirstClaimAt = now
	}
	m.LastClaimAt = now
}

// Participant is one record per registered identity. The record is addressed
// by its sequence id; the wallet index maps addresses onto sequence ids with
// 0 reserved as the "not registered" sentinel.
type Participant struct {
	Seq       uint64
	UID       string
	Primary   common.Address
	Referrer  common.Address
	Sponsored bool

	Active            bool
	FirstActiveAt     uint64
	LastActivityBlock uint64

	ReferralCount   uint64
	PositionIndex   uint64
	FirstReferralAt uint64
	LastReferralAt  uint64
	CurrentTier     uint8
	ActiveReferees  uint64
	LastMilestone   uint64

	PurchasedTokens *big.Int
	NativeSpent     *big.Int
	PurchaseCount   uint64
	PurchaseTax     *big.Int
	TaxRedeemed     bool
	TaxRedeemedAt   uint64

	TokenBonus     BonusMeter
	NativeBonus    BonusMeter
	CreditedTokens BonusMeter

	TokenBonusEligible  bool
	NativeBonusEligible bool
}

// Normalize replaces nil big.Int fields with zero values so the record can
// round-trip through the codec.
func (p *Participant) Normalize() *Participant {
	if p == nil {
		return nil
	}
	if p.PurchasedTokens == nil {
		p.PurchasedTokens = big.NewInt(0)
	}
	if p.NativeSpent == nil {
		p.NativeSpent = big.NewInt(0)
	}
	if p.PurchaseTax == nil {
		p.PurchaseTax = big.NewInt(0)
	}
	p.TokenBonus.Normalize()
	p.NativeBonus.Normalize()
	p.CreditedTokens.Normalize()
	return p
}

// Clone returns a deep copy of the participant record.
func (p *Participant) Clone() *Participant {
	if p == nil {
		return nil
	}
	out := *p
	if p.PurchasedTokens != nil {
		out.PurchasedTokens = new(big.Int).Set(p.PurchasedTokens)
	}
	if p.NativeSpent != nil {
		out.NativeSpent = new(big.Int).Set(p.NativeSpent)
	}
	if p.PurchaseTax != nil {
		out.PurchaseTax = new(big.Int).Set(p.PurchaseTax)
	}
	out.TokenBonus = p.TokenBonus.Clone()
	out.NativeBonus = p.NativeBonus.Clone()
	out.CreditedTokens = p.CreditedTokens.Clone()
	return &out
}

// Counters aggregates the network-wide totals maintained across operations.
type Counters struct {
	Participants   uint64
	Referrals      uint64
	PurchasedGross *big.Int
	NativeSpent    *big.Int
	WhaleTax       *big.Int
}

// Normalize replaces nil amounts with zeros.
func (c *Counters) Normalize() *Counters {
	if c.PurchasedGross == nil {
		c.PurchasedGross = big.NewInt(0)
	}
	if c.NativeSpent == nil {
		c.NativeSpent = big.NewInt(0)
	}
	if c.WhaleTax == nil {
		c.WhaleTax = big.NewInt(0)
	}
	return c
}
