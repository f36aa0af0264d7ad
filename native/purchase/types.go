package purchase

import (
	"errors"
	"math/big"
)

// Reason explains why a purchase preview passed or failed. Previews report
// business outcomes as data so callers can surface "why not" without a
// failed operation.
type Reason string

const (
	ReasonOK           Reason = "ok"
	ReasonZeroValue    Reason = "zero_value"
	ReasonNotActive    Reason = "not_active"
	ReasonNotStarted   Reason = "not_started"
	ReasonZeroRate     Reason = "zero_rate"
	ReasonBelowMin     Reason = "below_min"
	ReasonZeroTokens   Reason = "zero_tokens"
	ReasonExceedsLimit Reason = "exceeds_limit"
)

// tokenScale is the canonical fixed-point precision for token amounts.
var tokenScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

const bpsDenom = 10_000

var (
	errNilConfig       = errors.New("purchase: config must not be nil")
	errNegativeRate    = errors.New("purchase: rate must not be negative")
	errNegativeMin     = errors.New("purchase: minimum payment must not be negative")
	errNegativeCap     = errors.New("purchase: cap must not be negative")
	errThresholdBps    = errors.New("purchase: whale threshold exceeds scale")
	errTaxBps          = errors.New("purchase: whale tax exceeds scale")
	errRedeemThreshold = errors.New("purchase: redeem referral threshold too large")
)

// Config parameterises pricing, the whale tax and tax redemption. Replaced
// atomically by governance.
type Config struct {
	Active             bool
	StartTime          uint64
	Rate               *big.Int
	MinPayment         *big.Int
	Cap                *big.Int
	WhaleThresholdBps  uint64
	WhaleTaxBps        uint64
	RedeemEnabled      bool
	RedeemMinReferrals uint64
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if c.Rate != nil {
		out.Rate = new(big.Int).Set(c.Rate)
	}
	if c.MinPayment != nil {
		out.MinPayment = new(big.Int).Set(c.MinPayment)
	}
	if c.Cap != nil {
		out.Cap = new(big.Int).Set(c.Cap)
	}
	return &out
}

// Normalize replaces nil amounts with zeros.
func (c *Config) Normalize() *Config {
	if c == nil {
		return nil
	}
	if c.Rate == nil {
		c.Rate = big.NewInt(0)
	}
	if c.MinPayment == nil {
		c.MinPayment = big.NewInt(0)
	}
	if c.Cap == nil {
		c.Cap = big.NewInt(0)
	}
	return c
}

// Validate rejects structurally invalid configuration atomically.
func (c *Config) Validate() error {
	if c == nil {
		return errNilConfig
	}
	if c.Rate != nil && c.Rate.Sign() < 0 {
		return errNegativeRate
	}
	if c.MinPayment != nil && c.MinPayment.Sign() < 0 {
		return errNegativeMin
	}
	if c.Cap != nil && c.Cap.Sign() < 0 {
		return errNegativeCap
	}
	if c.WhaleThresholdBps > bpsDenom {
		return errThresholdBps
	}
	if c.WhaleTaxBps > bpsDenom {
		return errTaxBps
	}
	if c.RedeemMinReferrals > 1_000_000 {
		return errRedeemThreshold
	}
	return nil
}

// DefaultConfig returns the genesis purchase configuration.
func DefaultConfig() *Config {
	return (&Config{
		Active:             true,
		Rate:               new(big.Int).Set(tokenScale),
		MinPayment:         big.NewInt(0),
		Cap:                new(big.Int).Mul(big.NewInt(20_000), tokenScale),
		WhaleThresholdBps:  7_000,
		WhaleTaxBps:        3_000,
		RedeemEnabled:      true,
		RedeemMinReferrals: 3,
	}).Normalize()
}

// Quote is the result of a purchase preview.
type Quote struct {
	TokenAmount *big.Int
	WhaleTax    *big.Int
	CanPurchase bool
	Reason      Reason
}
