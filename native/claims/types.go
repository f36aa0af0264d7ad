package claims

import (
	"errors"
	"math/big"
)

// Kind names one of the three independently gated bonus balances.
type Kind string

const (
	KindTokenBonus  Kind = "token_bonus"
	KindNativeBonus Kind = "native_bonus"
	KindCredited    Kind = "credited_tokens"
)

var errNilConfig = errors.New("claims: config must not be nil")

// Config gates the three claimable balances. Replaced atomically by
// governance.
type Config struct {
	TokenBonusActive  bool
	NativeBonusActive bool
	CreditedActive    bool

	// First-claim eligibility thresholds, split by sponsorship class.
	TokenThreshold           *big.Int
	TokenThresholdSponsored  *big.Int
	NativeThreshold          *big.Int
	NativeThresholdSponsored *big.Int

	// FreeClaim waives the token-bonus threshold check entirely.
	FreeClaim bool
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if c.TokenThreshold != nil {
		out.TokenThreshold = new(big.Int).Set(c.TokenThreshold)
	}
	if c.TokenThresholdSponsored != nil {
		out.TokenThresholdSponsored = new(big.Int).Set(c.TokenThresholdSponsored)
	}
	if c.NativeThreshold != nil {
		out.NativeThreshold = new(big.Int).Set(c.NativeThreshold)
	}
	if c.NativeThresholdSponsored != nil {
		out.NativeThresholdSponsored = new(big.Int).Set(c.NativeThresholdSponsored)
	}
	return &out
}

// Normalize replaces nil thresholds with zeros.
func (c *Config) Normalize() *Config {
	if c == nil {
		return nil
	}
	if c.TokenThreshold == nil {
		c.TokenThreshold = big.NewInt(0)
	}
	if c.TokenThresholdSponsored == nil {
		c.TokenThresholdSponsored = big.NewInt(0)
	}
	if c.NativeThreshold == nil {
		c.NativeThreshold = big.NewInt(0)
	}
	if c.NativeThresholdSponsored == nil {
		c.NativeThresholdSponsored = big.NewInt(0)
	}
	return c
}

// Validate rejects structurally invalid configuration atomically.
func (c *Config) Validate() error {
	if c == nil {
		return errNilConfig
	}
	for _, threshold := range []*big.Int{
		c.TokenThreshold, c.TokenThresholdSponsored,
		c.NativeThreshold, c.NativeThresholdSponsored,
	} {
		if threshold != nil && threshold.Sign() < 0 {
			return errors.New("claims: thresholds must not be negative")
		}
	}
	return nil
}

// DefaultConfig returns the genesis claim configuration.
func DefaultConfig() *Config {
	token := func(units int64) *big.Int {
		return new(big.Int).Mul(big.NewInt(units), big.NewInt(1e18))
	}
	return (&Config{
		TokenBonusActive:         true,
		NativeBonusActive:        true,
		CreditedActive:           true,
		TokenThreshold:           token(50),
		TokenThresholdSponsored:  token(25),
		NativeThreshold:          token(1),
		NativeThresholdSponsored: token(1),
	}).Normalize()
}

// Summary reports the amounts settled by a combined claim.
type Summary struct {
	TokenBonus  *big.Int
	NativeBonus *big.Int
	Credited    *big.Int
	Minted      *big.Int
}
