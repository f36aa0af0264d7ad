package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/frntpump/fnt-contracts/native/claims"
	"github.com/frntpump/fnt-contracts/native/purchase"
	"github.com/frntpump/fnt-contracts/native/rewards"
	"github.com/frntpump/fnt-contracts/native/staking"
)

var (
	sponsoredListKey      = ethcrypto.Keccak256([]byte("member/sponsored"))
	creditAllowancePrefix = []byte("claims/allowance/")
)

func creditAllowanceKey(granter common.Address) []byte {
	return hashKey(creditAllowancePrefix, granter.Bytes())
}

// RewardConfig loads the referral reward configuration, falling back to the
// genesis defaults when none was persisted.
func (s *Store) RewardConfig() (*rewards.Config, error) {
	cfg := new(rewards.Config)
	ok, err := s.getRLP(rewardConfigKeyBytes, cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return rewards.DefaultConfig(), nil
	}
	return cfg, nil
}

// SetRewardConfig replaces the referral reward configuration wholesale.
// Callers validate before persisting.
func (s *Store) SetRewardConfig(cfg *rewards.Config) error {
	return s.putRLP(rewardConfigKeyBytes, cfg)
}

// PurchaseConfig loads the purchase configuration.
func (s *Store) PurchaseConfig() (*purchase.Config, error) {
	cfg := new(purchase.Config)
	ok, err := s.getRLP(purchaseConfigKeyBytes, cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return purchase.DefaultConfig(), nil
	}
	return cfg.Normalize(), nil
}

// SetPurchaseConfig replaces the purchase configuration wholesale.
func (s *Store) SetPurchaseConfig(cfg *purchase.Config) error {
	return s.putRLP(purchaseConfigKeyBytes, cfg.Normalize())
}

// ClaimConfig loads the claim configuration.
func (s *Store) ClaimConfig() (*claims.Config, error) {
	cfg := new(claims.Config)
	ok, err := s.getRLP(claimConfigKeyBytes, cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return claims.DefaultConfig(), nil
	}
	return cfg.Normalize(), nil
}

// SetClaimConfig replaces the claim configuration wholesale.
func (s *Store) SetClaimConfig(cfg *claims.Config) error {
	return s.putRLP(claimConfigKeyBytes, cfg.Normalize())
}

// StakingConfig loads the staking configuration.
func (s *Store) StakingConfig() (*staking.Config, error) {
	cfg := new(staking.Config)
	ok, err := s.getRLP(stakingConfigKeyBytes, cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return staking.DefaultConfig(), nil
	}
	return cfg, nil
}

// SetStakingConfig replaces the staking configuration wholesale.
func (s *Store) SetStakingConfig(cfg *staking.Config) error {
	return s.putRLP(stakingConfigKeyBytes, cfg)
}

// AppendSponsored records a participant in the sponsored registration list.
func (s *Store) AppendSponsored(seq uint64) error {
	list, err := s.SponsoredList()
	if err != nil {
		return err
	}
	return s.putRLP(sponsoredListKey, append(list, seq))
}

// SponsoredList returns the sequence ids of sponsored participants.
func (s *Store) SponsoredList() ([]uint64, error) {
	var list []uint64
	if _, err := s.getRLP(sponsoredListKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreditAllowance returns the remaining admin credit allowance for a
// granting account, zero when none was assigned.
func (s *Store) CreditAllowance(granter common.Address) (*big.Int, error) {
	return s.getBig(creditAllowanceKey(granter))
}

// SetCreditAllowance replaces a granter's remaining credit allowance.
func (s *Store) SetCreditAllowance(granter common.Address, remaining *big.Int) error {
	return s.putBig(creditAllowanceKey(granter), remaining)
}
