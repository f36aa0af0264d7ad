package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/native/staking"
)

// StakingPosition loads a staking position by id.
func (s *Store) StakingPosition(id uint64) (*staking.Position, bool, error) {
	pos := new(staking.Position)
	ok, err := s.getRLP(stakePositionKey(id), pos)
	if err != nil || !ok {
		return nil, false, err
	}
	return pos.Normalize(), true, nil
}

// PutStakingPosition persists a staking position keyed by its id.
func (s *Store) PutStakingPosition(pos *staking.Position) error {
	if pos == nil || pos.ID == 0 {
		return errInvalidPosition
	}
	return s.putRLP(stakePositionKey(pos.ID), pos.Normalize())
}

// DeleteStakingPosition removes a withdrawn position record.
func (s *Store) DeleteStakingPosition(id uint64) error {
	return s.db.Delete(stakePositionKey(id))
}

// OwnerPositions returns the dense id index for an owner.
func (s *Store) OwnerPositions(addr common.Address) ([]uint64, error) {
	var ids []uint64
	if _, err := s.getRLP(stakeOwnerKey(addr), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetOwnerPositions replaces the dense id index for an owner.
func (s *Store) SetOwnerPositions(addr common.Address, ids []uint64) error {
	return s.putRLP(stakeOwnerKey(addr), ids)
}

// NextPositionID reserves and returns the next position id, starting at 1.
func (s *Store) NextPositionID() (uint64, error) {
	var sequence uint64
	if _, err := s.getRLP(stakeSequenceKey, &sequence); err != nil {
		return 0, err
	}
	sequence++
	if err := s.putRLP(stakeSequenceKey, sequence); err != nil {
		return 0, err
	}
	return sequence, nil
}

// PenaltyPool returns the protocol-retained early-exit penalty balance.
func (s *Store) PenaltyPool() (*big.Int, error) {
	return s.getBig(stakePenaltyKeyBytes)
}

// SetPenaltyPool replaces the penalty pool balance.
func (s *Store) SetPenaltyPool(pool *big.Int) error {
	return s.putBig(stakePenaltyKeyBytes, pool)
}

// StakingMetrics loads the module-wide staking totals, zeroed when unset.
func (s *Store) StakingMetrics() (*staking.Metrics, error) {
	metrics := new(staking.Metrics)
	if _, err := s.getRLP(stakeMetricsKeyBytes, metrics); err != nil {
		return nil, err
	}
	return metrics.Normalize(), nil
}

// PutStakingMetrics persists the module-wide staking totals.
func (s *Store) PutStakingMetrics(m *staking.Metrics) error {
	if m == nil {
		m = new(staking.Metrics)
	}
	return s.putRLP(stakeMetricsKeyBytes, m.Normalize())
}
