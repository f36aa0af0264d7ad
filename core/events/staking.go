package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// TypeStakeCreated is emitted when a staking position opens.
	TypeStakeCreated = "stake.created"
	// TypeStakeSettled captures a reward accrual settlement.
	TypeStakeSettled = "stake.settled"
	// TypeStakeClaimed is emitted when unclaimed rewards are paid out.
	TypeStakeClaimed = "stake.rewardsClaimed"
	// TypeStakeIncreased captures principal added to an open position.
	TypeStakeIncreased = "stake.increased"
	// TypeStakeExited is emitted when a position is withdrawn.
	TypeStakeExited = "stake.exited"
)

// StakeCreated announces a new staking position.
func StakeCreated(id uint64, owner common.Address, lockTier uint8, principal *big.Int, aprBps uint64) *Event {
	return &Event{Type: TypeStakeCreated, Attributes: map[string]string{
		"id":        strconv.FormatUint(id, 10),
		"owner":     formatAddr(owner),
		"lockTier":  strconv.FormatUint(uint64(lockTier), 10),
		"principal": formatAmount(principal),
		"aprBps":    strconv.FormatUint(aprBps, 10),
	}}
}

// StakeSettled announces a settlement accrual on a position.
func StakeSettled(id uint64, accrued *big.Int, compounded bool) *Event {
	return &Event{Type: TypeStakeSettled, Attributes: map[string]string{
		"id":         strconv.FormatUint(id, 10),
		"accrued":    formatAmount(accrued),
		"compounded": strconv.FormatBool(compounded),
	}}
}

// StakeClaimed announces a reward payout on a position.
func StakeClaimed(id uint64, owner common.Address, amount *big.Int) *Event {
	return &Event{Type: TypeStakeClaimed, Attributes: map[string]string{
		"id":     strconv.FormatUint(id, 10),
		"owner":  formatAddr(owner),
		"amount": formatAmount(amount),
	}}
}

// StakeIncreased announces principal added to an open position.
func StakeIncreased(id uint64, amount, principal *big.Int) *Event {
	return &Event{Type: TypeStakeIncreased, Attributes: map[string]string{
		"id":        strconv.FormatUint(id, 10),
		"amount":    formatAmount(amount),
		"principal": formatAmount(principal),
	}}
}

// StakeExited announces a position withdrawal, forced or not.
func StakeExited(id uint64, owner common.Address, payout, penalty *big.Int, forced bool) *Event {
	return &Event{Type: TypeStakeExited, Attributes: map[string]string{
		"id":      strconv.FormatUint(id, 10),
		"owner":   formatAddr(owner),
		"payout":  formatAmount(payout),
		"penalty": formatAmount(penalty),
		"forced":  strconv.FormatBool(forced),
	}}
}
