package staking

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/core/events"
	"github.com/frntpump/fnt-contracts/core/types"
	nativecommon "github.com/frntpump/fnt-contracts/native/common"
	"github.com/frntpump/fnt-contracts/native/membership"
)

const moduleName = "staking"

var (
	ErrNilState         = errors.New("staking engine: state not configured")
	ErrNilToken         = errors.New("staking engine: token ledger not configured")
	ErrInvalidAmount    = errors.New("staking engine: amount must be positive")
	ErrUnknownLockTier  = errors.New("staking engine: unknown or disabled lock tier")
	ErrPositionNotFound = errors.New("staking engine: position not found")
	ErrNotOwner         = errors.New("staking engine: caller does not own the position")
	ErrStillLocked      = errors.New("staking engine: position still locked")
	ErrNothingToClaim   = errors.New("staking engine: no unclaimed rewards")
)

type engineState interface {
	StakingPosition(id uint64) (*Position, bool, error)
	PutStakingPosition(p *Position) error
	DeleteStakingPosition(id uint64) error
	OwnerPositions(addr common.Address) ([]uint64, error)
	SetOwnerPositions(addr common.Address, ids []uint64) error
	NextPositionID() (uint64, error)
	StakingConfig() (*Config, error)
	PenaltyPool() (*big.Int, error)
	SetPenaltyPool(pool *big.Int) error
	StakingMetrics() (*Metrics, error)
	PutStakingMetrics(m *Metrics) error
	Participant(addr common.Address) (*membership.Participant, bool, error)
}

// Engine runs the fixed-APR single-token staking module. It shares the
// participant store only to read referral counts for the APR bonus.
type Engine struct {
	state   engineState
	token   types.TokenLedger
	emitter events.Emitter
	guard   *nativecommon.ReentryGuard
	pauses  nativecommon.PauseView
	nowFn   func() int64
}

// NewEngine constructs a staking engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		guard:   nativecommon.NewReentryGuard(),
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState wires the engine to the shared participant store.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetToken wires the external token ledger.
func (e *Engine) SetToken(token types.TokenLedger) { e.token = token }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetGuard shares a re-entry guard across engines.
func (e *Engine) SetGuard(guard *nativecommon.ReentryGuard) {
	if guard != nil {
		e.guard = guard
	}
}

// SetPauses wires the module pause view.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() uint64 {
	ts := e.nowFn()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) emit(evt *events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(evt)
	}
}

// resolveApr computes the final APR for an owner: lock-tier base, plus the
// auto-compound bonus when enabled, plus the referral-tier bonus derived
// from the owner's referral count in the participant store.
func (e *Engine) resolveApr(cfg *Config, lockTier uint8, autoCompound bool, owner common.Address) (uint64, uint8, uint64, error) {
	if int(lockTier) >= len(cfg.Lock) || !cfg.Lock[lockTier].Enabled {
		return 0, 0, 0, ErrUnknownLockTier
	}
	apr := cfg.Lock[lockTier].BaseAprBps
	if autoCompound {
		apr += cfg.AutoCompoundBonusBps
	}
	referralCount := uint64(0)
	if record, ok, err := e.state.Participant(owner); err != nil {
		return 0, 0, 0, err
	} else if ok {
		referralCount = record.ReferralCount
	}
	refTier, bonus := cfg.ReferralBonus(referralCount)
	return apr + bonus, refTier, bonus, nil
}

// accrue computes the reward earned by a position between its last update
// and now under simple interest.
func accrue(rewardBase *big.Int, aprBps, elapsed uint64) *big.Int {
	if rewardBase == nil || rewardBase.Sign() <= 0 || aprBps == 0 || elapsed == 0 {
		return big.NewInt(0)
	}
	accrued := new(big.Int).Mul(rewardBase, new(big.Int).SetUint64(aprBps))
	accrued.Mul(accrued, new(big.Int).SetUint64(elapsed))
	accrued.Quo(accrued, big.NewInt(int64(SecondsPerYear)*bpsDenom))
	return accrued
}

// settle folds accrued rewards into the position. Auto-compounding folds
// into the reward base; otherwise the amount lands in the unclaimed bucket.
// The last-update stamp always advances.
func settle(pos *Position, now uint64) *big.Int {
	if now <= pos.LastUpdate {
		return big.NewInt(0)
	}
	elapsed := now - pos.LastUpdate
	pos.LastUpdate = now
	accrued := accrue(pos.RewardBase, pos.AprBps, elapsed)
	if accrued.Sign() == 0 {
		return accrued
	}
	if pos.AutoCompound {
		pos.RewardBase.Add(pos.RewardBase, accrued)
		pos.Compounded.Add(pos.Compounded, accrued)
	} else {
		pos.Unclaimed.Add(pos.Unclaimed, accrued)
	}
	return accrued
}

// Create opens a staking position: principal moves out of the owner's
// balance into the module and accrual starts immediately.
func (e *Engine) Create(owner common.Address, lockTier uint8, amount *big.Int, autoCompound bool) (*Position, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if e.token == nil {
		return nil, ErrNilToken
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(owner); err != nil {
		return nil, err
	}
	defer e.guard.Exit(owner)

	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	cfg, err := e.state.StakingConfig()
	if err != nil {
		return nil, err
	}
	apr, refTier, refBonus, err := e.resolveApr(cfg, lockTier, autoCompound, owner)
	if err != nil {
		return nil, err
	}
	id, err := e.state.NextPositionID()
	if err != nil {
		return nil, err
	}
	if err := e.token.Burn(owner, amount); err != nil {
		return nil, fmt.Errorf("staking engine: burn: %w", err)
	}
	now := e.now()
	pos := (&Position{
		ID:               id,
		Owner:            owner,
		LockTier:         lockTier,
		ReferralTier:     refTier,
		ReferralBonusBps: refBonus,
		AutoCompound:     autoCompound,
		Principal:        new(big.Int).Set(amount),
		RewardBase:       new(big.Int).Set(amount),
		StartAt:          now,
		LastUpdate:       now,
		UnlockAt:         now + cfg.Lock[lockTier].Duration,
		AprBps:           apr,
	}).Normalize()
	if err := e.state.PutStakingPosition(pos); err != nil {
		return nil, err
	}
	ids, err := e.state.OwnerPositions(owner)
	if err != nil {
		return nil, err
	}
	if err := e.state.SetOwnerPositions(owner, append(ids, id)); err != nil {
		return nil, err
	}
	metrics, err := e.state.StakingMetrics()
	if err != nil {
		return nil, err
	}
	metrics.TotalStaked.Add(metrics.TotalStaked, amount)
	metrics.OpenPositions++
	if err := e.state.PutStakingMetrics(metrics); err != nil {
		return nil, err
	}
	e.emit(events.StakeCreated(id, owner, lockTier, amount, apr))
	return pos.Clone(), nil
}

// loadOwned resolves a position and checks ownership.
func (e *Engine) loadOwned(owner common.Address, id uint64) (*Position, error) {
	pos, ok, err := e.state.StakingPosition(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPositionNotFound
	}
	if pos.Owner != owner {
		return nil, ErrNotOwner
	}
	return pos, nil
}

// Settle accrues rewards on a position up to now and persists it.
func (e *Engine) Settle(id uint64) (*Position, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	pos, ok, err := e.state.StakingPosition(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPositionNotFound
	}
	accrued := settle(pos, e.now())
	if err := e.state.PutStakingPosition(pos); err != nil {
		return nil, err
	}
	if accrued.Sign() > 0 {
		e.emit(events.StakeSettled(id, accrued, pos.AutoCompound))
	}
	return pos.Clone(), nil
}

// Claim settles and then pays out the unclaimed reward bucket.
func (e *Engine) Claim(owner common.Address, id uint64) (*big.Int, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if e.token == nil {
		return nil, ErrNilToken
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(owner); err != nil {
		return nil, err
	}
	defer e.guard.Exit(owner)

	pos, err := e.loadOwned(owner, id)
	if err != nil {
		return nil, err
	}
	settle(pos, e.now())
	if pos.Unclaimed.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	amount := new(big.Int).Set(pos.Unclaimed)
	if err := e.token.Mint(owner, amount); err != nil {
		return nil, fmt.Errorf("staking engine: mint: %w", err)
	}
	pos.Unclaimed.SetInt64(0)
	pos.TotalClaimed.Add(pos.TotalClaimed, amount)
	if err := e.state.PutStakingPosition(pos); err != nil {
		return nil, err
	}
	metrics, err := e.state.StakingMetrics()
	if err != nil {
		return nil, err
	}
	metrics.TotalRewardsPaid.Add(metrics.TotalRewardsPaid, amount)
	if err := e.state.PutStakingMetrics(metrics); err != nil {
		return nil, err
	}
	e.emit(events.StakeClaimed(id, owner, amount))
	return amount, nil
}

// AddToPosition settles and then increases the principal and reward base of
// an open position.
func (e *Engine) AddToPosition(owner common.Address, id uint64, amount *big.Int) (*Position, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if e.token == nil {
		return nil, ErrNilToken
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(owner); err != nil {
		return nil, err
	}
	defer e.guard.Exit(owner)

	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pos, err := e.loadOwned(owner, id)
	if err != nil {
		return nil, err
	}
	settle(pos, e.now())
	if err := e.token.Burn(owner, amount); err != nil {
		return nil, fmt.Errorf("staking engine: burn: %w", err)
	}
	pos.Principal.Add(pos.Principal, amount)
	pos.RewardBase.Add(pos.RewardBase, amount)
	if err := e.state.PutStakingPosition(pos); err != nil {
		return nil, err
	}
	metrics, err := e.state.StakingMetrics()
	if err != nil {
		return nil, err
	}
	metrics.TotalStaked.Add(metrics.TotalStaked, amount)
	if err := e.state.PutStakingMetrics(metrics); err != nil {
		return nil, err
	}
	e.emit(events.StakeIncreased(id, amount, pos.Principal))
	return pos.Clone(), nil
}

// SetAutoCompound settles, toggles the preference and re-resolves the APR
// against the current configuration and referral tier.
func (e *Engine) SetAutoCompound(owner common.Address, id uint64, enabled bool) (*Position, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(owner); err != nil {
		return nil, err
	}
	defer e.guard.Exit(owner)

	pos, err := e.loadOwned(owner, id)
	if err != nil {
		return nil, err
	}
	settle(pos, e.now())
	cfg, err := e.state.StakingConfig()
	if err != nil {
		return nil, err
	}
	apr, refTier, refBonus, err := e.resolveApr(cfg, pos.LockTier, enabled, owner)
	if err != nil {
		return nil, err
	}
	pos.AutoCompound = enabled
	pos.AprBps = apr
	pos.ReferralTier = refTier
	pos.ReferralBonusBps = refBonus
	// The base keeps compounded rewards working for both modes: principal
	// plus everything folded in so far.
	pos.RewardBase = new(big.Int).Add(pos.Principal, pos.Compounded)
	if err := e.state.PutStakingPosition(pos); err != nil {
		return nil, err
	}
	return pos.Clone(), nil
}

// Exit settles and withdraws a position. A normal exit requires the unlock
// time to have passed; a forced exit is allowed any time but pays principal
// and reward penalties into the protocol penalty pool. The position record
// is removed with swap-and-pop on the owner's index.
func (e *Engine) Exit(owner common.Address, id uint64, force bool) (*big.Int, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if e.token == nil {
		return nil, ErrNilToken
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(owner); err != nil {
		return nil, err
	}
	defer e.guard.Exit(owner)

	pos, err := e.loadOwned(owner, id)
	if err != nil {
		return nil, err
	}
	now := e.now()
	early := now < pos.UnlockAt
	if early && !force {
		return nil, ErrStillLocked
	}
	settle(pos, now)

	cfg, err := e.state.StakingConfig()
	if err != nil {
		return nil, err
	}
	rewards := new(big.Int).Add(pos.Compounded, pos.Unclaimed)
	payout := new(big.Int).Add(pos.Principal, rewards)
	penalty := big.NewInt(0)
	paidRewards := rewards
	if early {
		principalCut := new(big.Int).Mul(pos.Principal, new(big.Int).SetUint64(cfg.EarlyExitPrincipalBps))
		principalCut.Quo(principalCut, big.NewInt(bpsDenom))
		rewardCut := new(big.Int).Mul(rewards, new(big.Int).SetUint64(cfg.EarlyExitRewardBps))
		rewardCut.Quo(rewardCut, big.NewInt(bpsDenom))
		penalty.Add(principalCut, rewardCut)
		payout.Sub(payout, penalty)
		paidRewards = new(big.Int).Sub(rewards, rewardCut)
	}

	if err := e.token.Mint(owner, payout); err != nil {
		return nil, fmt.Errorf("staking engine: mint: %w", err)
	}
	if penalty.Sign() > 0 {
		pool, err := e.state.PenaltyPool()
		if err != nil {
			return nil, err
		}
		if err := e.state.SetPenaltyPool(new(big.Int).Add(pool, penalty)); err != nil {
			return nil, err
		}
	}
	if err := e.removePosition(owner, id); err != nil {
		return nil, err
	}
	metrics, err := e.state.StakingMetrics()
	if err != nil {
		return nil, err
	}
	metrics.TotalStaked.Sub(metrics.TotalStaked, pos.Principal)
	if metrics.TotalStaked.Sign() < 0 {
		metrics.TotalStaked.SetInt64(0)
	}
	if paidRewards.Sign() > 0 {
		metrics.TotalRewardsPaid.Add(metrics.TotalRewardsPaid, paidRewards)
	}
	if metrics.OpenPositions > 0 {
		metrics.OpenPositions--
	}
	if err := e.state.PutStakingMetrics(metrics); err != nil {
		return nil, err
	}
	e.emit(events.StakeExited(id, owner, payout, penalty, early))
	return payout, nil
}

// removePosition drops the record and swap-and-pops the owner index so
// per-owner enumeration stays dense.
func (e *Engine) removePosition(owner common.Address, id uint64) error {
	ids, err := e.state.OwnerPositions(owner)
	if err != nil {
		return err
	}
	for i, current := range ids {
		if current == id {
			ids[i] = ids[len(ids)-1]
			ids = ids[:len(ids)-1]
			break
		}
	}
	if err := e.state.SetOwnerPositions(owner, ids); err != nil {
		return err
	}
	return e.state.DeleteStakingPosition(id)
}

// Position returns a copy of one position.
func (e *Engine) Position(id uint64) (*Position, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	pos, ok, err := e.state.StakingPosition(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPositionNotFound
	}
	return pos.Clone(), nil
}

// Positions enumerates every open position for an owner.
func (e *Engine) Positions(owner common.Address) ([]*Position, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	ids, err := e.state.OwnerPositions(owner)
	if err != nil {
		return nil, err
	}
	out := make([]*Position, 0, len(ids))
	for _, id := range ids {
		pos, ok, err := e.state.StakingPosition(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, pos.Clone())
	}
	return out, nil
}

// Metrics returns the module-wide staking totals and the penalty pool.
func (e *Engine) Metrics() (*Metrics, *big.Int, error) {
	if e.state == nil {
		return nil, nil, ErrNilState
	}
	metrics, err := e.state.StakingMetrics()
	if err != nil {
		return nil, nil, err
	}
	pool, err := e.state.PenaltyPool()
	if err != nil {
		return nil, nil, err
	}
	return metrics, pool, nil
}
