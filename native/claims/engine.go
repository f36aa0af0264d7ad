package claims

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

const moduleName = "claims"

var (
	ErrNilState        = errors.New("claims engine: state not configured")
	ErrNilToken        = errors.New("claims engine: token ledger not configured")
	ErrNilTransferrer  = errors.New("claims engine: native transferrer not configured")
	ErrNotRegistered   = errors.New("claims engine: wallet not registered")
	ErrClaimInactive   = errors.New("claims engine: claim type inactive")
	ErrBelowThreshold  = errors.New("claims engine: first claim below eligibility threshold")
	ErrNothingToClaim  = errors.New("claims engine: nothing to claim")
	ErrExceedsAccrued  = errors.New("claims engine: amount exceeds accrued balance")
	ErrZeroCredit      = errors.New("claims engine: credit amount must be positive")
	ErrAllowanceSpent  = errors.New("claims engine: granter allowance exhausted")
	ErrZeroAddress     = errors.New("claims engine: zero address")
)

type engineState interface {
	Participant(addr common.Address) (*membership.Participant, bool, error)
	PutParticipant(p *membership.Participant) error
	ClaimConfig() (*Config, error)
	CreditAllowance(granter common.Address) (*big.Int, error)
	SetCreditAllowance(granter common.Address, remaining *big.Int) error
}

// activityRefresher is the slice of the registry engine the claim flow needs
// after balances move.
type activityRefresher interface {
	RecomputeActivity(addr common.Address) (bool, error)
}

// Engine settles the three gated bonus balances and the admin token credits.
type Engine struct {
	state    engineState
	token    types.TokenLedger
	native   types.NativeTransferrer
	registry activityRefresher
	emitter  events.Emitter
	guard    *nativecommon.ReentryGuard
	pauses   nativecommon.PauseView
	nowFn    func() int64
}

// NewEngine constructs a claims engine with default dependencies.
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

// SetNativeTransferrer wires the native-currency payout collaborator.
func (e *Engine) SetNativeTransferrer(t types.NativeTransferrer) { e.native = t }

// SetRegistry wires the registry used to recompute activity after payouts.
func (e *Engine) SetRegistry(r activityRefresher) { e.registry = r }

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

// checkTokenBonus applies the one-way eligibility latch for the deferred
// token bonus: the first successful claim must meet the sponsorship-class
// threshold unless the free-claim override waives it; afterwards any amount
// passes.
func checkTokenBonus(cfg *Config, record *membership.Participant) error {
	if !cfg.TokenBonusActive {
		return ErrClaimInactive
	}
	if record.TokenBonusEligible || cfg.FreeClaim {
		return nil
	}
	threshold := cfg.TokenThreshold
	if record.Sponsored {
		threshold = cfg.TokenThresholdSponsored
	}
	if threshold != nil && record.TokenBonus.Accrued.Cmp(threshold) < 0 {
		return ErrBelowThreshold
	}
	return nil
}

func checkNativeBonus(cfg *Config, record *membership.Participant) error {
	if !cfg.NativeBonusActive {
		return ErrClaimInactive
	}
	if record.NativeBonusEligible {
		return nil
	}
	threshold := cfg.NativeThreshold
	if record.Sponsored {
		threshold = cfg.NativeThresholdSponsored
	}
	if threshold != nil && record.NativeBonus.Accrued.Cmp(threshold) < 0 {
		return ErrBelowThreshold
	}
	return nil
}

// ClaimTokenBonus settles the full deferred token bonus.
func (e *Engine) ClaimTokenBonus(caller common.Address) (*big.Int, error) {
	record, err := e.begin(caller)
	if err != nil {
		return nil, err
	}
	defer e.guard.Exit(caller)

	cfg, err := e.state.ClaimConfig()
	if err != nil {
		return nil, err
	}
	if record.TokenBonus.Accrued.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	if err := checkTokenBonus(cfg, record); err != nil {
		return nil, err
	}
	amount := new(big.Int).Set(record.TokenBonus.Accrued)
	if err := e.token.Mint(record.Primary, amount); err != nil {
		return nil, fmt.Errorf("claims engine: mint: %w", err)
	}
	record.TokenBonus.RecordClaim(amount, e.now())
	record.TokenBonusEligible = true
	if err := e.state.PutParticipant(record); err != nil {
		return nil, err
	}
	if err := e.refreshActivity(record.Primary); err != nil {
		return nil, err
	}
	e.emit(events.BonusClaimed(record.Primary, string(KindTokenBonus), amount))
	return amount, nil
}

// ClaimNativeBonus settles the full accrued native bonus.
func (e *Engine) ClaimNativeBonus(caller common.Address) (*big.Int, error) {
	record, err := e.begin(caller)
	if err != nil {
		return nil, err
	}
	defer e.guard.Exit(caller)

	if e.native == nil {
		return nil, ErrNilTransferrer
	}
	cfg, err := e.state.ClaimConfig()
	if err != nil {
		return nil, err
	}
	if record.NativeBonus.Accrued.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	if err := checkNativeBonus(cfg, record); err != nil {
		return nil, err
	}
	amount := new(big.Int).Set(record.NativeBonus.Accrued)
	if err := e.native.TransferNative(record.Primary, amount); err != nil {
		return nil, fmt.Errorf("claims engine: native transfer: %w", err)
	}
	record.NativeBonus.RecordClaim(amount, e.now())
	record.NativeBonusEligible = true
	if err := e.state.PutParticipant(record); err != nil {
		return nil, err
	}
	e.emit(events.BonusClaimed(record.Primary, string(KindNativeBonus), amount))
	return amount, nil
}

// ClaimCredited settles manually credited tokens; amount zero claims the
// full accrued balance. Credited claims carry no eligibility threshold.
func (e *Engine) ClaimCredited(caller common.Address, amount *big.Int) (*big.Int, error) {
	record, err := e.begin(caller)
	if err != nil {
		return nil, err
	}
	defer e.guard.Exit(caller)

	cfg, err := e.state.ClaimConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.CreditedActive {
		return nil, ErrClaimInactive
	}
	if record.CreditedTokens.Accrued.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	payout := new(big.Int).Set(record.CreditedTokens.Accrued)
	if amount != nil && amount.Sign() > 0 {
		if amount.Cmp(record.CreditedTokens.Accrued) > 0 {
			return nil, ErrExceedsAccrued
		}
		payout = new(big.Int).Set(amount)
	}
	if err := e.token.Mint(record.Primary, payout); err != nil {
		return nil, fmt.Errorf("claims engine: mint: %w", err)
	}
	record.CreditedTokens.RecordClaim(payout, e.now())
	if err := e.state.PutParticipant(record); err != nil {
		return nil, err
	}
	if err := e.refreshActivity(record.Primary); err != nil {
		return nil, err
	}
	e.emit(events.BonusClaimed(record.Primary, string(KindCredited), payout))
	return payout, nil
}

// ClaimAll settles every eligible balance in one unit: the token-denominated
// payouts fold into a single mint and a single activity recomputation. A
// non-zero balance that violates its own gate fails the combined operation;
// zero balances are simply skipped.
func (e *Engine) ClaimAll(caller common.Address) (*Summary, error) {
	record, err := e.begin(caller)
	if err != nil {
		return nil, err
	}
	defer e.guard.Exit(caller)

	cfg, err := e.state.ClaimConfig()
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		TokenBonus:  big.NewInt(0),
		NativeBonus: big.NewInt(0),
		Credited:    big.NewInt(0),
		Minted:      big.NewInt(0),
	}
	now := e.now()

	if record.TokenBonus.Accrued.Sign() > 0 {
		if err := checkTokenBonus(cfg, record); err != nil {
			return nil, err
		}
		summary.TokenBonus.Set(record.TokenBonus.Accrued)
	}
	if record.NativeBonus.Accrued.Sign() > 0 {
		if err := checkNativeBonus(cfg, record); err != nil {
			return nil, err
		}
		summary.NativeBonus.Set(record.NativeBonus.Accrued)
	}
	if record.CreditedTokens.Accrued.Sign() > 0 {
		if !cfg.CreditedActive {
			return nil, ErrClaimInactive
		}
		summary.Credited.Set(record.CreditedTokens.Accrued)
	}

	summary.Minted.Add(summary.TokenBonus, summary.Credited)
	if summary.Minted.Sign() == 0 && summary.NativeBonus.Sign() == 0 {
		return nil, ErrNothingToClaim
	}

	if summary.NativeBonus.Sign() > 0 {
		if e.native == nil {
			return nil, ErrNilTransferrer
		}
		if err := e.native.TransferNative(record.Primary, summary.NativeBonus); err != nil {
			return nil, fmt.Errorf("claims engine: native transfer: %w", err)
		}
		record.NativeBonus.RecordClaim(summary.NativeBonus, now)
		record.NativeBonusEligible = true
	}
	if summary.Minted.Sign() > 0 {
		if err := e.token.Mint(record.Primary, summary.Minted); err != nil {
			return nil, fmt.Errorf("claims engine: mint: %w", err)
		}
		if summary.TokenBonus.Sign() > 0 {
			record.TokenBonus.RecordClaim(summary.TokenBonus, now)
			record.TokenBonusEligible = true
		}
		if summary.Credited.Sign() > 0 {
			record.CreditedTokens.RecordClaim(summary.Credited, now)
		}
	}
	if err := e.state.PutParticipant(record); err != nil {
		return nil, err
	}
	if summary.Minted.Sign() > 0 {
		if err := e.refreshActivity(record.Primary); err != nil {
			return nil, err
		}
	}
	if summary.TokenBonus.Sign() > 0 {
		e.emit(events.BonusClaimed(record.Primary, string(KindTokenBonus), summary.TokenBonus))
	}
	if summary.NativeBonus.Sign() > 0 {
		e.emit(events.BonusClaimed(record.Primary, string(KindNativeBonus), summary.NativeBonus))
	}
	if summary.Credited.Sign() > 0 {
		e.emit(events.BonusClaimed(record.Primary, string(KindCredited), summary.Credited))
	}
	return summary, nil
}

// CreditTokens accrues a manual token credit against a participant, spending
// the granter's remaining allowance.
func (e *Engine) CreditTokens(granter, wallet common.Address, amount *big.Int, memo string) error {
	if e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if granter == (common.Address{}) || wallet == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroCredit
	}
	remaining, err := e.state.CreditAllowance(granter)
	if err != nil {
		return err
	}
	if remaining.Cmp(amount) < 0 {
		return ErrAllowanceSpent
	}
	record, ok, err := e.state.Participant(wallet)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotRegistered
	}
	record.CreditedTokens.Normalize()
	record.CreditedTokens.Accrued.Add(record.CreditedTokens.Accrued, amount)
	if err := e.state.PutParticipant(record); err != nil {
		return err
	}
	if err := e.state.SetCreditAllowance(granter, new(big.Int).Sub(remaining, amount)); err != nil {
		return err
	}
	e.emit(events.TokensCredited(granter, record.Primary, amount, memo))
	return nil
}

// begin runs the shared mutating-claim preamble: pause guard, re-entry
// guard and participant resolution. On success the caller owns the guard
// slot for the address.
func (e *Engine) begin(caller common.Address) (*membership.Participant, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if e.token == nil {
		return nil, ErrNilToken
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(caller); err != nil {
		return nil, err
	}
	record, ok, err := e.state.Participant(caller)
	if err != nil {
		e.guard.Exit(caller)
		return nil, err
	}
	if !ok {
		e.guard.Exit(caller)
		return nil, ErrNotRegistered
	}
	return record, nil
}

func (e *Engine) refreshActivity(addr common.Address) error {
	if e.registry == nil {
		return nil
	}
	_, err := e.registry.RecomputeActivity(addr)
	return err
}
