package purchase

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

const moduleName = "purchase"

var (
	ErrNilState        = errors.New("purchase engine: state not configured")
	ErrNilToken        = errors.New("purchase engine: token ledger not configured")
	ErrNilRegistry     = errors.New("purchase engine: registry not configured")
	ErrCannotPurchase  = errors.New("purchase engine: purchase rejected")
	ErrRedeemDisabled  = errors.New("purchase engine: tax redemption disabled")
	ErrRedeemReferrals = errors.New("purchase engine: referral count below redemption threshold")
	ErrAlreadyRedeemed = errors.New("purchase engine: tax already redeemed")
	ErrNothingToRedeem = errors.New("purchase engine: no tax balance to redeem")
	ErrNotRegistered   = errors.New("purchase engine: wallet not registered")
)

type engineState interface {
	Participant(addr common.Address) (*membership.Participant, bool, error)
	PutParticipant(p *membership.Participant) error
	WalletOwner(addr common.Address) (uint64, error)
	Counters() (*membership.Counters, error)
	PutCounters(c *membership.Counters) error
	PurchaseConfig() (*Config, error)
}

// registrar is the slice of the registry engine the purchase flow needs for
// auto-registration and post-mint activity recomputation.
type registrar interface {
	Register(addr, referrer common.Address, referralIndex uint64, sponsored bool) (*membership.Participant, error)
	RecomputeActivity(addr common.Address) (bool, error)
}

// Engine converts payments into token purchases, applies the progressive
// whale tax and settles the one-shot tax redemption.
type Engine struct {
	state    engineState
	token    types.TokenLedger
	registry registrar
	emitter  events.Emitter
	guard    *nativecommon.ReentryGuard
	pauses   nativecommon.PauseView
	nowFn    func() int64
}

// NewEngine constructs a purchase engine with default dependencies.
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

// SetRegistry wires the participant registry used for auto-registration.
func (e *Engine) SetRegistry(r registrar) { e.registry = r }

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

func deny(reason Reason) *Quote {
	return &Quote{TokenAmount: big.NewInt(0), WhaleTax: big.NewInt(0), Reason: reason}
}

// quoteFor runs the total-order check sequence against a payment and the
// buyer's cumulative purchase history. Each check short-circuits with its
// own reason code.
func quoteFor(cfg *Config, payment, alreadyPurchased *big.Int, now uint64) *Quote {
	if payment == nil || payment.Sign() <= 0 {
		return deny(ReasonZeroValue)
	}
	if !cfg.Active {
		return deny(ReasonNotActive)
	}
	if now < cfg.StartTime {
		return deny(ReasonNotStarted)
	}
	if cfg.Rate == nil || cfg.Rate.Sign() == 0 {
		return deny(ReasonZeroRate)
	}
	if cfg.MinPayment != nil && payment.Cmp(cfg.MinPayment) < 0 {
		return deny(ReasonBelowMin)
	}

	gross := new(big.Int).Mul(payment, tokenScale)
	gross.Quo(gross, cfg.Rate)
	if gross.Sign() == 0 {
		return deny(ReasonZeroTokens)
	}

	cap := cfg.Cap
	if cap == nil {
		cap = big.NewInt(0)
	}
	total := new(big.Int).Add(gross, alreadyPurchased)
	if cap.Sign() > 0 && total.Cmp(cap) > 0 {
		return deny(ReasonExceedsLimit)
	}

	tax := big.NewInt(0)
	if cfg.WhaleThresholdBps > 0 && cap.Sign() > 0 {
		// The threshold is a basis-point fraction of the cap, not of
		// this purchase.
		threshold := new(big.Int).Mul(cap, new(big.Int).SetUint64(cfg.WhaleThresholdBps))
		threshold.Quo(threshold, big.NewInt(bpsDenom))
		if gross.Cmp(threshold) >= 0 {
			tax = new(big.Int).Mul(gross, new(big.Int).SetUint64(cfg.WhaleTaxBps))
			tax.Quo(tax, big.NewInt(bpsDenom))
		}
	}
	return &Quote{TokenAmount: gross, WhaleTax: tax, CanPurchase: true, Reason: ReasonOK}
}

// Preview quotes a purchase without mutating state.
func (e *Engine) Preview(buyer common.Address, payment *big.Int) (*Quote, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	cfg, err := e.state.PurchaseConfig()
	if err != nil {
		return nil, err
	}
	already := big.NewInt(0)
	if record, ok, err := e.state.Participant(buyer); err != nil {
		return nil, err
	} else if ok {
		already = record.PurchasedTokens
	}
	return quoteFor(cfg, payment, already, e.now()), nil
}

// Execute settles a purchase: re-derives the preview, auto-registers an
// unseen buyer once the quote is accepted, mints the net amount, records the
// purchase stats and recomputes activity (the mint may cross the existential
// threshold). A rejected quote leaves no trace in state.
func (e *Engine) Execute(buyer common.Address, payment *big.Int) (*Quote, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if e.token == nil {
		return nil, ErrNilToken
	}
	if e.registry == nil {
		return nil, ErrNilRegistry
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(buyer); err != nil {
		return nil, err
	}
	defer e.guard.Exit(buyer)

	record, ok, err := e.state.Participant(buyer)
	if err != nil {
		return nil, err
	}
	already := big.NewInt(0)
	if ok {
		already = record.PurchasedTokens
	}

	cfg, err := e.state.PurchaseConfig()
	if err != nil {
		return nil, err
	}
	quote := quoteFor(cfg, payment, already, e.now())
	if !quote.CanPurchase {
		return quote, fmt.Errorf("%w: %s", ErrCannotPurchase, quote.Reason)
	}

	if !ok {
		if record, err = e.registry.Register(buyer, common.Address{}, 0, false); err != nil {
			return nil, err
		}
	}

	net := new(big.Int).Sub(quote.TokenAmount, quote.WhaleTax)
	if err := e.token.Mint(record.Primary, net); err != nil {
		return nil, fmt.Errorf("purchase engine: mint: %w", err)
	}

	record.PurchasedTokens.Add(record.PurchasedTokens, quote.TokenAmount)
	record.NativeSpent.Add(record.NativeSpent, payment)
	record.PurchaseCount++
	record.PurchaseTax.Add(record.PurchaseTax, quote.WhaleTax)
	if err := e.state.PutParticipant(record); err != nil {
		return nil, err
	}

	counters, err := e.state.Counters()
	if err != nil {
		return nil, err
	}
	counters.PurchasedGross.Add(counters.PurchasedGross, quote.TokenAmount)
	counters.NativeSpent.Add(counters.NativeSpent, payment)
	counters.WhaleTax.Add(counters.WhaleTax, quote.WhaleTax)
	if err := e.state.PutCounters(counters); err != nil {
		return nil, err
	}

	if _, err := e.registry.RecomputeActivity(record.Primary); err != nil {
		return nil, err
	}
	e.emit(events.PurchaseExecuted(record.Primary, payment, quote.TokenAmount, quote.WhaleTax))
	return quote, nil
}

// RedeemTax settles the one-shot whale-tax redemption. The referral-count
// gate is checked before the balance so a caller failing both gets a
// deterministic error.
func (e *Engine) RedeemTax(caller common.Address) (*big.Int, error) {
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
	defer e.guard.Exit(caller)

	cfg, err := e.state.PurchaseConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.RedeemEnabled {
		return nil, ErrRedeemDisabled
	}
	record, ok, err := e.state.Participant(caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotRegistered
	}
	if record.Primary != caller {
		return nil, errors.New("purchase engine: only the primary wallet may redeem")
	}
	if record.ReferralCount < cfg.RedeemMinReferrals {
		return nil, ErrRedeemReferrals
	}
	if record.TaxRedeemed {
		return nil, ErrAlreadyRedeemed
	}
	if record.PurchaseTax.Sign() == 0 {
		return nil, ErrNothingToRedeem
	}

	amount := new(big.Int).Set(record.PurchaseTax)
	if err := e.token.Mint(record.Primary, amount); err != nil {
		return nil, fmt.Errorf("purchase engine: mint: %w", err)
	}
	record.TaxRedeemed = true
	record.TaxRedeemedAt = e.now()
	if err := e.state.PutParticipant(record); err != nil {
		return nil, err
	}
	e.emit(events.PurchaseTaxRedeemed(record.Primary, amount))
	return amount, nil
}

func (e *Engine) emit(evt *events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(evt)
	}
}
