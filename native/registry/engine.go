package registry

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/frntpump/fnt-contracts/core/events"
	"github.com/frntpump/fnt-contracts/core/types"
	nativecommon "github.com/frntpump/fnt-contracts/native/common"
	"github.com/frntpump/fnt-contracts/native/membership"
	"github.com/frntpump/fnt-contracts/native/rewards"
)

const moduleName = "registry"

var (
	ErrNilState          = errors.New("registry engine: state not configured")
	ErrZeroAddress       = errors.New("registry engine: zero address")
	ErrAlreadyRegistered = errors.New("registry engine: wallet already registered")
	ErrNotRegistered     = errors.New("registry engine: wallet not registered")
	ErrSelfReferral      = errors.New("registry engine: self-referral")
	ErrReferrerNotFound  = errors.New("registry engine: referrer not found")
	ErrWalletCapReached  = errors.New("registry engine: wallet cap reached")
	ErrWalletTaken       = errors.New("registry engine: wallet already linked")
	ErrWalletNotLinked   = errors.New("registry engine: wallet not linked")
	ErrNotPrimaryWallet  = errors.New("registry engine: caller is not the primary wallet")
	ErrUnlinkPrimary     = errors.New("registry engine: cannot unlink the primary wallet")
)

type engineState interface {
	Participant(addr common.Address) (*membership.Participant, bool, error)
	ParticipantBySeq(seq uint64) (*membership.Participant, bool, error)
	PutParticipant(p *membership.Participant) error
	WalletOwner(addr common.Address) (uint64, error)
	SetWalletOwner(addr common.Address, seq uint64) error
	RemoveWalletOwner(addr common.Address) error
	LinkedWallets(seq uint64) ([]common.Address, error)
	SetLinkedWallets(seq uint64, wallets []common.Address) error
	PutReferralEdge(referrer common.Address, index uint64, referee common.Address) error
	AppendSponsored(seq uint64) error
	Counters() (*membership.Counters, error)
	PutCounters(c *membership.Counters) error
	NextParticipantSeq() (uint64, error)
	RewardConfig() (*rewards.Config, error)
}

// Engine implements participant registration, wallet linking, referral-graph
// recording and balance-driven activity status.
type Engine struct {
	state              engineState
	token              types.TokenLedger
	emitter            events.Emitter
	guard              *nativecommon.ReentryGuard
	pauses             nativecommon.PauseView
	nowFn              func() int64
	blockFn            func() uint64
	existentialDeposit *big.Int
}

// NewEngine constructs a registry engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter:            events.NoopEmitter{},
		guard:              nativecommon.NewReentryGuard(),
		nowFn:              func() int64 { return time.Now().Unix() },
		blockFn:            func() uint64 { return 0 },
		existentialDeposit: big.NewInt(1e18),
	}
}

// SetState wires the engine to the shared participant store.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetToken wires the external token ledger used for activity checks.
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

// SetBlockFunc overrides the block height source.
func (e *Engine) SetBlockFunc(block func() uint64) {
	if block == nil {
		e.blockFn = func() uint64 { return 0 }
		return
	}
	e.blockFn = block
}

// SetExistentialDeposit configures the minimum balance that makes a
// participant "active".
func (e *Engine) SetExistentialDeposit(amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		e.existentialDeposit = big.NewInt(1e18)
		return
	}
	e.existentialDeposit = new(big.Int).Set(amount)
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

// Register creates a fresh participant record for the wallet. It does not
// itself prevent double registration; callers check the wallet index first.
func (e *Engine) Register(addr, referrer common.Address, referralIndex uint64, sponsored bool) (*membership.Participant, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if addr == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	seq, err := e.state.NextParticipantSeq()
	if err != nil {
		return nil, err
	}
	cfg, err := e.state.RewardConfig()
	if err != nil {
		return nil, err
	}
	record := (&membership.Participant{
		Seq:           seq,
		UID:           uuid.NewString(),
		Primary:       addr,
		Referrer:      referrer,
		Sponsored:     sponsored,
		PositionIndex: referralIndex,
		CurrentTier:   rewards.Tier(0, cfg.Steps),
	}).Normalize()
	if err := e.state.PutParticipant(record); err != nil {
		return nil, err
	}
	if err := e.state.SetWalletOwner(addr, seq); err != nil {
		return nil, err
	}
	if err := e.state.SetLinkedWallets(seq, []common.Address{addr}); err != nil {
		return nil, err
	}
	if sponsored {
		if err := e.state.AppendSponsored(seq); err != nil {
			return nil, err
		}
	}
	e.emit(events.MemberRegistered(seq, record.UID, addr, referrer, sponsored))
	return record, nil
}

// RegisterWithReferral registers the caller under an existing referrer
// (addressed by sequence id) and records the referral edge, accruing the
// referrer's per-referral token reward.
func (e *Engine) RegisterWithReferral(caller common.Address, referrerSeq uint64) (*membership.Participant, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(caller); err != nil {
		return nil, err
	}
	defer e.guard.Exit(caller)

	if caller == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if seq, err := e.state.WalletOwner(caller); err != nil {
		return nil, err
	} else if seq != 0 {
		return nil, ErrAlreadyRegistered
	}
	referrer, ok, err := e.state.ParticipantBySeq(referrerSeq)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReferrerNotFound
	}
	if referrer.Primary == caller {
		return nil, ErrSelfReferral
	}

	record, err := e.Register(caller, referrer.Primary, referrer.ReferralCount, false)
	if err != nil {
		return nil, err
	}
	if err := e.recordReferral(referrer, caller); err != nil {
		return nil, err
	}
	return record, nil
}

// RegisterSponsored registers a wallet through an authorized sponsor with no
// referral edge.
func (e *Engine) RegisterSponsored(addr common.Address) (*membership.Participant, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(addr); err != nil {
		return nil, err
	}
	defer e.guard.Exit(addr)

	if addr == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if seq, err := e.state.WalletOwner(addr); err != nil {
		return nil, err
	} else if seq != 0 {
		return nil, ErrAlreadyRegistered
	}
	return e.Register(addr, common.Address{}, 0, true)
}

// recordReferral applies the referral bookkeeping on the referrer side:
// count, timestamps, graph edge, tier resync, reward accrual and the global
// referral counter.
func (e *Engine) recordReferral(referrer *membership.Participant, referee common.Address) error {
	cfg, err := e.state.RewardConfig()
	if err != nil {
		return err
	}
	now := e.now()

	index := referrer.ReferralCount
	referrer.ReferralCount++
	if referrer.FirstReferralAt == 0 {
		referrer.FirstReferralAt = now
	}
	referrer.LastReferralAt = now
	referrer.CurrentTier = rewards.Tier(referrer.ReferralCount, cfg.Steps)

	reward, err := rewards.RewardWithMultiplier(referrer.ReferralCount, referrer.Sponsored, cfg)
	if err != nil {
		return err
	}
	referrer.TokenBonus.Normalize()
	referrer.TokenBonus.Accrued.Add(referrer.TokenBonus.Accrued, reward)

	if err := e.state.PutReferralEdge(referrer.Primary, index, referee); err != nil {
		return err
	}
	if err := e.state.PutParticipant(referrer); err != nil {
		return err
	}
	counters, err := e.state.Counters()
	if err != nil {
		return err
	}
	counters.Referrals++
	if err := e.state.PutCounters(counters); err != nil {
		return err
	}
	e.emit(events.ReferralRecorded(referrer.Primary, referee, index, reward))
	return nil
}

// RecordReferral applies referral bookkeeping for an already registered
// referee, resolving the referrer by wallet address.
func (e *Engine) RecordReferral(referrerAddr, referee common.Address) error {
	if e.state == nil {
		return ErrNilState
	}
	referrer, ok, err := e.state.Participant(referrerAddr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrReferrerNotFound
	}
	if referrer.Primary == referee {
		return ErrSelfReferral
	}
	return e.recordReferral(referrer, referee)
}

// LinkWallet binds an additional wallet to the caller's participant. Only
// the primary wallet may link, the wallet must be unowned network-wide and
// the per-participant cap bounds the list.
func (e *Engine) LinkWallet(caller, wallet common.Address) error {
	if e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.guard.Enter(caller); err != nil {
		return err
	}
	defer e.guard.Exit(caller)

	if wallet == (common.Address{}) {
		return ErrZeroAddress
	}
	record, ok, err := e.state.Participant(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotRegistered
	}
	if record.Primary != caller {
		return ErrNotPrimaryWallet
	}
	if owner, err := e.state.WalletOwner(wallet); err != nil {
		return err
	} else if owner != 0 {
		return ErrWalletTaken
	}
	wallets, err := e.state.LinkedWallets(record.Seq)
	if err != nil {
		return err
	}
	if len(wallets) >= membership.MaxLinkedWallets {
		return ErrWalletCapReached
	}
	if err := e.state.SetWalletOwner(wallet, record.Seq); err != nil {
		return err
	}
	if err := e.state.SetLinkedWallets(record.Seq, append(wallets, wallet)); err != nil {
		return err
	}
	e.emit(events.WalletLinked(record.Seq, wallet))
	return nil
}

// UnlinkWallet removes a linked wallet using swap-with-last removal.
// Unlinking the primary wallet is forbidden.
func (e *Engine) UnlinkWallet(caller, wallet common.Address) error {
	if e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := e.guard.Enter(caller); err != nil {
		return err
	}
	defer e.guard.Exit(caller)

	record, ok, err := e.state.Participant(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotRegistered
	}
	if record.Primary != caller {
		return ErrNotPrimaryWallet
	}
	if wallet == record.Primary {
		return ErrUnlinkPrimary
	}
	wallets, err := e.state.LinkedWallets(record.Seq)
	if err != nil {
		return err
	}
	idx := -1
	for i, w := range wallets {
		if w == wallet {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrWalletNotLinked
	}
	wallets[idx] = wallets[len(wallets)-1]
	wallets = wallets[:len(wallets)-1]
	if err := e.state.RemoveWalletOwner(wallet); err != nil {
		return err
	}
	if err := e.state.SetLinkedWallets(record.Seq, wallets); err != nil {
		return err
	}
	e.emit(events.WalletUnlinked(record.Seq, wallet))
	return nil
}

// RecomputeActivity re-reads the external balance and updates the active
// flag. Only the referee's first activation ever stamps the first-active
// timestamp and credits the referrer-side milestone; a balance dropping
// below the deposit and recovering flips the flag without re-counting the
// referee. The last-activity block is stamped unconditionally.
func (e *Engine) RecomputeActivity(addr common.Address) (bool, error) {
	if e.state == nil {
		return false, ErrNilState
	}
	if e.token == nil {
		return false, errors.New("registry engine: token ledger not configured")
	}
	record, ok, err := e.state.Participant(addr)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNotRegistered
	}

	balance, err := e.token.BalanceOf(record.Primary)
	if err != nil {
		return false, err
	}
	active := balance.Cmp(e.existentialDeposit) >= 0
	record.LastActivityBlock = e.blockFn()

	if active == record.Active {
		// Nothing transitioned; only the activity block moves.
		return record.Active, e.state.PutParticipant(record)
	}

	wasActive := record.Active
	record.Active = active
	if active && !wasActive && record.FirstActiveAt == 0 {
		record.FirstActiveAt = e.now()
		if err := e.creditReferrerMilestone(record); err != nil {
			return false, err
		}
	}
	if err := e.state.PutParticipant(record); err != nil {
		return false, err
	}
	e.emit(events.ActivityChanged(record.Primary, active))
	return active, nil
}

// creditReferrerMilestone bumps the referrer's active-referee counter and
// pays any milestone bonus the new count unlocked. The counter tracks how
// many referees have ever become active, so it runs once per referee. The
// bonus is keyed by the referrer's active-referee count, not by anything on
// the referee side.
func (e *Engine) creditReferrerMilestone(referee *membership.Participant) error {
	if referee.Referrer == (common.Address{}) {
		return nil
	}
	referrer, ok, err := e.state.Participant(referee.Referrer)
	if err != nil || !ok {
		return err
	}
	cfg, err := e.state.RewardConfig()
	if err != nil {
		return err
	}
	referrer.ActiveReferees++
	reward, milestone := rewards.MilestoneReward(referrer.ActiveReferees, referrer.LastMilestone, cfg.Milestone)
	if reward.Sign() > 0 {
		referrer.NativeBonus.Normalize()
		referrer.NativeBonus.Accrued.Add(referrer.NativeBonus.Accrued, reward)
		e.emit(events.MilestoneAccrued(referrer.Primary, milestone, reward))
	}
	referrer.LastMilestone = milestone
	referrer.CurrentTier = rewards.Tier(referrer.ReferralCount, cfg.Steps)
	return e.state.PutParticipant(referrer)
}

// ResyncTier recomputes and caches the participant's tier from its referral
// count under the current reward configuration.
func (e *Engine) ResyncTier(addr common.Address) (uint8, error) {
	if e.state == nil {
		return 0, ErrNilState
	}
	record, ok, err := e.state.Participant(addr)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotRegistered
	}
	cfg, err := e.state.RewardConfig()
	if err != nil {
		return 0, err
	}
	record.CurrentTier = rewards.Tier(record.ReferralCount, cfg.Steps)
	if err := e.state.PutParticipant(record); err != nil {
		return 0, err
	}
	return record.CurrentTier, nil
}
