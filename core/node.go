package core

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/core/events"
	"github.com/frntpump/fnt-contracts/core/ledger"
	"github.com/frntpump/fnt-contracts/core/state"
	nativecommon "github.com/frntpump/fnt-contracts/native/common"
	"github.com/frntpump/fnt-contracts/native/claims"
	"github.com/frntpump/fnt-contracts/native/membership"
	"github.com/frntpump/fnt-contracts/native/purchase"
	"github.com/frntpump/fnt-contracts/native/registry"
	"github.com/frntpump/fnt-contracts/native/rewards"
	"github.com/frntpump/fnt-contracts/native/staking"
	"github.com/frntpump/fnt-contracts/storage"
)

// Node is the composition root: it owns the one shared store and exposes the
// statically-linked module engines over it. Every mutating operation runs as
// a whole serialized unit under the node mutex, giving the all-or-nothing
// execution model the engines assume.
type Node struct {
	mu sync.Mutex

	store  *state.Store
	token  *ledger.Ledger
	vault  *ledger.NativeVault
	guard  *nativecommon.ReentryGuard
	events events.Emitter

	registry *registry.Engine
	purchase *purchase.Engine
	claims   *claims.Engine
	staking  *staking.Engine

	nowFn  func() int64
	height uint64
}

// NodeOption customises node construction.
type NodeOption func(*Node)

// WithEmitter routes module events to the given emitter.
func WithEmitter(emitter events.Emitter) NodeOption {
	return func(n *Node) {
		if emitter != nil {
			n.events = emitter
		}
	}
}

// WithNowFunc overrides the node-wide time source.
func WithNowFunc(now func() int64) NodeOption {
	return func(n *Node) {
		if now != nil {
			n.nowFn = now
		}
	}
}

// WithExistentialDeposit sets the activity balance threshold.
func WithExistentialDeposit(amount *big.Int) NodeOption {
	return func(n *Node) {
		n.registry.SetExistentialDeposit(amount)
	}
}

// NewNode wires a node over a key-value database.
func NewNode(db storage.Database, opts ...NodeOption) *Node {
	st := state.NewStore(db)
	n := &Node{
		store:    st,
		token:    ledger.New(st),
		vault:    ledger.NewNativeVault(st),
		guard:    nativecommon.NewReentryGuard(),
		events:   events.NoopEmitter{},
		registry: registry.NewEngine(),
		purchase: purchase.NewEngine(),
		claims:   claims.NewEngine(),
		staking:  staking.NewEngine(),
		nowFn:    func() int64 { return time.Now().Unix() },
	}

	n.registry.SetState(st)
	n.registry.SetToken(n.token)
	n.registry.SetGuard(n.guard)
	n.registry.SetPauses(st)
	n.registry.SetBlockFunc(func() uint64 { return n.height })

	n.purchase.SetState(st)
	n.purchase.SetToken(n.token)
	n.purchase.SetRegistry(n.registry)
	n.purchase.SetGuard(n.guard)
	n.purchase.SetPauses(st)

	n.claims.SetState(st)
	n.claims.SetToken(n.token)
	n.claims.SetNativeTransferrer(n.vault)
	n.claims.SetRegistry(n.registry)
	n.claims.SetGuard(n.guard)
	n.claims.SetPauses(st)

	n.staking.SetState(st)
	n.staking.SetToken(n.token)
	n.staking.SetGuard(n.guard)
	n.staking.SetPauses(st)

	for _, opt := range opts {
		opt(n)
	}

	n.registry.SetNowFunc(n.nowFn)
	n.purchase.SetNowFunc(n.nowFn)
	n.claims.SetNowFunc(n.nowFn)
	n.staking.SetNowFunc(n.nowFn)

	n.registry.SetEmitter(n.events)
	n.purchase.SetEmitter(n.events)
	n.claims.SetEmitter(n.events)
	n.staking.SetEmitter(n.events)
	return n
}

// Store exposes the shared participant store for read-only callers.
func (n *Node) Store() *state.Store { return n.store }

// Token exposes the ledger collaborator.
func (n *Node) Token() *ledger.Ledger { return n.token }

// Vault exposes the native payout vault.
func (n *Node) Vault() *ledger.NativeVault { return n.vault }

// begin serializes one mutating unit and advances the logical height used
// for activity stamps.
func (n *Node) begin() func() {
	n.mu.Lock()
	n.height++
	return n.mu.Unlock
}

// --- Registry operations ---

// RegisterWithReferral registers the caller under the referrer's sequence id.
func (n *Node) RegisterWithReferral(caller common.Address, referrerSeq uint64) (*membership.Participant, error) {
	defer n.begin()()
	return n.registry.RegisterWithReferral(caller, referrerSeq)
}

// RegisterSponsored registers a sponsored participant.
func (n *Node) RegisterSponsored(addr common.Address) (*membership.Participant, error) {
	defer n.begin()()
	return n.registry.RegisterSponsored(addr)
}

// LinkWallet links an additional wallet to the caller's participant.
func (n *Node) LinkWallet(caller, wallet common.Address) error {
	defer n.begin()()
	return n.registry.LinkWallet(caller, wallet)
}

// UnlinkWallet removes a linked wallet.
func (n *Node) UnlinkWallet(caller, wallet common.Address) error {
	defer n.begin()()
	return n.registry.UnlinkWallet(caller, wallet)
}

// RecomputeActivity refreshes the balance-driven activity flag.
func (n *Node) RecomputeActivity(addr common.Address) (bool, error) {
	defer n.begin()()
	return n.registry.RecomputeActivity(addr)
}

// ResyncTier recomputes the cached referral tier.
func (n *Node) ResyncTier(addr common.Address) (uint8, error) {
	defer n.begin()()
	return n.registry.ResyncTier(addr)
}

// Participant resolves a wallet to its participant record.
func (n *Node) Participant(addr common.Address) (*membership.Participant, bool, error) {
	return n.store.Participant(addr)
}

// Counters returns the network-wide totals.
func (n *Node) Counters() (*membership.Counters, error) {
	return n.store.Counters()
}

// --- Purchase operations ---

// PreviewPurchase quotes a purchase without mutating state.
func (n *Node) PreviewPurchase(buyer common.Address, payment *big.Int) (*purchase.Quote, error) {
	return n.purchase.Preview(buyer, payment)
}

// ExecutePurchase settles a purchase.
func (n *Node) ExecutePurchase(buyer common.Address, payment *big.Int) (*purchase.Quote, error) {
	defer n.begin()()
	return n.purchase.Execute(buyer, payment)
}

// RedeemPurchaseTax settles the one-shot whale-tax redemption.
func (n *Node) RedeemPurchaseTax(caller common.Address) (*big.Int, error) {
	defer n.begin()()
	return n.purchase.RedeemTax(caller)
}

// --- Claim operations ---

// ClaimTokenBonus settles the deferred token bonus.
func (n *Node) ClaimTokenBonus(caller common.Address) (*big.Int, error) {
	defer n.begin()()
	return n.claims.ClaimTokenBonus(caller)
}

// ClaimNativeBonus settles the accrued native bonus.
func (n *Node) ClaimNativeBonus(caller common.Address) (*big.Int, error) {
	defer n.begin()()
	return n.claims.ClaimNativeBonus(caller)
}

// ClaimCredited settles manually credited tokens (zero claims everything).
func (n *Node) ClaimCredited(caller common.Address, amount *big.Int) (*big.Int, error) {
	defer n.begin()()
	return n.claims.ClaimCredited(caller, amount)
}

// ClaimAll settles every eligible balance in one unit.
func (n *Node) ClaimAll(caller common.Address) (*claims.Summary, error) {
	defer n.begin()()
	return n.claims.ClaimAll(caller)
}

// CreditTokens accrues an admin token credit against a participant.
func (n *Node) CreditTokens(granter, wallet common.Address, amount *big.Int, memo string) error {
	defer n.begin()()
	return n.claims.CreditTokens(granter, wallet, amount, memo)
}

// SetCreditAllowance assigns a granter's remaining credit allowance.
func (n *Node) SetCreditAllowance(granter common.Address, remaining *big.Int) error {
	defer n.begin()()
	return n.store.SetCreditAllowance(granter, remaining)
}

// --- Staking operations ---

// CreateStake opens a staking position.
func (n *Node) CreateStake(owner common.Address, lockTier uint8, amount *big.Int, autoCompound bool) (*staking.Position, error) {
	defer n.begin()()
	return n.staking.Create(owner, lockTier, amount, autoCompound)
}

// SettleStake accrues rewards on a position.
func (n *Node) SettleStake(id uint64) (*staking.Position, error) {
	defer n.begin()()
	return n.staking.Settle(id)
}

// ClaimStakeRewards pays out unclaimed staking rewards.
func (n *Node) ClaimStakeRewards(owner common.Address, id uint64) (*big.Int, error) {
	defer n.begin()()
	return n.staking.Claim(owner, id)
}

// AddToStake increases an open position.
func (n *Node) AddToStake(owner common.Address, id uint64, amount *big.Int) (*staking.Position, error) {
	defer n.begin()()
	return n.staking.AddToPosition(owner, id, amount)
}

// SetStakeAutoCompound toggles auto-compounding on a position.
func (n *Node) SetStakeAutoCompound(owner common.Address, id uint64, enabled bool) (*staking.Position, error) {
	defer n.begin()()
	return n.staking.SetAutoCompound(owner, id, enabled)
}

// ExitStake withdraws a position, optionally forcing an early exit.
func (n *Node) ExitStake(owner common.Address, id uint64, force bool) (*big.Int, error) {
	defer n.begin()()
	return n.staking.Exit(owner, id, force)
}

// StakePosition returns one staking position.
func (n *Node) StakePosition(id uint64) (*staking.Position, error) {
	return n.staking.Position(id)
}

// StakePositions enumerates an owner's open positions.
func (n *Node) StakePositions(owner common.Address) ([]*staking.Position, error) {
	return n.staking.Positions(owner)
}

// StakeMetrics returns module totals and the penalty pool.
func (n *Node) StakeMetrics() (*staking.Metrics, *big.Int, error) {
	return n.staking.Metrics()
}

// --- Governance operations ---

// SetRewardConfig validates and replaces the referral reward configuration.
func (n *Node) SetRewardConfig(cfg *rewards.Config) error {
	defer n.begin()()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := n.store.SetRewardConfig(cfg); err != nil {
		return err
	}
	n.events.Emit(events.ConfigUpdated("rewards"))
	return nil
}

// SetPurchaseConfig validates and replaces the purchase configuration.
func (n *Node) SetPurchaseConfig(cfg *purchase.Config) error {
	defer n.begin()()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := n.store.SetPurchaseConfig(cfg); err != nil {
		return err
	}
	n.events.Emit(events.ConfigUpdated("purchase"))
	return nil
}

// SetClaimConfig validates and replaces the claim configuration.
func (n *Node) SetClaimConfig(cfg *claims.Config) error {
	defer n.begin()()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := n.store.SetClaimConfig(cfg); err != nil {
		return err
	}
	n.events.Emit(events.ConfigUpdated("claims"))
	return nil
}

// SetStakingConfig validates and replaces the staking configuration.
func (n *Node) SetStakingConfig(cfg *staking.Config) error {
	defer n.begin()()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := n.store.SetStakingConfig(cfg); err != nil {
		return err
	}
	n.events.Emit(events.ConfigUpdated("staking"))
	return nil
}

// SetModulePaused toggles a module pause flag.
func (n *Node) SetModulePaused(module string, paused bool) error {
	defer n.begin()()
	return n.store.SetModulePaused(module, paused)
}
