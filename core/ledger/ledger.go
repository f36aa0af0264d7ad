package ledger

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/core/state"
)

const pauseScope = "token"

var (
	ErrPaused            = errors.New("ledger: token paused")
	ErrInvalidAmount     = errors.New("ledger: amount must be positive")
	ErrInsufficientFunds = errors.New("ledger: insufficient balance")
	ErrVaultUnderfunded  = errors.New("ledger: native vault underfunded")
)

// Ledger is a minimal fungible-token ledger over the shared store. The
// membership core consumes it only through the TokenLedger and
// NativeTransferrer contracts; a deployment backed by an external chain
// swaps this implementation out without touching the engines.
type Ledger struct {
	state *state.Store
}

// New wraps the shared store in a token ledger.
func New(st *state.Store) *Ledger {
	return &Ledger{state: st}
}

// Paused reports the administrative token pause flag.
func (l *Ledger) Paused() bool {
	return l.state.IsPaused(pauseScope)
}

// SetPaused toggles the token pause flag.
func (l *Ledger) SetPaused(paused bool) error {
	return l.state.SetModulePaused(pauseScope, paused)
}

// Mint credits freshly issued tokens to an account.
func (l *Ledger) Mint(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if l.Paused() {
		return ErrPaused
	}
	if amount.Sign() == 0 {
		return nil
	}
	account, err := l.state.Account(to)
	if err != nil {
		return err
	}
	account.Balance.Add(account.Balance, amount)
	if err := l.state.PutAccount(to, account); err != nil {
		return err
	}
	supply, err := l.state.TokenSupply()
	if err != nil {
		return err
	}
	return l.state.SetTokenSupply(supply.Add(supply, amount))
}

// Burn destroys tokens held by an account.
func (l *Ledger) Burn(from common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if l.Paused() {
		return ErrPaused
	}
	account, err := l.state.Account(from)
	if err != nil {
		return err
	}
	if account.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	account.Balance.Sub(account.Balance, amount)
	if err := l.state.PutAccount(from, account); err != nil {
		return err
	}
	supply, err := l.state.TokenSupply()
	if err != nil {
		return err
	}
	supply.Sub(supply, amount)
	if supply.Sign() < 0 {
		supply.SetInt64(0)
	}
	return l.state.SetTokenSupply(supply)
}

// BalanceOf returns the token balance of an account.
func (l *Ledger) BalanceOf(addr common.Address) (*big.Int, error) {
	account, err := l.state.Account(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(account.Balance), nil
}

// NativeVault tracks the funded native-currency balance available for
// bonus payouts.
type NativeVault struct {
	state *state.Store
}

// NewNativeVault wraps the shared store in a native payout vault.
func NewNativeVault(st *state.Store) *NativeVault {
	return &NativeVault{state: st}
}

// Deposit funds the vault.
func (v *NativeVault) Deposit(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := v.state.NativeVaultBalance()
	if err != nil {
		return err
	}
	return v.state.SetNativeVaultBalance(balance.Add(balance, amount))
}

// Balance returns the funded vault balance.
func (v *NativeVault) Balance() (*big.Int, error) {
	return v.state.NativeVaultBalance()
}

// TransferNative pays a native-currency amount out of the vault. The
// payout leaves the system, so only the vault side is book-kept.
func (v *NativeVault) TransferNative(to common.Address, amount *big.Int) error {
	if to == (common.Address{}) || amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := v.state.NativeVaultBalance()
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrVaultUnderfunded
	}
	return v.state.SetNativeVaultBalance(balance.Sub(balance, amount))
}
