package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Account is the minimal ledger-side record the membership core reads and
// writes through the token ledger collaborator.
type Account struct {
	Balance *big.Int
	Nonce   uint64
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return &Account{Balance: big.NewInt(0)}
	}
	out := &Account{Nonce: a.Nonce, Balance: big.NewInt(0)}
	if a.Balance != nil {
		out.Balance = new(big.Int).Set(a.Balance)
	}
	return out
}

// TokenLedger is the contract the membership core consumes from the external
// fungible-token module. Every call is synchronous and either fully succeeds
// or fails the whole calling unit.
type TokenLedger interface {
	Mint(to common.Address, amount *big.Int) error
	Burn(from common.Address, amount *big.Int) error
	BalanceOf(addr common.Address) (*big.Int, error)
	Paused() bool
}

// NativeTransferrer pays out native-currency balances. It carries the same
// all-or-nothing failure contract as TokenLedger.
type NativeTransferrer interface {
	TransferNative(to common.Address, amount *big.Int) error
}
