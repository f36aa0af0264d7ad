package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/core/types"
)

// Account loads the ledger account for an address, zeroed when absent.
func (s *Store) Account(addr common.Address) (*types.Account, error) {
	account := new(types.Account)
	ok, err := s.getRLP(accountKey(addr), account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &types.Account{Balance: big.NewInt(0)}, nil
	}
	if account.Balance == nil {
		account.Balance = big.NewInt(0)
	}
	return account, nil
}

// PutAccount persists a ledger account record.
func (s *Store) PutAccount(addr common.Address, account *types.Account) error {
	if account == nil {
		account = &types.Account{}
	}
	if account.Balance == nil {
		account.Balance = big.NewInt(0)
	}
	return s.putRLP(accountKey(addr), account)
}

// TokenSupply returns the minted-minus-burned token supply.
func (s *Store) TokenSupply() (*big.Int, error) {
	return s.getBig(supplyKeyBytes)
}

// SetTokenSupply persists the token supply.
func (s *Store) SetTokenSupply(supply *big.Int) error {
	return s.putBig(supplyKeyBytes, supply)
}

// NativeVaultBalance returns the funded native payout balance.
func (s *Store) NativeVaultBalance() (*big.Int, error) {
	return s.getBig(nativeVaultKeyBytes)
}

// SetNativeVaultBalance replaces the funded native payout balance.
func (s *Store) SetNativeVaultBalance(balance *big.Int) error {
	return s.putBig(nativeVaultKeyBytes, balance)
}
