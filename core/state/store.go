package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/frntpump/fnt-contracts/storage"
)

// Store is the shared participant store: the single source of truth for
// participant records, the referral graph, module configuration and staking
// positions. Every engine reads and writes through one Store instance.
//
// The Store itself is not goroutine-safe. The composition root serializes
// each mutating operation, matching the one-unit-at-a-time execution model.
type Store struct {
	db storage.Database
}

// NewStore wraps a key-value database in a participant store.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) getRLP(key []byte, out interface{}) (bool, error) {
	data, err := s.db.Get(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %T: %w", out, err)
	}
	return true, nil
}

func (s *Store) putRLP(key []byte, value interface{}) error {
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %T: %w", value, err)
	}
	return s.db.Put(key, data)
}

func (s *Store) getBig(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := s.getRLP(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (s *Store) putBig(key []byte, value *big.Int) error {
	if value == nil {
		value = big.NewInt(0)
	}
	return s.putRLP(key, value)
}

// IsPaused reports whether the named module is administratively paused. It
// satisfies the native/common PauseView interface.
func (s *Store) IsPaused(module string) bool {
	var paused bool
	ok, err := s.getRLP(pausedKey(module), &paused)
	if err != nil || !ok {
		return false
	}
	return paused
}

// SetModulePaused toggles the pause flag for a module.
func (s *Store) SetModulePaused(module string, paused bool) error {
	return s.putRLP(pausedKey(module), paused)
}
