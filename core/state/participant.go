package state

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/native/membership"
)

// ParticipantBySeq loads a participant record by sequence id.
func (s *Store) ParticipantBySeq(seq uint64) (*membership.Participant, bool, error) {
	if seq == 0 {
		return nil, false, nil
	}
	record := new(membership.Participant)
	ok, err := s.getRLP(participantKey(seq), record)
	if err != nil || !ok {
		return nil, false, err
	}
	return record.Normalize(), true, nil
}

// Participant resolves a wallet address to its participant record.
func (s *Store) Participant(addr common.Address) (*membership.Participant, bool, error) {
	seq, err := s.WalletOwner(addr)
	if err != nil || seq == 0 {
		return nil, false, err
	}
	return s.ParticipantBySeq(seq)
}

// PutParticipant persists a participant record keyed by its sequence id.
func (s *Store) PutParticipant(p *membership.Participant) error {
	if p == nil || p.Seq == 0 {
		return errInvalidParticipant
	}
	return s.putRLP(participantKey(p.Seq), p.Normalize())
}

// WalletOwner returns the sequence id owning a wallet, 0 when unowned.
func (s *Store) WalletOwner(addr common.Address) (uint64, error) {
	var seq uint64
	ok, err := s.getRLP(walletIndexKey(addr), &seq)
	if err != nil || !ok {
		return 0, err
	}
	return seq, nil
}

// SetWalletOwner binds a wallet address to a participant sequence id.
func (s *Store) SetWalletOwner(addr common.Address, seq uint64) error {
	return s.putRLP(walletIndexKey(addr), seq)
}

// RemoveWalletOwner clears a wallet binding.
func (s *Store) RemoveWalletOwner(addr common.Address) error {
	return s.db.Delete(walletIndexKey(addr))
}

// LinkedWallets returns every wallet bound to a participant, primary first.
func (s *Store) LinkedWallets(seq uint64) ([]common.Address, error) {
	var wallets []common.Address
	if _, err := s.getRLP(walletListKey(seq), &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// SetLinkedWallets replaces the wallet list for a participant.
func (s *Store) SetLinkedWallets(seq uint64, wallets []common.Address) error {
	return s.putRLP(walletListKey(seq), wallets)
}

// ReferralEdge reads one edge of the referral adjacency list.
func (s *Store) ReferralEdge(referrer common.Address, index uint64) (common.Address, bool, error) {
	var referee common.Address
	ok, err := s.getRLP(referralEdgeKey(referrer, index), &referee)
	if err != nil || !ok {
		return common.Address{}, false, err
	}
	return referee, true, nil
}

// PutReferralEdge appends one edge to the referral adjacency list. The index
// is the referrer's referral count at the time of the edge.
func (s *Store) PutReferralEdge(referrer common.Address, index uint64, referee common.Address) error {
	return s.putRLP(referralEdgeKey(referrer, index), referee)
}

// Referees enumerates the ordered referee list for a referrer.
func (s *Store) Referees(referrer common.Address, count uint64) ([]common.Address, error) {
	out := make([]common.Address, 0, count)
	for i := uint64(0); i < count; i++ {
		referee, ok, err := s.ReferralEdge(referrer, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, referee)
	}
	return out, nil
}

// Counters loads the global counters, zeroed when unset.
func (s *Store) Counters() (*membership.Counters, error) {
	counters := new(membership.Counters)
	if _, err := s.getRLP(countersKeyBytes, counters); err != nil {
		return nil, err
	}
	return counters.Normalize(), nil
}

// PutCounters persists the global counters.
func (s *Store) PutCounters(c *membership.Counters) error {
	if c == nil {
		c = new(membership.Counters)
	}
	return s.putRLP(countersKeyBytes, c.Normalize())
}

// NextParticipantSeq reserves and returns the next participant sequence id.
// The first issued id is 1; 0 stays the "not registered" sentinel forever.
func (s *Store) NextParticipantSeq() (uint64, error) {
	counters, err := s.Counters()
	if err != nil {
		return 0, err
	}
	counters.Participants++
	if err := s.PutCounters(counters); err != nil {
		return 0, err
	}
	return counters.Participants, nil
}
