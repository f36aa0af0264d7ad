package state

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	participantPrefix = []byte("member/record/")
	walletIndexPrefix = []byte("member/wallet/")
	walletListPrefix  = []byte("member/wallets/")
	referralPrefix    = []byte("member/referral/")
	countersKeyBytes  = []byte("member/counters")
	accountPrefix     = []byte("ledger/account/")
	supplyKeyBytes      = []byte("ledger/supply")
	nativeVaultKeyBytes = []byte("ledger/native-vault")
	pausedPrefix      = []byte("module/paused/")

	rewardConfigKeyBytes   = []byte("config/rewards")
	purchaseConfigKeyBytes = []byte("config/purchase")
	claimConfigKeyBytes    = []byte("config/claims")
	stakingConfigKeyBytes  = []byte("config/staking")

	stakePositionPrefix  = []byte("stake/position/")
	stakeOwnerPrefix     = []byte("stake/owner/")
	stakeSequenceKey     = []byte("stake/sequence")
	stakePenaltyKeyBytes = []byte("stake/penalty")
	stakeMetricsKeyBytes = []byte("stake/metrics")
)

func hashKey(parts ...[]byte) []byte {
	size := 0
	for _, part := range parts {
		size += len(part)
	}
	buf := make([]byte, 0, size)
	for _, part := range parts {
		buf = append(buf, part...)
	}
	return ethcrypto.Keccak256(buf)
}

func seqBytes(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

func participantKey(seq uint64) []byte {
	return hashKey(participantPrefix, seqBytes(seq))
}

func walletIndexKey(addr common.Address) []byte {
	return hashKey(walletIndexPrefix, addr.Bytes())
}

func walletListKey(seq uint64) []byte {
	return hashKey(walletListPrefix, seqBytes(seq))
}

func referralEdgeKey(referrer common.Address, index uint64) []byte {
	return hashKey(referralPrefix, referrer.Bytes(), seqBytes(index))
}

func accountKey(addr common.Address) []byte {
	return hashKey(accountPrefix, addr.Bytes())
}

func pausedKey(module string) []byte {
	return hashKey(pausedPrefix, []byte(module))
}

func stakePositionKey(id uint64) []byte {
	return hashKey(stakePositionPrefix, seqBytes(id))
}

func stakeOwnerKey(addr common.Address) []byte {
	return hashKey(stakeOwnerPrefix, addr.Bytes())
}
