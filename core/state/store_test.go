package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/native/claims"
	"github.com/frntpump/fnt-contracts/native/membership"
	"github.com/frntpump/fnt-contracts/native/purchase"
	"github.com/frntpump/fnt-contracts/native/rewards"
	"github.com/frntpump/fnt-contracts/native/staking"
	"github.com/frntpump/fnt-contracts/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(storage.NewMemDB())
}

func TestParticipantRoundTrip(t *testing.T) {
	store := newTestStore(t)
	addr := common.HexToAddress("0x01")
	referrer := common.HexToAddress("0x02")

	record := (&membership.Participant{
		Seq:             3,
		UID:             "c0ffee",
		Primary:         addr,
		Referrer:        referrer,
		Sponsored:       true,
		Active:          true,
		FirstActiveAt:   1_700_000_000,
		ReferralCount:   4,
		CurrentTier:     2,
		PurchasedTokens: big.NewInt(12_345),
		PurchaseTax:     big.NewInt(67),
	}).Normalize()
	record.TokenBonus.Accrued = big.NewInt(500)
	record.TokenBonus.Claimed = big.NewInt(100)
	record.TokenBonus.FirstClaimAt = 1_699_999_999

	if err := store.PutParticipant(record); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.SetWalletOwner(addr, record.Seq); err != nil {
		t.Fatalf("index: %v", err)
	}

	loaded, ok, err := store.ParticipantBySeq(3)
	if err != nil || !ok {
		t.Fatalf("load by seq: ok=%v err=%v", ok, err)
	}
	if loaded.UID != record.UID || loaded.Primary != addr || loaded.Referrer != referrer {
		t.Fatalf("identity fields: %+v", loaded)
	}
	if !loaded.Sponsored || !loaded.Active || loaded.CurrentTier != 2 {
		t.Fatalf("flags: %+v", loaded)
	}
	if loaded.PurchasedTokens.Cmp(big.NewInt(12_345)) != 0 {
		t.Fatalf("purchased: %s", loaded.PurchasedTokens)
	}
	if loaded.TokenBonus.Accrued.Cmp(big.NewInt(500)) != 0 || loaded.TokenBonus.Claimed.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("bonus meter: %+v", loaded.TokenBonus)
	}

	byAddr, ok, err := store.Participant(addr)
	if err != nil || !ok {
		t.Fatalf("load by address: ok=%v err=%v", ok, err)
	}
	if byAddr.Seq != 3 {
		t.Fatalf("wallet resolution: seq %d", byAddr.Seq)
	}

	// Sequence 0 is the "not registered" sentinel.
	if _, ok, err := store.ParticipantBySeq(0); err != nil || ok {
		t.Fatalf("sentinel lookup: ok=%v err=%v", ok, err)
	}
	if err := store.PutParticipant(&membership.Participant{}); err == nil {
		t.Fatal("persisting a zero-seq record must fail")
	}
}

func TestWalletIndex(t *testing.T) {
	store := newTestStore(t)
	addr := common.HexToAddress("0x10")

	if seq, err := store.WalletOwner(addr); err != nil || seq != 0 {
		t.Fatalf("unowned wallet: seq=%d err=%v", seq, err)
	}
	if err := store.SetWalletOwner(addr, 9); err != nil {
		t.Fatalf("set: %v", err)
	}
	if seq, _ := store.WalletOwner(addr); seq != 9 {
		t.Fatalf("owner: %d", seq)
	}
	if err := store.RemoveWalletOwner(addr); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if seq, _ := store.WalletOwner(addr); seq != 0 {
		t.Fatalf("owner after removal: %d", seq)
	}

	wallets := []common.Address{addr, common.HexToAddress("0x11")}
	if err := store.SetLinkedWallets(9, wallets); err != nil {
		t.Fatalf("set list: %v", err)
	}
	loaded, err := store.LinkedWallets(9)
	if err != nil {
		t.Fatalf("load list: %v", err)
	}
	if len(loaded) != 2 || loaded[0] != wallets[0] || loaded[1] != wallets[1] {
		t.Fatalf("wallet list: %v", loaded)
	}
}

func TestReferralEdges(t *testing.T) {
	store := newTestStore(t)
	referrer := common.HexToAddress("0x20")
	referees := []common.Address{
		common.HexToAddress("0x21"),
		common.HexToAddress("0x22"),
		common.HexToAddress("0x23"),
	}
	for i, referee := range referees {
		if err := store.PutReferralEdge(referrer, uint64(i), referee); err != nil {
			t.Fatalf("edge %d: %v", i, err)
		}
	}
	listed, err := store.Referees(referrer, 3)
	if err != nil {
		t.Fatalf("referees: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("edge count: %d", len(listed))
	}
	for i := range referees {
		if listed[i] != referees[i] {
			t.Fatalf("edge %d: %s", i, listed[i].Hex())
		}
	}
	if _, ok, err := store.ReferralEdge(referrer, 7); err != nil || ok {
		t.Fatalf("missing edge: ok=%v err=%v", ok, err)
	}
}

func TestCountersAndSequence(t *testing.T) {
	store := newTestStore(t)

	counters, err := store.Counters()
	if err != nil {
		t.Fatalf("zero counters: %v", err)
	}
	if counters.Participants != 0 || counters.PurchasedGross.Sign() != 0 {
		t.Fatalf("fresh counters: %+v", counters)
	}

	first, err := store.NextParticipantSeq()
	if err != nil {
		t.Fatalf("seq: %v", err)
	}
	if first != 1 {
		t.Fatalf("first sequence id: %d", first)
	}
	second, _ := store.NextParticipantSeq()
	if second != 2 {
		t.Fatalf("second sequence id: %d", second)
	}

	counters, _ = store.Counters()
	counters.Referrals = 5
	counters.WhaleTax = big.NewInt(4_200)
	if err := store.PutCounters(counters); err != nil {
		t.Fatalf("put counters: %v", err)
	}
	loaded, _ := store.Counters()
	if loaded.Participants != 2 || loaded.Referrals != 5 || loaded.WhaleTax.Cmp(big.NewInt(4_200)) != 0 {
		t.Fatalf("counters round trip: %+v", loaded)
	}
}

func TestConfigFallbacks(t *testing.T) {
	store := newTestStore(t)

	rewardCfg, err := store.RewardConfig()
	if err != nil {
		t.Fatalf("reward config: %v", err)
	}
	if len(rewardCfg.Steps) == 0 {
		t.Fatal("reward defaults missing")
	}
	purchaseCfg, err := store.PurchaseConfig()
	if err != nil {
		t.Fatalf("purchase config: %v", err)
	}
	if !purchaseCfg.Active {
		t.Fatal("purchase defaults missing")
	}
	claimCfg, err := store.ClaimConfig()
	if err != nil {
		t.Fatalf("claim config: %v", err)
	}
	if !claimCfg.TokenBonusActive {
		t.Fatal("claim defaults missing")
	}
	stakingCfg, err := store.StakingConfig()
	if err != nil {
		t.Fatalf("staking config: %v", err)
	}
	if len(stakingCfg.Lock) == 0 {
		t.Fatal("staking defaults missing")
	}

	// Persisted configuration wins over the defaults.
	custom := purchase.DefaultConfig()
	custom.WhaleTaxBps = 1_234
	if err := store.SetPurchaseConfig(custom); err != nil {
		t.Fatalf("set purchase: %v", err)
	}
	loaded, _ := store.PurchaseConfig()
	if loaded.WhaleTaxBps != 1_234 {
		t.Fatalf("purchase config round trip: %d", loaded.WhaleTaxBps)
	}

	customClaims := claims.DefaultConfig()
	customClaims.FreeClaim = true
	if err := store.SetClaimConfig(customClaims); err != nil {
		t.Fatalf("set claims: %v", err)
	}
	loadedClaims, _ := store.ClaimConfig()
	if !loadedClaims.FreeClaim {
		t.Fatal("claim config round trip")
	}

	customRewards := rewards.DefaultConfig()
	customRewards.Organic.Factor = 4
	if err := store.SetRewardConfig(customRewards); err != nil {
		t.Fatalf("set rewards: %v", err)
	}
	loadedRewards, _ := store.RewardConfig()
	if loadedRewards.Organic.Factor != 4 {
		t.Fatalf("reward config round trip: %d", loadedRewards.Organic.Factor)
	}

	customStaking := staking.DefaultConfig()
	customStaking.AutoCompoundBonusBps = 777
	if err := store.SetStakingConfig(customStaking); err != nil {
		t.Fatalf("set staking: %v", err)
	}
	loadedStaking, _ := store.StakingConfig()
	if loadedStaking.AutoCompoundBonusBps != 777 {
		t.Fatalf("staking config round trip: %d", loadedStaking.AutoCompoundBonusBps)
	}
}

func TestStakingStateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	owner := common.HexToAddress("0x30")

	pos := (&staking.Position{
		ID:           1,
		Owner:        owner,
		LockTier:     2,
		AutoCompound: true,
		Principal:    big.NewInt(1_000),
		RewardBase:   big.NewInt(1_100),
		Compounded:   big.NewInt(100),
		StartAt:      1_700_000_000,
		LastUpdate:   1_700_100_000,
		UnlockAt:     1_702_000_000,
		AprBps:       3_500,
	}).Normalize()
	if err := store.PutStakingPosition(pos); err != nil {
		t.Fatalf("put: %v", err)
	}
	loaded, ok, err := store.StakingPosition(1)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.Owner != owner || !loaded.AutoCompound || loaded.AprBps != 3_500 {
		t.Fatalf("position fields: %+v", loaded)
	}
	if loaded.RewardBase.Cmp(big.NewInt(1_100)) != 0 {
		t.Fatalf("reward base: %s", loaded.RewardBase)
	}

	if err := store.SetOwnerPositions(owner, []uint64{1}); err != nil {
		t.Fatalf("index: %v", err)
	}
	ids, err := store.OwnerPositions(owner)
	if err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("owner index: %v err=%v", ids, err)
	}

	if err := store.DeleteStakingPosition(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.StakingPosition(1); ok {
		t.Fatal("position survived delete")
	}

	id, err := store.NextPositionID()
	if err != nil || id != 1 {
		t.Fatalf("first position id: %d err=%v", id, err)
	}
	id, _ = store.NextPositionID()
	if id != 2 {
		t.Fatalf("second position id: %d", id)
	}

	if err := store.SetPenaltyPool(big.NewInt(55)); err != nil {
		t.Fatalf("pool: %v", err)
	}
	pool, _ := store.PenaltyPool()
	if pool.Cmp(big.NewInt(55)) != 0 {
		t.Fatalf("penalty pool: %s", pool)
	}

	metrics, err := store.StakingMetrics()
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	metrics.TotalStaked = big.NewInt(9_000)
	metrics.OpenPositions = 3
	if err := store.PutStakingMetrics(metrics); err != nil {
		t.Fatalf("put metrics: %v", err)
	}
	loadedMetrics, _ := store.StakingMetrics()
	if loadedMetrics.TotalStaked.Cmp(big.NewInt(9_000)) != 0 || loadedMetrics.OpenPositions != 3 {
		t.Fatalf("metrics round trip: %+v", loadedMetrics)
	}
}

func TestModulePauseFlags(t *testing.T) {
	store := newTestStore(t)
	if store.IsPaused("staking") {
		t.Fatal("fresh store reports paused")
	}
	if err := store.SetModulePaused("staking", true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !store.IsPaused("staking") {
		t.Fatal("pause flag lost")
	}
	if store.IsPaused("purchase") {
		t.Fatal("pause leaked across modules")
	}
	if err := store.SetModulePaused("staking", false); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if store.IsPaused("staking") {
		t.Fatal("unpause lost")
	}
}

func TestCreditAllowance(t *testing.T) {
	store := newTestStore(t)
	granter := common.HexToAddress("0x40")

	remaining, err := store.CreditAllowance(granter)
	if err != nil || remaining.Sign() != 0 {
		t.Fatalf("fresh allowance: %s err=%v", remaining, err)
	}
	if err := store.SetCreditAllowance(granter, big.NewInt(777)); err != nil {
		t.Fatalf("set: %v", err)
	}
	remaining, _ = store.CreditAllowance(granter)
	if remaining.Cmp(big.NewInt(777)) != 0 {
		t.Fatalf("allowance round trip: %s", remaining)
	}
}

func TestSponsoredList(t *testing.T) {
	store := newTestStore(t)
	for _, seq := range []uint64{4, 9} {
		if err := store.AppendSponsored(seq); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	list, err := store.SponsoredList()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0] != 4 || list[1] != 9 {
		t.Fatalf("sponsored list: %v", list)
	}
}
