package rpc

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/frntpump/fnt-contracts/native/claims"
	"github.com/frntpump/fnt-contracts/native/membership"
	"github.com/frntpump/fnt-contracts/native/purchase"
	"github.com/frntpump/fnt-contracts/native/rewards"
	"github.com/frntpump/fnt-contracts/native/staking"
)

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

type bonusMeterView struct {
	Accrued      string `json:"accrued"`
	Claimed      string `json:"claimed"`
	FirstClaimAt uint64 `json:"firstClaimAt,omitempty"`
	LastClaimAt  uint64 `json:"lastClaimAt,omitempty"`
}

func meterView(m membership.BonusMeter) bonusMeterView {
	return bonusMeterView{
		Accrued:      bigString(m.Accrued),
		Claimed:      bigString(m.Claimed),
		FirstClaimAt: m.FirstClaimAt,
		LastClaimAt:  m.LastClaimAt,
	}
}

type participantView struct {
	Seq       uint64 `json:"seq"`
	UID       string `json:"uid"`
	Primary   string `json:"primary"`
	Referrer  string `json:"referrer,omitempty"`
	Sponsored bool   `json:"sponsored"`

	Active            bool   `json:"active"`
	FirstActiveAt     uint64 `json:"firstActiveAt,omitempty"`
	LastActivityBlock uint64 `json:"lastActivityBlock"`

	ReferralCount  uint64 `json:"referralCount"`
	CurrentTier    uint8  `json:"currentTier"`
	ActiveReferees uint64 `json:"activeReferees"`
	LastMilestone  uint64 `json:"lastMilestone"`

	PurchasedTokens string `json:"purchasedTokens"`
	NativeSpent     string `json:"nativeSpent"`
	PurchaseCount   uint64 `json:"purchaseCount"`
	PurchaseTax     string `json:"purchaseTax"`
	TaxRedeemed     bool   `json:"taxRedeemed"`

	TokenBonus     bonusMeterView `json:"tokenBonus"`
	NativeBonus    bonusMeterView `json:"nativeBonus"`
	CreditedTokens bonusMeterView `json:"creditedTokens"`

	TokenBonusEligible  bool `json:"tokenBonusEligible"`
	NativeBonusEligible bool `json:"nativeBonusEligible"`
}

func newParticipantView(p *membership.Participant) participantView {
	view := participantView{
		Seq:                 p.Seq,
		UID:                 p.UID,
		Primary:             p.Primary.Hex(),
		Sponsored:           p.Sponsored,
		Active:              p.Active,
		FirstActiveAt:       p.FirstActiveAt,
		LastActivityBlock:   p.LastActivityBlock,
		ReferralCount:       p.ReferralCount,
		CurrentTier:         p.CurrentTier,
		ActiveReferees:      p.ActiveReferees,
		LastMilestone:       p.LastMilestone,
		PurchasedTokens:     bigString(p.PurchasedTokens),
		NativeSpent:         bigString(p.NativeSpent),
		PurchaseCount:       p.PurchaseCount,
		PurchaseTax:         bigString(p.PurchaseTax),
		TaxRedeemed:         p.TaxRedeemed,
		TokenBonus:          meterView(p.TokenBonus),
		NativeBonus:         meterView(p.NativeBonus),
		CreditedTokens:      meterView(p.CreditedTokens),
		TokenBonusEligible:  p.TokenBonusEligible,
		NativeBonusEligible: p.NativeBonusEligible,
	}
	if p.Referrer != (common.Address{}) {
		view.Referrer = p.Referrer.Hex()
	}
	return view
}

type countersView struct {
	Participants   uint64 `json:"participants"`
	Referrals      uint64 `json:"referrals"`
	PurchasedGross string `json:"purchasedGross"`
	NativeSpent    string `json:"nativeSpent"`
	WhaleTax       string `json:"whaleTax"`
}

func newCountersView(c *membership.Counters) countersView {
	return countersView{
		Participants:   c.Participants,
		Referrals:      c.Referrals,
		PurchasedGross: bigString(c.PurchasedGross),
		NativeSpent:    bigString(c.NativeSpent),
		WhaleTax:       bigString(c.WhaleTax),
	}
}

type quoteView struct {
	TokenAmount string `json:"tokenAmount"`
	WhaleTax    string `json:"whaleTax"`
	CanPurchase bool   `json:"canPurchase"`
	Reason      string `json:"reason"`
}

func newQuoteView(q *purchase.Quote) quoteView {
	return quoteView{
		TokenAmount: bigString(q.TokenAmount),
		WhaleTax:    bigString(q.WhaleTax),
		CanPurchase: q.CanPurchase,
		Reason:      string(q.Reason),
	}
}

type positionView struct {
	ID               uint64 `json:"id"`
	Owner            string `json:"owner"`
	LockTier         uint8  `json:"lockTier"`
	ReferralTier     uint8  `json:"referralTier"`
	ReferralBonusBps uint64 `json:"referralBonusBps"`
	AutoCompound     bool   `json:"autoCompound"`
	Principal        string `json:"principal"`
	RewardBase       string `json:"rewardBase"`
	Unclaimed        string `json:"unclaimed"`
	Compounded       string `json:"compounded"`
	TotalClaimed     string `json:"totalClaimed"`
	StartAt          uint64 `json:"startAt"`
	LastUpdate       uint64 `json:"lastUpdate"`
	UnlockAt         uint64 `json:"unlockAt"`
	AprBps           uint64 `json:"aprBps"`
}

func newPositionView(p *staking.Position) positionView {
	return positionView{
		ID:               p.ID,
		Owner:            p.Owner.Hex(),
		LockTier:         p.LockTier,
		ReferralTier:     p.ReferralTier,
		ReferralBonusBps: p.ReferralBonusBps,
		AutoCompound:     p.AutoCompound,
		Principal:        bigString(p.Principal),
		RewardBase:       bigString(p.RewardBase),
		Unclaimed:        bigString(p.Unclaimed),
		Compounded:       bigString(p.Compounded),
		TotalClaimed:     bigString(p.TotalClaimed),
		StartAt:          p.StartAt,
		LastUpdate:       p.LastUpdate,
		UnlockAt:         p.UnlockAt,
		AprBps:           p.AprBps,
	}
}

type purchaseConfigView struct {
	Active             bool   `json:"active"`
	StartTime          uint64 `json:"startTime"`
	Rate               string `json:"rate"`
	MinPayment         string `json:"minPayment"`
	Cap                string `json:"cap"`
	WhaleThresholdBps  uint64 `json:"whaleThresholdBps"`
	WhaleTaxBps        uint64 `json:"whaleTaxBps"`
	RedeemEnabled      bool   `json:"redeemEnabled"`
	RedeemMinReferrals uint64 `json:"redeemMinReferrals"`
}

func newPurchaseConfigView(cfg *purchase.Config) purchaseConfigView {
	return purchaseConfigView{
		Active:             cfg.Active,
		StartTime:          cfg.StartTime,
		Rate:               bigString(cfg.Rate),
		MinPayment:         bigString(cfg.MinPayment),
		Cap:                bigString(cfg.Cap),
		WhaleThresholdBps:  cfg.WhaleThresholdBps,
		WhaleTaxBps:        cfg.WhaleTaxBps,
		RedeemEnabled:      cfg.RedeemEnabled,
		RedeemMinReferrals: cfg.RedeemMinReferrals,
	}
}

type tierStepView struct {
	Threshold uint64 `json:"threshold"`
	Reward    string `json:"reward"`
}

type milestoneView struct {
	Bonus         string `json:"bonus"`
	Interval      uint64 `json:"interval"`
	MaxMilestones uint64 `json:"maxMilestones"`
	GrowthBps     uint64 `json:"growthBps"`
}

type multiplierView struct {
	Activation uint64 `json:"activation"`
	Factor     uint64 `json:"factor"`
	Window     uint64 `json:"window"`
}

type rewardConfigView struct {
	Steps     []tierStepView `json:"steps"`
	Milestone milestoneView  `json:"milestone"`
	Organic   multiplierView `json:"organic"`
	Sponsored multiplierView `json:"sponsored"`
}

func newRewardConfigView(cfg *rewards.Config) rewardConfigView {
	view := rewardConfigView{
		Milestone: milestoneView{
			Bonus:         bigString(cfg.Milestone.Bonus),
			Interval:      cfg.Milestone.Interval,
			MaxMilestones: cfg.Milestone.MaxMilestones,
			GrowthBps:     cfg.Milestone.GrowthBps,
		},
		Organic:   multiplierView(cfg.Organic),
		Sponsored: multiplierView(cfg.Sponsored),
	}
	for _, step := range cfg.Steps {
		view.Steps = append(view.Steps, tierStepView{Threshold: step.Threshold, Reward: bigString(step.Reward)})
	}
	return view
}

type claimConfigView struct {
	TokenBonusActive  bool `json:"tokenBonusActive"`
	NativeBonusActive bool `json:"nativeBonusActive"`
	CreditedActive    bool `json:"creditedActive"`

	TokenThreshold           string `json:"tokenThreshold"`
	TokenThresholdSponsored  string `json:"tokenThresholdSponsored"`
	NativeThreshold          string `json:"nativeThreshold"`
	NativeThresholdSponsored string `json:"nativeThresholdSponsored"`

	FreeClaim bool `json:"freeClaim"`
}

func newClaimConfigView(cfg *claims.Config) claimConfigView {
	return claimConfigView{
		TokenBonusActive:         cfg.TokenBonusActive,
		NativeBonusActive:        cfg.NativeBonusActive,
		CreditedActive:           cfg.CreditedActive,
		TokenThreshold:           bigString(cfg.TokenThreshold),
		TokenThresholdSponsored:  bigString(cfg.TokenThresholdSponsored),
		NativeThreshold:          bigString(cfg.NativeThreshold),
		NativeThresholdSponsored: bigString(cfg.NativeThresholdSponsored),
		FreeClaim:                cfg.FreeClaim,
	}
}

type lockTierView struct {
	Enabled    bool   `json:"enabled"`
	Duration   uint64 `json:"duration"`
	BaseAprBps uint64 `json:"baseAprBps"`
}

type referralTierView struct {
	Enabled      bool   `json:"enabled"`
	MinReferrals uint64 `json:"minReferrals"`
	BonusBps     uint64 `json:"bonusBps"`
}

type stakingConfigView struct {
	Lock     []lockTierView     `json:"lock"`
	Referral []referralTierView `json:"referral"`

	AutoCompoundBonusBps  uint64 `json:"autoCompoundBonusBps"`
	EarlyExitPrincipalBps uint64 `json:"earlyExitPrincipalBps"`
	EarlyExitRewardBps    uint64 `json:"earlyExitRewardBps"`
}

func newStakingConfigView(cfg *staking.Config) stakingConfigView {
	view := stakingConfigView{
		AutoCompoundBonusBps:  cfg.AutoCompoundBonusBps,
		EarlyExitPrincipalBps: cfg.EarlyExitPrincipalBps,
		EarlyExitRewardBps:    cfg.EarlyExitRewardBps,
	}
	for _, tier := range cfg.Lock {
		view.Lock = append(view.Lock, lockTierView(tier))
	}
	for _, tier := range cfg.Referral {
		view.Referral = append(view.Referral, referralTierView(tier))
	}
	return view
}

type stakeMetricsView struct {
	TotalStaked      string `json:"totalStaked"`
	TotalRewardsPaid string `json:"totalRewardsPaid"`
	OpenPositions    uint64 `json:"openPositions"`
	PenaltyPool      string `json:"penaltyPool"`
}

type amountView struct {
	Amount string `json:"amount"`
}

type claimSummaryView struct {
	TokenBonus  string `json:"tokenBonus"`
	NativeBonus string `json:"nativeBonus"`
	Credited    string `json:"credited"`
	Minted      string `json:"minted"`
}
