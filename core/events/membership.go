package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// TypeMemberRegistered is emitted once per successful registration.
	TypeMemberRegistered = "member.registered"
	// TypeWalletLinked captures a secondary wallet joining a participant.
	TypeWalletLinked = "member.walletLinked"
	// TypeWalletUnlinked captures a secondary wallet leaving a participant.
	TypeWalletUnlinked = "member.walletUnlinked"
	// TypeReferralRecorded captures a new edge in the referral graph.
	TypeReferralRecorded = "member.referralRecorded"
	// TypeActivityChanged is emitted on an activity flag transition.
	TypeActivityChanged = "member.activityChanged"
	// TypeMilestoneAccrued captures a referrer milestone bonus accrual.
	TypeMilestoneAccrued = "member.milestoneAccrued"
	// TypePurchaseExecuted is emitted for every settled purchase.
	TypePurchaseExecuted = "purchase.executed"
	// TypePurchaseTaxRedeemed captures the one-shot whale-tax redemption.
	TypePurchaseTaxRedeemed = "purchase.taxRedeemed"
	// TypeBonusClaimed is emitted for every settled bonus claim.
	TypeBonusClaimed = "claims.bonusClaimed"
	// TypeTokensCredited captures an admin token credit.
	TypeTokensCredited = "claims.tokensCredited"
	// TypeConfigUpdated is emitted when governance replaces a config struct.
	TypeConfigUpdated = "config.updated"
)

// MemberRegistered announces a fresh participant record.
func MemberRegistered(seq uint64, uid string, wallet, referrer common.Address, sponsored bool) *Event {
	attrs := map[string]string{
		"seq":       strconv.FormatUint(seq, 10),
		"uid":       uid,
		"wallet":    formatAddr(wallet),
		"sponsored": strconv.FormatBool(sponsored),
	}
	if referrer != (common.Address{}) {
		attrs["referrer"] = formatAddr(referrer)
	}
	return &Event{Type: TypeMemberRegistered, Attributes: attrs}
}

// WalletLinked announces a wallet joining an existing participant.
func WalletLinked(seq uint64, wallet common.Address) *Event {
	return &Event{Type: TypeWalletLinked, Attributes: map[string]string{
		"seq":    strconv.FormatUint(seq, 10),
		"wallet": formatAddr(wallet),
	}}
}

// WalletUnlinked announces a wallet leaving an existing participant.
func WalletUnlinked(seq uint64, wallet common.Address) *Event {
	return &Event{Type: TypeWalletUnlinked, Attributes: map[string]string{
		"seq":    strconv.FormatUint(seq, 10),
		"wallet": formatAddr(wallet),
	}}
}

// ReferralRecorded announces a new referral edge.
func ReferralRecorded(referrer, referee common.Address, index uint64, reward *big.Int) *Event {
	return &Event{Type: TypeReferralRecorded, Attributes: map[string]string{
		"referrer": formatAddr(referrer),
		"referee":  formatAddr(referee),
		"index":    strconv.FormatUint(index, 10),
		"reward":   formatAmount(reward),
	}}
}

// ActivityChanged announces an active-flag transition.
func ActivityChanged(wallet common.Address, active bool) *Event {
	return &Event{Type: TypeActivityChanged, Attributes: map[string]string{
		"wallet": formatAddr(wallet),
		"active": strconv.FormatBool(active),
	}}
}

// MilestoneAccrued announces a milestone bonus accrual on the referrer.
func MilestoneAccrued(referrer common.Address, milestone uint64, reward *big.Int) *Event {
	return &Event{Type: TypeMilestoneAccrued, Attributes: map[string]string{
		"referrer":  formatAddr(referrer),
		"milestone": strconv.FormatUint(milestone, 10),
		"reward":    formatAmount(reward),
	}}
}

// PurchaseExecuted announces a settled token purchase.
func PurchaseExecuted(buyer common.Address, payment, gross, tax *big.Int) *Event {
	return &Event{Type: TypePurchaseExecuted, Attributes: map[string]string{
		"buyer":   formatAddr(buyer),
		"payment": formatAmount(payment),
		"gross":   formatAmount(gross),
		"tax":     formatAmount(tax),
	}}
}

// PurchaseTaxRedeemed announces the one-shot whale-tax payout.
func PurchaseTaxRedeemed(buyer common.Address, amount *big.Int) *Event {
	return &Event{Type: TypePurchaseTaxRedeemed, Attributes: map[string]string{
		"buyer":  formatAddr(buyer),
		"amount": formatAmount(amount),
	}}
}

// BonusClaimed announces a settled claim against one of the bonus meters.
func BonusClaimed(wallet common.Address, kind string, amount *big.Int) *Event {
	return &Event{Type: TypeBonusClaimed, Attributes: map[string]string{
		"wallet": formatAddr(wallet),
		"kind":   kind,
		"amount": formatAmount(amount),
	}}
}

// TokensCredited announces an admin credit against a participant.
func TokensCredited(granter, wallet common.Address, amount *big.Int, memo string) *Event {
	attrs := map[string]string{
		"granter": formatAddr(granter),
		"wallet":  formatAddr(wallet),
		"amount":  formatAmount(amount),
	}
	if memo != "" {
		attrs["memo"] = memo
	}
	return &Event{Type: TypeTokensCredited, Attributes: attrs}
}

// ConfigUpdated announces a governance configuration replacement.
func ConfigUpdated(scope string) *Event {
	return &Event{Type: TypeConfigUpdated, Attributes: map[string]string{
		"scope": scope,
	}}
}
