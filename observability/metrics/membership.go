package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// MembershipMetrics tracks the economic activity flowing through the module
// engines: purchases, claims, referral recording and staking totals.
type MembershipMetrics struct {
	registrations *prometheus.CounterVec
	referrals     prometheus.Counter
	purchases     *prometheus.CounterVec
	whaleTax      prometheus.Counter
	claims        *prometheus.CounterVec
	stakeOps      *prometheus.CounterVec
	openPositions prometheus.Gauge
}

var (
	membershipOnce     sync.Once
	membershipRegistry *MembershipMetrics
)

// Membership returns the lazily-initialised metrics registry shared by the
// RPC layer and the daemon.
func Membership() *MembershipMetrics {
	membershipOnce.Do(func() {
		membershipRegistry = &MembershipMetrics{
			registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "fnt",
				Subsystem: "membership",
				Name:      "registrations_total",
				Help:      "Participant registrations segmented by mode.",
			}, []string{"mode"}),
			referrals: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "fnt",
				Subsystem: "membership",
				Name:      "referrals_total",
				Help:      "Referral edges recorded.",
			}),
			purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "fnt",
				Subsystem: "purchase",
				Name:      "executions_total",
				Help:      "Purchase executions segmented by outcome reason.",
			}, []string{"reason"}),
			whaleTax: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "fnt",
				Subsystem: "purchase",
				Name:      "whale_tax_events_total",
				Help:      "Purchases that crossed the whale-tax threshold.",
			}),
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "fnt",
				Subsystem: "claims",
				Name:      "settlements_total",
				Help:      "Bonus claim settlements segmented by kind.",
			}, []string{"kind"}),
			stakeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "fnt",
				Subsystem: "staking",
				Name:      "operations_total",
				Help:      "Staking operations segmented by action.",
			}, []string{"action"}),
			openPositions: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "fnt",
				Subsystem: "staking",
				Name:      "open_positions",
				Help:      "Currently open staking positions.",
			}),
		}
		prometheus.MustRegister(
			membershipRegistry.registrations,
			membershipRegistry.referrals,
			membershipRegistry.purchases,
			membershipRegistry.whaleTax,
			membershipRegistry.claims,
			membershipRegistry.stakeOps,
			membershipRegistry.openPositions,
		)
	})
	return membershipRegistry
}

// ObserveRegistration counts one registration by mode ("referral",
// "sponsored" or "auto").
func (m *MembershipMetrics) ObserveRegistration(mode string) {
	if m == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	m.registrations.WithLabelValues(mode).Inc()
}

// ObserveReferral counts one recorded referral edge.
func (m *MembershipMetrics) ObserveReferral() {
	if m == nil {
		return
	}
	m.referrals.Inc()
}

// ObservePurchase counts one purchase attempt by its outcome reason; taxed
// purchases additionally bump the whale-tax counter.
func (m *MembershipMetrics) ObservePurchase(reason string, taxed bool) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.purchases.WithLabelValues(reason).Inc()
	if taxed {
		m.whaleTax.Inc()
	}
}

// ObserveClaim counts one settled claim by kind.
func (m *MembershipMetrics) ObserveClaim(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.claims.WithLabelValues(kind).Inc()
}

// ObserveStakeOp counts one staking operation by action ("create", "claim",
// "add", "exit").
func (m *MembershipMetrics) ObserveStakeOp(action string) {
	if m == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	m.stakeOps.WithLabelValues(action).Inc()
}

// SetOpenPositions publishes the open-position gauge.
func (m *MembershipMetrics) SetOpenPositions(count float64) {
	if m == nil {
		return
	}
	m.openPositions.Set(count)
}
