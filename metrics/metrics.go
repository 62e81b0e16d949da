// Package metrics exposes Prometheus counters and gauges for
// Coordinator activity: phase transitions, rejected messages, and
// round outcomes, the same concerns the teacher's
// activation/metrics/metrics.go instruments for PoST/PoET activity.
// The teacher wraps client_golang behind its own internal metrics
// helper package, which isn't part of this module's dependency
// closure; this package calls prometheus.NewCounterVec/NewCounter/NewGauge
// directly instead, the same underlying library, registered against
// the default registerer exactly as client_golang examples do.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "psyche_coordinator"

var (
	// PhaseTransitions counts every committed phase change, labeled by
	// the phase entered.
	PhaseTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "phase_transitions_total",
		Help:      "number of phase transitions committed, by destination phase",
	}, []string{"to"})

	// RejectedMessages counts operations rejected without a state
	// change, labeled by error kind.
	RejectedMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_messages_total",
		Help:      "number of rejected operations, by error kind",
	}, []string{"reason"})

	// RoundsCompleted counts rounds that left RoundTrain, labeled by how:
	// "quorum" (fast path: quorum plus coverage) or "timeout".
	RoundsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_completed_total",
		Help:      "number of rounds closed, by close reason",
	}, []string{"reason"})

	// ClientsEvicted counts clients removed for inactivity.
	ClientsEvicted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_evicted_total",
		Help:      "number of clients marked exited for inactivity",
	})

	// ActiveClients reports the current active client count.
	ActiveClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_clients",
		Help:      "current number of non-exited clients",
	})

	// CurrentStep reports the current progress step.
	CurrentStep = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "progress_step",
		Help:      "current progress.step value",
	})
)

// Register adds every collector in this package to reg. The reference
// CLI host calls this once at startup against prometheus.DefaultRegisterer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		PhaseTransitions,
		RejectedMessages,
		RoundsCompleted,
		ClientsEvicted,
		ActiveClients,
		CurrentStep,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
