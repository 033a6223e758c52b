package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Evaluate calls by result: ok, invalid, error.
	EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "detox_evaluations_total",
		Help: "Challenge evaluations by result.",
	}, []string{"result"})

	ChallengeDaysPassedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "detox_challenge_days_passed_total",
		Help: "Qualifying days recorded per challenge.",
	}, []string{"challenge"})

	RewardsIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "detox_rewards_issued_total",
		Help: "Challenge completions that credited points.",
	}, []string{"challenge"})

	RewardPointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "detox_reward_points_total",
		Help: "Points credited by challenge completions.",
	})

	// Scans by outcome: detected, empty, error.
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "detox_scans_total",
		Help: "Screenshot scans by outcome.",
	}, []string{"outcome"})

	EvaluateDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "detox_evaluate_duration_seconds",
		Help:    "Duration of one atomic evaluate unit.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		EvaluationsTotal,
		ChallengeDaysPassedTotal,
		RewardsIssuedTotal,
		RewardPointsTotal,
		ScansTotal,
		EvaluateDurationSeconds,
	)
}
