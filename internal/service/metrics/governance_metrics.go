package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	GovernanceComposite = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scalpgov",
			Subsystem: "governance",
			Name:      "composite_score",
			Help:      "Distribution of governance composite scores",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"pair"},
	)

	ExecutionQuality = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scalpgov",
			Subsystem: "execution",
			Name:      "quality_score",
			Help:      "Distribution of execution quality scores (0-100)",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"pair"},
	)

	ProtectionLevel = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scalpgov",
			Subsystem: "execution",
			Name:      "protection_level",
			Help:      "Protection escalation level (0 normal, 1 elevated, 2 critical)",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(GovernanceComposite, ExecutionQuality, ProtectionLevel)
	})
}
