package narrative

import "github.com/prometheus/client_golang/prometheus"

var generationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "discovery",
		Name:      "narrative_generations_total",
		Help:      "Narrative generation attempts by outcome",
	},
	[]string{"outcome"}, // "generated" / "placeholder"
)

// RegisterMetrics registers the narrative collectors. Call once from main.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(generationsTotal)
}
