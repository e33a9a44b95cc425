package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus records events as metrics.
type Prometheus struct {
	inserted   prometheus.Counter
	rejected   prometheus.Counter
	duplicates prometheus.Counter
	degenerate prometheus.Counter
	runs       *prometheus.CounterVec

	finiteCells   prometheus.Gauge
	conflictCells prometheus.Histogram
}

// NewPrometheus registers the construction metrics with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		inserted: f.NewCounter(prometheus.CounterOpts{
			Name: "cdt_points_inserted_total",
			Help: "Total number of points inserted into the triangulation",
		}),
		rejected: f.NewCounter(prometheus.CounterOpts{
			Name: "cdt_points_rejected_total",
			Help: "Number of points discarded by the acceptance filter",
		}),
		duplicates: f.NewCounter(prometheus.CounterOpts{
			Name: "cdt_points_duplicate_total",
			Help: "Number of sampled points which were already vertices",
		}),
		degenerate: f.NewCounter(prometheus.CounterOpts{
			Name: "cdt_degenerate_insertions_total",
			Help: "Number of points with an empty conflict region",
		}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cdt_runs_total",
			Help: "Number of finished construction runs",
		}, []string{"converged"}),
		finiteCells: f.NewGauge(prometheus.GaugeOpts{
			Name: "cdt_finite_cells",
			Help: "Current number of finite cells",
		}),
		conflictCells: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cdt_conflict_cells",
			Help:    "Size of the conflict region of inserted points",
			Buckets: prometheus.LinearBuckets(2, 2, 12),
		}),
	}
}

func (p *Prometheus) Seeded(vertices, finiteCells int) {
	p.finiteCells.Set(float64(finiteCells))
}

func (p *Prometheus) Inserted(conflictCells, finiteCells int) {
	p.inserted.Inc()
	p.conflictCells.Observe(float64(conflictCells))
	p.finiteCells.Set(float64(finiteCells))
}

func (p *Prometheus) Rejected(conflictCells int) { p.rejected.Inc() }

func (p *Prometheus) Duplicate() { p.duplicates.Inc() }

func (p *Prometheus) Degenerate(err error) { p.degenerate.Inc() }

func (p *Prometheus) Finished(s Summary) {
	converged := "false"
	if s.Converged {
		converged = "true"
	}
	p.runs.WithLabelValues(converged).Inc()
	p.finiteCells.Set(float64(s.FiniteCells))
}
