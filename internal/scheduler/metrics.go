package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "due_task_sweep_runs_total",
			Help: "Due task sweep runs by result",
		},
		[]string{"result"},
	)
	SweepNotifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "due_task_sweep_notifications_total",
			Help: "Task Due notifications by outcome",
		},
		[]string{"outcome"},
	)
	SweepDueTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "due_task_sweep_due_tasks",
			Help: "Overdue tasks found by the last sweep",
		},
	)
	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "due_task_sweep_duration_seconds",
			Help:    "Duration of due task sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(SweepRuns)
	prometheus.MustRegister(SweepNotifications)
	prometheus.MustRegister(SweepDueTasks)
	prometheus.MustRegister(SweepDuration)
}
