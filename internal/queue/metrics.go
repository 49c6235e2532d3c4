package queue

import (
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	queueTasks = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "nuvme",
		Subsystem: "queue",
		Name:      "tasks",
		Help:      "Tasks per queue and state as last seen by the ops endpoint.",
	}, []string{"queue", "state"})
	taskResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nuvme",
		Subsystem: "queue",
		Name:      "task_results_total",
		Help:      "Webhook task outcomes by task type.",
	}, []string{"type", "result"})
)

func init() {
	prometheus.MustRegister(queueTasks, taskResults)
}

func countResult(t *asynq.Task, result string) {
	taskResults.WithLabelValues(t.Type(), result).Inc()
}

func observeQueue(info *asynq.QueueInfo) {
	for state, n := range map[string]int{
		"pending":   info.Pending,
		"active":    info.Active,
		"scheduled": info.Scheduled,
		"retry":     info.Retry,
		"archived":  info.Archived,
	} {
		queueTasks.WithLabelValues(info.Queue, state).Set(float64(n))
	}
}
