package queue

import (
	"net/http"
	"sort"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/nuvme-configurator/internal/common"
)

// Inspector is the subset of *asynq.Inspector used by StatsHandler.
type Inspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// StatsHandler reports queue depth and refreshes the depth gauges.
type StatsHandler struct {
	Inspector Inspector
}

type queueStats struct {
	Queue     string `json:"queue"`
	Size      int    `json:"size"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Paused    bool   `json:"paused"`
}

// Stats handles GET /api/v1/ops/queues.
func (h *StatsHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	if h == nil || h.Inspector == nil {
		common.WriteError(w, common.Unavailable("background queue is not enabled", nil))
		return
	}
	names, err := h.Inspector.Queues()
	if err != nil {
		common.WriteError(w, common.Unavailable("queue inspector unavailable", err))
		return
	}
	sort.Strings(names)
	out := make([]queueStats, 0, len(names))
	for _, name := range names {
		info, err := h.Inspector.GetQueueInfo(name)
		if err != nil {
			common.WriteError(w, common.Unavailable("queue inspector unavailable", err))
			return
		}
		observeQueue(info)
		out = append(out, queueStats{
			Queue:     info.Queue,
			Size:      info.Size,
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
			Archived:  info.Archived,
			Processed: info.Processed,
			Failed:    info.Failed,
			Paused:    info.Paused,
		})
	}
	common.Data(w, http.StatusOK, out)
}
