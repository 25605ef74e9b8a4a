package server

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/foliotracker/engine/internal/database"
	"github.com/foliotracker/engine/internal/marketdata"
	"github.com/foliotracker/engine/internal/scheduler"
)

// SystemHandlers serves health and status endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	db        *database.DB
	scheduler *scheduler.Scheduler
	clock     marketdata.Clock
	startedAt time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, db *database.DB, sched *scheduler.Scheduler, clock marketdata.Clock) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		db:        db,
		scheduler: sched,
		clock:     clock,
		startedAt: clock.Now(),
	}
}

// HandleHealth is the liveness probe: process up, database reachable
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	if err := h.db.Conn().Ping(); err != nil {
		h.log.Error().Err(err).Msg("Health check database ping failed")
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	h.writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": h.clock.Now().UTC().Format(time.RFC3339),
	})
}

// HandleStatus reports process and host statistics
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.systemStats()

	var dbSizeMB float64
	if info, err := os.Stat(h.db.Path()); err == nil {
		dbSizeMB = float64(info.Size()) / 1024 / 1024
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": int(h.clock.Now().Sub(h.startedAt).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"database_mb":    dbSizeMB,
		"go_version":     runtime.Version(),
	})
}

// systemStats reads host CPU and memory usage. The 100ms CPU sample keeps
// the endpoint fast enough for dashboard polling.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
