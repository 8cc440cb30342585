package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/mag7labs/riskengine/internal/database"
)

// SystemHandlers handles health and system monitoring endpoints.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	portfolioDB *database.DB
	historyDB   *database.DB
	cacheDB     *database.DB
}

// NewSystemHandlers creates the system handlers
func NewSystemHandlers(log zerolog.Logger, portfolioDB, historyDB, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		portfolioDB: portfolioDB,
		historyDB:   historyDB,
		cacheDB:     cacheDB,
	}
}

// HandleHealth handles GET /health and GET /api/health. Pings every
// database so a wedged storage layer shows up here first.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	databases := map[string]string{}
	healthy := true

	for name, db := range map[string]*database.DB{
		"portfolio": h.portfolioDB,
		"history":   h.historyDB,
		"cache":     h.cacheDB,
	} {
		if db == nil {
			continue
		}
		if err := db.Conn().Ping(); err != nil {
			databases[name] = "error: " + err.Error()
			healthy = false
		} else {
			databases[name] = "ok"
		}
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"databases": databases,
		"uptime":    time.Since(h.startupTime).Round(time.Second).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleSystemStats handles GET /api/system/stats
func (h *SystemHandlers) HandleSystemStats(w http.ResponseWriter, r *http.Request) {
	cpuAvg := 0.0
	if percentages, err := cpu.Percent(100*time.Millisecond, false); err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(percentages) > 0 {
		cpuAvg = percentages[0]
	}

	memUsedPct := 0.0
	memUsedMB := uint64(0)
	if memStat, err := mem.VirtualMemory(); err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	} else {
		memUsedPct = memStat.UsedPercent
		memUsedMB = memStat.Used / 1024 / 1024
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"cpu_percent":    cpuAvg,
			"memory_percent": memUsedPct,
			"memory_used_mb": memUsedMB,
			"uptime":         time.Since(h.startupTime).Round(time.Second).String(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
