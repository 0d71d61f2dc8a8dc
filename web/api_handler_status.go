package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/render"
	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/models"
	"github.com/hostpulse/hostpulse/store"
)

type uptimeResponse struct {
	Hostname         string  `json:"hostname"`
	UptimeSeconds    uint64  `json:"uptime_seconds"`
	Uptime           string  `json:"uptime"`
	WebUptimeSeconds float64 `json:"web_uptime_seconds"`
}

// handleGetUptime handles GET /uptime with live host figures, it does not
// depend on recorded samples.
func (al *APIListener) handleGetUptime(w http.ResponseWriter, req *http.Request) {
	uptime, err := al.probe.Uptime(req.Context())
	if err != nil {
		al.jsonErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	hostname, err := al.probe.Hostname()
	if err != nil {
		al.Errorf("hostname lookup: %v", err)
		hostname = "unknown"
	}

	al.writeJSONResponse(w, http.StatusOK, NewSuccessPayload(uptimeResponse{
		Hostname:         hostname,
		UptimeSeconds:    uptime,
		Uptime:           formatUptime(time.Duration(uptime) * time.Second),
		WebUptimeSeconds: time.Since(al.started).Seconds(),
	}))
}

type configResponse struct {
	IntervalSeconds float64                     `json:"interval_seconds"`
	RetentionDays   float64                     `json:"retention_days"`
	Windows         []string                    `json:"windows"`
	Metrics         []string                    `json:"metrics"`
	MaxPoints       int                         `json:"max_points"`
	DiskPaths       []string                    `json:"disk_paths"`
	NetInterfaces   []string                    `json:"net_interfaces,omitempty"`
	DiskIODevices   []string                    `json:"disk_io_devices,omitempty"`
	DisabledMetrics []string                    `json:"disabled_metrics,omitempty"`
	ChartRanges     map[string]config.AxisRange `json:"chart_ranges,omitempty"`
}

// handleGetConfig handles GET /config, echoing the effective settings the
// dashboard needs. Paths and TLS material stay private.
func (al *APIListener) handleGetConfig(w http.ResponseWriter, req *http.Request) {
	mon := al.conf.Monitoring

	windows := make([]string, 0, len(store.Windows))
	for _, win := range store.Windows {
		windows = append(windows, win.String())
	}
	metrics := make([]string, 0, len(render.Metrics))
	for _, m := range render.Metrics {
		metrics = append(metrics, m.String())
	}

	al.writeJSONResponse(w, http.StatusOK, NewSuccessPayload(configResponse{
		IntervalSeconds: mon.Interval.Seconds(),
		RetentionDays:   mon.Retention.Hours() / 24,
		Windows:         windows,
		Metrics:         metrics,
		MaxPoints:       al.conf.Web.MaxPoints,
		DiskPaths:       mon.DiskPaths,
		NetInterfaces:   mon.NetInterfaces,
		DiskIODevices:   mon.DiskIODevices,
		DisabledMetrics: mon.DisabledMetrics,
		ChartRanges:     al.conf.Web.ChartRanges,
	}))
}

type statusResponse struct {
	Latest  *models.Sample       `json:"latest,omitempty"`
	Storage *store.StorageStatus `json:"storage"`
}

// handleGetStatus handles GET /status: the newest sample plus storage
// counters. An empty store is a valid status, not an error.
func (al *APIListener) handleGetStatus(w http.ResponseWriter, req *http.Request) {
	storage, err := al.reader.Status()
	if err != nil {
		al.jsonErrorResponse(w, http.StatusInternalServerError, err)
		return
	}

	latest, err := al.reader.Latest()
	if err != nil && !errors.Is(err, store.ErrNoSamples) {
		al.jsonErrorResponse(w, http.StatusInternalServerError, err)
		return
	}

	al.writeJSONResponse(w, http.StatusOK, NewSuccessPayload(statusResponse{
		Latest:  latest,
		Storage: storage,
	}))
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
