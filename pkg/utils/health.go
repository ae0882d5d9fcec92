package utils

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck reports the state of one component and a short explanation.
type HealthCheck func() (HealthStatus, string)

type ComponentHealth struct {
	Name      string       `json:"name"`
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	LastCheck time.Time    `json:"last_check"`
}

type HealthReport struct {
	Status     HealthStatus      `json:"status"`
	Uptime     string            `json:"uptime"`
	Components []ComponentHealth `json:"components"`
}

type HealthMonitor struct {
	mutex     sync.Mutex
	startTime time.Time
	checks    map[string]HealthCheck
	logger    *zap.Logger
}

func NewHealthMonitor(logger *zap.Logger) *HealthMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthMonitor{
		startTime: time.Now(),
		checks:    make(map[string]HealthCheck),
		logger:    logger,
	}
}

func (hm *HealthMonitor) RegisterComponent(name string, check HealthCheck) {
	hm.mutex.Lock()
	defer hm.mutex.Unlock()
	hm.checks[name] = check
}

// Report runs every check and folds the results into one status: unhealthy
// wins over degraded, which wins over healthy.
func (hm *HealthMonitor) Report() HealthReport {
	hm.mutex.Lock()
	names := make([]string, 0, len(hm.checks))
	for name := range hm.checks {
		names = append(names, name)
	}
	checks := make(map[string]HealthCheck, len(hm.checks))
	for k, v := range hm.checks {
		checks[k] = v
	}
	hm.mutex.Unlock()
	sort.Strings(names)

	report := HealthReport{
		Status: StatusHealthy,
		Uptime: time.Since(hm.startTime).Round(time.Second).String(),
	}
	for _, name := range names {
		status, msg := checks[name]()
		report.Components = append(report.Components, ComponentHealth{
			Name:      name,
			Status:    status,
			Message:   msg,
			LastCheck: time.Now(),
		})
		switch status {
		case StatusUnhealthy:
			report.Status = StatusUnhealthy
			hm.logger.Warn("component unhealthy", zap.String("component", name), zap.String("reason", msg))
		case StatusDegraded:
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
			hm.logger.Debug("component degraded", zap.String("component", name), zap.String("reason", msg))
		}
	}
	return report
}

// Handler serves the health report as JSON. Unhealthy reports use status 503.
func (hm *HealthMonitor) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := hm.Report()
		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(report); err != nil {
			hm.logger.Warn("write health report", zap.Error(err))
		}
	})
}
