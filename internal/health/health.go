package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"audiotable/internal/capacity"
	"audiotable/internal/metrics"
)

// degradedLatency marks a dependency as slow but working
const degradedLatency = 200 * time.Millisecond

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status  string           `json:"status"`
	DB      DependencyStatus `json:"db"`
	Storage DependencyStatus `json:"storage"`
}

// DependencyStatus represents the status of a dependency
type DependencyStatus struct {
	Status      string  `json:"status"`
	LatencyMs   int64   `json:"latency_ms"`
	UsedPercent float64 `json:"used_percent,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// Pinger is anything that can check its database connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker probes the database and the audio directory
type Checker struct {
	db       Pinger
	audioDir string
	metrics  *metrics.Metrics
	capacity *capacity.Probe
	timeout  time.Duration
}

// NewChecker creates a checker. m may be nil.
func NewChecker(db Pinger, audioDir string, m *metrics.Metrics) *Checker {
	return &Checker{
		db:       db,
		audioDir: audioDir,
		metrics:  m,
		capacity: capacity.NewProbe(capacity.DefaultThresholds()),
		timeout:  5 * time.Second,
	}
}

// Check runs every probe and combines them into one response
func (h *Checker) Check(ctx context.Context) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	dbStatus := h.checkDB(ctx)
	storageStatus := h.checkStorage()

	h.metrics.SetHealth("db", dbStatus.Status != "down")
	h.metrics.SetHealth("storage", storageStatus.Status != "down")

	status := "ok"
	if dbStatus.Status == "down" || storageStatus.Status == "down" {
		status = "down"
	} else if dbStatus.Status == "degraded" || storageStatus.Status == "degraded" {
		status = "degraded"
	}

	return HealthResponse{
		Status:  status,
		DB:      dbStatus,
		Storage: storageStatus,
	}
}

func (h *Checker) checkDB(ctx context.Context) DependencyStatus {
	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start)

	switch {
	case err != nil:
		return DependencyStatus{Status: "down", LatencyMs: latency.Milliseconds(), Message: err.Error()}
	case latency > degradedLatency:
		return DependencyStatus{Status: "degraded", LatencyMs: latency.Milliseconds()}
	}
	return DependencyStatus{Status: "ok", LatencyMs: latency.Milliseconds()}
}

func (h *Checker) checkStorage() DependencyStatus {
	start := time.Now()
	info, err := os.Stat(h.audioDir)
	latency := time.Since(start).Milliseconds()

	switch {
	case err != nil:
		return DependencyStatus{Status: "down", LatencyMs: latency, Message: err.Error()}
	case !info.IsDir():
		return DependencyStatus{Status: "down", LatencyMs: latency, Message: "audio dir is not a directory"}
	}

	status := DependencyStatus{Status: "ok", LatencyMs: latency}
	if h.capacity == nil {
		return status
	}

	// A failed usage probe does not make the directory unusable
	usage, err := h.capacity.Usage(h.audioDir)
	if err != nil {
		return status
	}
	h.metrics.SetStorageUsage(usage.UsedPercent)
	status.UsedPercent = usage.UsedPercent

	switch usage.Status {
	case capacity.StatusAlert:
		status.Status = "degraded"
		status.Message = fmt.Sprintf("disk %.0f%% full", usage.UsedPercent)
	case capacity.StatusWarning:
		status.Message = fmt.Sprintf("disk %.0f%% full", usage.UsedPercent)
	}
	return status
}

// RegisterHealthRoutes registers the health check routes
func RegisterHealthRoutes(app fiber.Router, checker *Checker) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		resp := checker.Check(c.UserContext())

		if resp.Status == "ok" {
			c.Status(fiber.StatusOK)
		} else {
			c.Status(fiber.StatusServiceUnavailable)
		}

		c.Set("Cache-Control", "no-store")
		return c.JSON(resp)
	})
}
