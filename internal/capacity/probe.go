package capacity

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
)

// Status values reported for a probed path
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusAlert   = "alert"
)

// UsageInfo holds information about disk usage
type UsageInfo struct {
	Path        string
	Total       uint64  // Total bytes
	Used        uint64  // Used bytes
	Free        uint64  // Free bytes
	UsedPercent float64 // Percentage used (0-100)
	Status      string
	Timestamp   time.Time
}

// Thresholds defines warning and alert thresholds in percent used
type Thresholds struct {
	WarnPercent  float64
	AlertPercent float64
}

// DefaultThresholds warns at 80% and alerts at 90%
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarnPercent:  80.0,
		AlertPercent: 90.0,
	}
}

// Probe reports how full the filesystem holding a path is
type Probe struct {
	thresholds Thresholds
	usage      func(path string) (*disk.UsageStat, error)
}

// NewProbe creates a probe with the given thresholds
func NewProbe(thresholds Thresholds) *Probe {
	return &Probe{
		thresholds: thresholds,
		usage:      disk.Usage,
	}
}

// Usage retrieves usage information for the filesystem holding path
func (p *Probe) Usage(path string) (UsageInfo, error) {
	stat, err := p.usage(path)
	if err != nil {
		return UsageInfo{}, fmt.Errorf("failed to get disk usage for path %s: %w", path, err)
	}

	return UsageInfo{
		Path:        path,
		Total:       stat.Total,
		Used:        stat.Used,
		Free:        stat.Free,
		UsedPercent: stat.UsedPercent,
		Status:      p.evaluateStatus(stat.UsedPercent),
		Timestamp:   time.Now(),
	}, nil
}

func (p *Probe) evaluateStatus(usedPercent float64) string {
	switch {
	case usedPercent >= p.thresholds.AlertPercent:
		return StatusAlert
	case usedPercent >= p.thresholds.WarnPercent:
		return StatusWarning
	}
	return StatusOK
}
