package system

import (
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ivlev/slideshow/internal/logger"
)

// DeviceType is a coarse capability tier.
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
)

// Capabilities is what a display host reports about itself. The timeline
// only looks at ReducedMotion; the rest is for renderers choosing media.
type Capabilities struct {
	DeviceType      DeviceType `json:"deviceType"`
	ConnectionSpeed string     `json:"connectionSpeed"` // slow-2g, 2g, 3g, 4g
	ReducedMotion   bool       `json:"reducedMotion"`
	CPUs            int        `json:"cpus"`
	MemoryMB        uint64     `json:"memoryMB"`
}

// Provider supplies capabilities on demand.
type Provider interface {
	Capabilities() Capabilities
}

// Static always returns the same capabilities.
type Static Capabilities

func (s Static) Capabilities() Capabilities {
	return Capabilities(s)
}

// HostProvider probes the machine the slideshow is running on.
type HostProvider struct {
	// LoadThreshold is the 1-minute load per CPU above which motion is
	// reduced. Zero means 1.5.
	LoadThreshold float64
	// Getenv is os.Getenv unless replaced in tests.
	Getenv func(string) string
}

// NewHostProvider returns a provider reading the real host.
func NewHostProvider() *HostProvider {
	return &HostProvider{LoadThreshold: 1.5, Getenv: os.Getenv}
}

// Capabilities probes CPU, memory and load. Probe failures fall back to
// desktop defaults and are logged.
func (h *HostProvider) Capabilities() Capabilities {
	getenv := h.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	caps := Capabilities{
		DeviceType:      DeviceDesktop,
		ConnectionSpeed: "4g",
	}

	if n, err := cpu.Counts(true); err == nil {
		caps.CPUs = n
	} else {
		logger.Warn("cpu probe failed", logger.ErrorField(err))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		caps.MemoryMB = vm.Total / (1024 * 1024)
	} else {
		logger.Warn("memory probe failed", logger.ErrorField(err))
	}
	caps.DeviceType = Classify(caps.CPUs, caps.MemoryMB)

	threshold := h.LoadThreshold
	if threshold <= 0 {
		threshold = 1.5
	}
	if avg, err := load.Avg(); err == nil && caps.CPUs > 0 {
		if avg.Load1/float64(caps.CPUs) > threshold {
			caps.ReducedMotion = true
			logger.Info("host overloaded, reducing motion",
				logger.Float64("load1", avg.Load1), logger.Int("cpus", caps.CPUs))
		}
	}

	if v := getenv("SLIDESHOW_CONNECTION"); v != "" {
		caps.ConnectionSpeed = strings.ToLower(v)
	}
	if v := getenv("SLIDESHOW_REDUCED_MOTION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			caps.ReducedMotion = b
		}
	}
	return caps
}

// Classify maps raw host resources to a device tier. Unknown values (zero)
// count as desktop.
func Classify(cpus int, memoryMB uint64) DeviceType {
	switch {
	case cpus == 0 && memoryMB == 0:
		return DeviceDesktop
	case (cpus > 0 && cpus <= 2) || (memoryMB > 0 && memoryMB < 2048):
		return DeviceMobile
	case (cpus > 0 && cpus <= 4) || (memoryMB > 0 && memoryMB < 4096):
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// SlowConnection reports whether media should be downgraded.
func (c Capabilities) SlowConnection() bool {
	switch c.ConnectionSpeed {
	case "slow-2g", "2g", "3g":
		return true
	}
	return false
}
