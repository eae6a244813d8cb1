package motion

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const iioRoot = "/sys/bus/iio/devices"

// iioSensor polls a gyroscope exposed through the Linux industrial I/O sysfs
// interface. Raw angular velocity counts are multiplied by the device scale
// to get rad/s.
type iioSensor struct {
	mu      sync.Mutex
	dir     string
	scale   float64
	stop    chan struct{}
	running bool
}

// NewIIOSensor scans sysfs for the first device exposing angular velocity
// channels. A machine without a gyro yields a sensor that reports unavailable.
func NewIIOSensor() Sensor {
	s := &iioSensor{scale: 1.0}

	entries, err := os.ReadDir(iioRoot)
	if err != nil {
		return s
	}

	for _, entry := range entries {
		dir := filepath.Join(iioRoot, entry.Name())

		if _, err := os.Stat(filepath.Join(dir, "in_anglvel_x_raw")); err != nil {
			continue
		}

		s.dir = dir

		if raw, err := os.ReadFile(filepath.Join(dir, "in_anglvel_scale")); err == nil {
			if v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64); err == nil && v > 0 {
				s.scale = v
			}
		}

		break
	}

	return s
}

func (s *iioSensor) Available() bool {
	return s.dir != ""
}

func (s *iioSensor) Start(interval time.Duration, fn func(Sample)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.stop = make(chan struct{})
	s.running = true

	go s.poll(interval, fn, s.stop)

	return nil
}

func (s *iioSensor) poll(interval time.Duration, fn func(Sample), stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fn(Sample{
				X:  s.readAxis("x"),
				Y:  s.readAxis("y"),
				Z:  s.readAxis("z"),
				At: time.Now(),
			})
		}
	}
}

func (s *iioSensor) readAxis(axis string) float64 {
	raw, err := os.ReadFile(filepath.Join(s.dir, "in_anglvel_"+axis+"_raw"))
	if err != nil {
		return 0
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0
	}

	return v * s.scale
}

func (s *iioSensor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stop)
	s.running = false
}
