package motion

import (
	"errors"
	"fmt"
	"log"
	"time"

	"object-scale-control/command"
)

// ErrSensorUnavailable means no rotation sensor exists on this machine. The
// caller reports it once and leaves the motion channel disabled; the voice and
// button channels are unaffected.
var ErrSensorUnavailable = errors.New("rotation sensor unavailable")

// DefaultInterval is the sampling cadence. The sensor may be able to deliver
// faster; we don't ask it to.
const DefaultInterval = 100 * time.Millisecond

type monitorImpl struct {
	sensor     Sensor
	classifier *Classifier
	router     command.Interface
	interval   time.Duration
	running    bool
}

type Config struct {
	Sensor    Sensor
	Router    command.Interface
	Threshold float64
	Interval  time.Duration
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Sensor == nil {
		return nil, fmt.Errorf("sensor is nil")
	}

	if cfg.Router == nil {
		return nil, fmt.Errorf("router is nil")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &monitorImpl{
		sensor:     cfg.Sensor,
		classifier: NewClassifier(cfg.Threshold),
		router:     cfg.Router,
		interval:   interval,
	}, nil
}

func (m *monitorImpl) Start() error {
	if m.running {
		return nil
	}

	if !m.sensor.Available() {
		return ErrSensorUnavailable
	}

	err := m.sensor.Start(m.interval, func(sample Sample) {
		// Hand off to the router's queue; never touch the scale from the
		// sensor's delivery goroutine.
		m.router.Apply(m.classifier.Classify(sample), command.SourceMotion)
	})
	if err != nil {
		return err
	}

	m.running = true

	log.Printf("motion monitor started at %v cadence", m.interval)

	return nil
}

func (m *monitorImpl) Stop() {
	if !m.running {
		return
	}

	m.sensor.Stop()
	m.running = false
}
