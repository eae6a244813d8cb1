package motion

import (
	"time"

	"object-scale-control/command"
)

// Sample is one instantaneous rotation-rate reading in rad/s. Samples are
// classified as they arrive and then discarded.
type Sample struct {
	X  float64
	Y  float64
	Z  float64
	At time.Time
}

// DefaultThreshold is the rotation rate, about the vertical axis, above which
// a sample counts as a deliberate twist rather than hand jitter.
const DefaultThreshold = 0.5

type Classifier struct {
	threshold float64
}

func NewClassifier(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	return &Classifier{
		threshold: threshold,
	}
}

// Classify maps one sample to a command using the vertical-axis rate. The
// comparison is strict, so a rate of exactly ±threshold yields None.
func (c *Classifier) Classify(sample Sample) command.Command {
	if sample.Z > c.threshold {
		return command.Increase
	}

	if sample.Z < -c.threshold {
		return command.Decrease
	}

	return command.None
}
