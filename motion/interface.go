package motion

import "time"

// Sensor is the rotation-rate hardware collaborator.
type Sensor interface {
	Available() bool
	Start(interval time.Duration, fn func(Sample)) error
	Stop()
}

type Interface interface {
	Start() error
	Stop()
}
