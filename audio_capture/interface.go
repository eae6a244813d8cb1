package audio_capture

import (
	"time"

	"github.com/go-audio/audio"
)

type Interface interface {
	Start() error
	Stop()
	Listen(quietTime, maxTime time.Duration, stop <-chan struct{}) (audio.Buffer, error)
	Close()
}
