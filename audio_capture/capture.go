package audio_capture

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"

	"object-scale-control/ring_buffer"
	"object-scale-control/vad"
)

const (
	sampleRate = 16000
	frameSize  = 1024
	preRollLen = 8196
)

var (
	// ErrInterrupted means Listen was cancelled via the stop channel before an
	// utterance completed.
	ErrInterrupted = errors.New("audio capture interrupted")

	// ErrBusy means a stream is already open. Exactly one microphone stream
	// exists per process; the session manager releases it before reacquiring.
	ErrBusy = errors.New("audio capture already running")
)

type captureImpl struct {
	mu      sync.Mutex
	fileSys afero.Fs
	dump    bool
	stream  *portaudio.Stream
	in      []int16
}

type Config struct {
	FileSys afero.Fs
	// DumpUtterances writes each captured utterance as a WAV file, for
	// inspecting what the recognizer actually heard.
	DumpUtterances bool
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing audio: %w", err)
	}

	return &captureImpl{
		fileSys: cfg.FileSys,
		dump:    cfg.DumpUtterances,
		in:      make([]int16, frameSize),
	}, nil
}

func (c *captureImpl) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return ErrBusy
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(c.in), c.in)
	if err != nil {
		return err
	}

	if err := stream.Start(); err != nil {
		stream.Close()

		return err
	}

	c.stream = stream

	return nil
}

func (c *captureImpl) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return
	}

	if err := c.stream.Stop(); err != nil {
		log.Printf("error stopping stream: %v", err)
	}

	c.stream.Close()
	c.stream = nil
}

// Listen records one utterance: it waits for a jump in spectral flux, collects
// samples until a quiet period or maxTime elapses, and returns the utterance
// with the pre-roll prepended. Closing stop aborts promptly with
// ErrInterrupted.
func (c *captureImpl) Listen(quietTime, maxTime time.Duration, stop <-chan struct{}) (audio.Buffer, error) {
	c.mu.Lock()
	stream := c.stream
	c.mu.Unlock()

	if stream == nil {
		return nil, fmt.Errorf("capture not started")
	}

	var (
		heardSomething bool
		quiet          bool
		quietStart     time.Time
		lastFlux       float64
		startTime      time.Time
	)

	detector := vad.New(len(c.in))

	ringBuffer := ring_buffer.New(preRollLen)

	intBuffer := make([]int, 0)

	for {
		select {
		case <-stop:
			return nil, ErrInterrupted
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, err
		}

		// keep a buffer of the first bit of audio before detection
		if !heardSomething {
			ringBuffer.Add(c.in)
		}

		if heardSomething {
			if startTime.IsZero() {
				startTime = time.Now()
			}

			for _, sample := range c.in {
				intBuffer = append(intBuffer, int(sample))
			}

			if maxTime != 0 && time.Since(startTime) > maxTime {
				break
			}
		}

		flux := detector.Flux(c.in)

		if lastFlux == 0 {
			lastFlux = flux
			continue
		}

		if heardSomething {
			if flux*1.75 <= lastFlux {
				if !quiet {
					quietStart = time.Now()
				} else {
					diff := time.Since(quietStart)

					if diff > quietTime {
						break
					}
				}

				quiet = true
			} else {
				quiet = false
				lastFlux = flux
			}
		} else {
			if flux >= lastFlux*1.75 {
				heardSomething = true

				// write the buffered pre-roll to the front of the utterance
				for _, sample := range ringBuffer.Read() {
					intBuffer = append(intBuffer, int(sample))
				}
			}

			lastFlux = flux
		}
	}

	wavBuffer := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           intBuffer,
		SourceBitDepth: 16,
	}

	if c.dump {
		c.dumpUtterance(intBuffer)
	}

	return wavBuffer, nil
}

func (c *captureImpl) dumpUtterance(samples []int) {
	waveFilename := "utterance" + strconv.Itoa(int(time.Now().Unix())) + ".wav"

	waveFile, err := c.fileSys.Create(waveFilename)
	if err != nil {
		log.Printf("error creating dump file: %v", err)

		return
	}

	param := wave.WriterParam{
		Out:           waveFile,
		Channel:       1,
		SampleRate:    sampleRate,
		BitsPerSample: 16,
	}

	waveWriter, err := wave.NewWriter(param)
	if err != nil {
		log.Printf("error creating wave writer: %v", err)

		return
	}

	defer waveWriter.Close()

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = int16(s)
	}

	if _, err := waveWriter.WriteSample16(pcm); err != nil {
		log.Printf("error dumping utterance: %v", err)
	}
}

// Close releases the audio subsystem. The capture is unusable afterwards.
func (c *captureImpl) Close() {
	c.Stop()

	if err := portaudio.Terminate(); err != nil {
		log.Printf("error while freeing audio: %v", err)
	}
}
