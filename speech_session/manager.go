package speech_session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"object-scale-control/audio_capture"
	"object-scale-control/command"
	"object-scale-control/speech_to_text"
)

// State is the lifecycle phase of the current session attempt.
type State string

const (
	StateIdle       State = "idle"
	StateStarting   State = "starting"
	StateActive     State = "active"
	StateRestarting State = "restarting"
)

// ErrStartFailed wraps a failure to acquire the microphone for a new session.
// It disables listening instead of retrying, so a persistently busy or denied
// device cannot cause a restart storm.
var ErrStartFailed = errors.New("session start failed")

const (
	defaultQuietTime  = time.Millisecond * 200
	defaultMaxSession = time.Second * 10
)

// managerImpl keeps exactly one recognition session alive while listening is
// enabled. Each session is bounded: it records one utterance, transcribes it,
// emits at most one command, and is then torn down. The supervisor immediately
// starts the next session, so listening is effectively unbounded until Stop.
type managerImpl struct {
	mu            sync.Mutex
	capture       audio_capture.Interface
	engine        speech_to_text.Interface
	quietTime     time.Duration
	maxSession    time.Duration
	onStateChange func(listening bool)

	listening bool
	state     State
	onCommand func(command.Command)
	stop      chan struct{}
	done      chan struct{}
}

type Config struct {
	Capture audio_capture.Interface
	Engine  speech_to_text.Interface

	// QuietTime is the silence that ends an utterance; MaxSession bounds a
	// single session even if the room never goes quiet.
	QuietTime  time.Duration
	MaxSession time.Duration

	// OnStateChange fires when the manager turns itself off after a start
	// failure, so the user-facing toggle can follow the real state.
	OnStateChange func(listening bool)
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Capture == nil {
		return nil, fmt.Errorf("capture is nil")
	}

	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is nil")
	}

	quietTime := cfg.QuietTime
	if quietTime <= 0 {
		quietTime = defaultQuietTime
	}

	maxSession := cfg.MaxSession
	if maxSession <= 0 {
		maxSession = defaultMaxSession
	}

	return &managerImpl{
		capture:       cfg.Capture,
		engine:        cfg.Engine,
		quietTime:     quietTime,
		maxSession:    maxSession,
		onStateChange: cfg.OnStateChange,
		state:         StateIdle,
	}, nil
}

// Start begins continuous listening. Calling it while already listening tears
// down the running session first, so there is never more than one session no
// matter how often the toggle is flipped.
func (m *managerImpl) Start(onCommand func(command.Command)) {
	m.mu.Lock()

	if m.listening {
		close(m.stop)
	}

	prevDone := m.done

	m.listening = true
	m.onCommand = onCommand

	stop := make(chan struct{})
	done := make(chan struct{})
	m.stop = stop
	m.done = done

	m.mu.Unlock()

	go func() {
		// wait for the previous supervisor to finish releasing the microphone
		if prevDone != nil {
			<-prevDone
		}

		m.supervise(stop, done)
	}()
}

// Stop ends listening and cancels any active session. Safe to call from any
// state, including when not listening.
func (m *managerImpl) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.listening {
		return
	}

	m.listening = false

	close(m.stop)
}

func (m *managerImpl) IsListening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listening
}

func (m *managerImpl) CurrentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// supervise runs session after session until its stop channel closes or a
// start failure disables listening.
func (m *managerImpl) supervise(stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			m.setState(StateIdle)

			return
		default:
		}

		err := m.runSession(stop)
		if err == nil {
			continue
		}

		if errors.Is(err, audio_capture.ErrInterrupted) {
			m.setState(StateIdle)

			return
		}

		if errors.Is(err, ErrStartFailed) {
			log.Printf("disabling listening: %v", err)

			m.disable()
			m.setState(StateIdle)

			return
		}

		// mid-session recognition errors are recoverable: restart
		log.Printf("recognition error, restarting session: %v", err)
	}
}

// runSession executes one bounded recognition session: acquire the microphone,
// record one utterance, transcribe, emit at most one command.
func (m *managerImpl) runSession(stop chan struct{}) error {
	m.setState(StateStarting)

	if err := m.capture.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrStartFailed, err)
	}

	// release the microphone on every exit path so the next session can
	// reacquire it without leaking a stream
	defer m.capture.Stop()

	m.setState(StateActive)

	wavBuffer, err := m.capture.Listen(m.quietTime, m.maxSession, stop)
	if err != nil {
		if errors.Is(err, audio_capture.ErrInterrupted) {
			return err
		}

		m.setState(StateRestarting)

		return fmt.Errorf("listening: %w", err)
	}

	if wavBuffer == nil || wavBuffer.NumFrames() == 0 {
		// session ended without speech; restart
		m.setState(StateRestarting)

		return nil
	}

	transcript, err := m.engine.Process(wavBuffer)
	if err != nil {
		m.setState(StateRestarting)

		return fmt.Errorf("transcribing: %w", err)
	}

	cmd := command.Parse(transcript)

	// the session is over before the command is emitted, so a matched session
	// can never produce a second command
	m.setState(StateRestarting)

	if cmd != command.None {
		log.Printf("recognized %q -> %s", transcript, cmd)

		m.mu.Lock()
		onCommand := m.onCommand
		m.mu.Unlock()

		if onCommand != nil {
			onCommand(cmd)
		}
	}

	return nil
}

func (m *managerImpl) disable() {
	m.mu.Lock()
	m.listening = false
	onStateChange := m.onStateChange
	m.mu.Unlock()

	if onStateChange != nil {
		onStateChange(false)
	}
}

func (m *managerImpl) setState(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}
