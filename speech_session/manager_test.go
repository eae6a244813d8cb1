package speech_session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-scale-control/audio_capture"
	"object-scale-control/command"
)

// fakePipeline scripts the capture and engine: each string pushed to Say
// becomes one utterance, which the fake engine returns verbatim as its
// transcript. It also counts open streams to check the one-session invariant.
type fakePipeline struct {
	mu         sync.Mutex
	scripts    chan string
	pending    string
	failStart  bool
	processErr error

	starts    int
	active    int
	maxActive int
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		scripts: make(chan string, 16),
	}
}

func (p *fakePipeline) Say(transcript string) {
	p.scripts <- transcript
}

// audio_capture.Interface

func (p *fakePipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.starts++

	if p.failStart {
		return errors.New("device busy")
	}

	if p.active > 0 {
		return audio_capture.ErrBusy
	}

	p.active++
	if p.active > p.maxActive {
		p.maxActive = p.active
	}

	return nil
}

func (p *fakePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active > 0 {
		p.active--
	}
}

func (p *fakePipeline) Listen(_, _ time.Duration, stop <-chan struct{}) (audio.Buffer, error) {
	select {
	case <-stop:
		return nil, audio_capture.ErrInterrupted
	case transcript := <-p.scripts:
		p.mu.Lock()
		p.pending = transcript
		p.mu.Unlock()

		return &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
			Data:           make([]int, 160),
			SourceBitDepth: 16,
		}, nil
	}
}

func (p *fakePipeline) Close() {}

// speech_to_text.Interface

func (p *fakePipeline) Process(_ audio.Buffer) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.processErr != nil {
		err := p.processErr
		p.processErr = nil

		return "", err
	}

	return p.pending, nil
}

func (p *fakePipeline) stats() (starts, maxActive, active int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.starts, p.maxActive, p.active
}

func newTestManager(t *testing.T, pipeline *fakePipeline, onStateChange func(bool)) Interface {
	t.Helper()

	manager, err := New(&Config{
		Capture:       pipeline,
		Engine:        pipeline,
		QuietTime:     time.Millisecond,
		MaxSession:    time.Second,
		OnStateChange: onStateChange,
	})
	require.NoError(t, err)

	t.Cleanup(manager.Stop)

	return manager
}

func waitIdle(t *testing.T, manager Interface) {
	t.Helper()

	require.Eventually(t, func() bool {
		return manager.CurrentState() == StateIdle
	}, time.Second, time.Millisecond)
}

func TestManager(t *testing.T) {
	t.Run("recognized command is emitted and the session restarts", func(t *testing.T) {
		pipeline := newFakePipeline()
		manager := newTestManager(t, pipeline, nil)

		commands := make(chan command.Command, 16)

		manager.Start(func(cmd command.Command) {
			commands <- cmd
		})

		pipeline.Say("please increase the size")

		select {
		case cmd := <-commands:
			assert.Equal(t, command.Increase, cmd)
		case <-time.After(time.Second):
			t.Fatal("no command emitted")
		}

		// a fresh session is already listening for the next utterance
		pipeline.Say("now decrease it")

		select {
		case cmd := <-commands:
			assert.Equal(t, command.Decrease, cmd)
		case <-time.After(time.Second):
			t.Fatal("session did not restart after a match")
		}
	})

	t.Run("session restarts after an utterance with no command", func(t *testing.T) {
		pipeline := newFakePipeline()
		manager := newTestManager(t, pipeline, nil)

		commands := make(chan command.Command, 16)

		manager.Start(func(cmd command.Command) {
			commands <- cmd
		})

		pipeline.Say("hello there")
		pipeline.Say("increase")

		select {
		case cmd := <-commands:
			assert.Equal(t, command.Increase, cmd)
		case <-time.After(time.Second):
			t.Fatal("session did not restart after natural end")
		}

		assert.Empty(t, commands)
	})

	t.Run("recognition error triggers a restart, not a shutdown", func(t *testing.T) {
		pipeline := newFakePipeline()
		pipeline.processErr = errors.New("decoder hiccup")

		manager := newTestManager(t, pipeline, nil)

		commands := make(chan command.Command, 16)

		manager.Start(func(cmd command.Command) {
			commands <- cmd
		})

		pipeline.Say("increase")
		pipeline.Say("increase")

		select {
		case cmd := <-commands:
			assert.Equal(t, command.Increase, cmd)
		case <-time.After(time.Second):
			t.Fatal("manager did not recover from a recognition error")
		}

		assert.True(t, manager.IsListening())
	})

	t.Run("at most one session is active across restarts and double starts", func(t *testing.T) {
		pipeline := newFakePipeline()
		manager := newTestManager(t, pipeline, nil)

		commands := make(chan command.Command, 16)
		onCommand := func(cmd command.Command) {
			commands <- cmd
		}

		manager.Start(onCommand)
		manager.Start(onCommand)
		manager.Start(onCommand)

		for i := 0; i < 5; i++ {
			pipeline.Say("increase")

			select {
			case <-commands:
			case <-time.After(time.Second):
				t.Fatal("command lost")
			}
		}

		manager.Stop()
		waitIdle(t, manager)

		_, maxActive, active := pipeline.stats()

		assert.Equal(t, 1, maxActive, "two sessions were alive at once")
		assert.Equal(t, 0, active, "microphone stream leaked")
	})

	t.Run("stop ends listening and no further commands are delivered", func(t *testing.T) {
		pipeline := newFakePipeline()
		manager := newTestManager(t, pipeline, nil)

		commands := make(chan command.Command, 16)

		manager.Start(func(cmd command.Command) {
			commands <- cmd
		})

		manager.Stop()

		assert.False(t, manager.IsListening())

		waitIdle(t, manager)

		pipeline.Say("increase")

		select {
		case <-commands:
			t.Fatal("command delivered after stop")
		case <-time.After(100 * time.Millisecond):
		}

		_, _, active := pipeline.stats()
		assert.Equal(t, 0, active, "stop did not release the microphone")
	})

	t.Run("stop when not listening is a no-op", func(t *testing.T) {
		pipeline := newFakePipeline()
		manager := newTestManager(t, pipeline, nil)

		manager.Stop()
		manager.Stop()

		assert.False(t, manager.IsListening())
		assert.Equal(t, StateIdle, manager.CurrentState())
	})

	t.Run("start failure disables listening without a restart storm", func(t *testing.T) {
		pipeline := newFakePipeline()
		pipeline.failStart = true

		var toggledOff bool
		var mu sync.Mutex

		manager := newTestManager(t, pipeline, func(listening bool) {
			mu.Lock()
			defer mu.Unlock()

			if !listening {
				toggledOff = true
			}
		})

		manager.Start(func(command.Command) {
			t.Error("command emitted from a failed session")
		})

		require.Eventually(t, func() bool {
			return !manager.IsListening()
		}, time.Second, time.Millisecond)

		waitIdle(t, manager)

		// a second attempt fails the same way and stays off
		manager.Start(func(command.Command) {})

		require.Eventually(t, func() bool {
			return !manager.IsListening()
		}, time.Second, time.Millisecond)

		waitIdle(t, manager)

		starts, _, _ := pipeline.stats()

		assert.Equal(t, 2, starts, "start was retried in a loop")

		mu.Lock()
		defer mu.Unlock()

		assert.True(t, toggledOff, "toggle state was not notified")
	})
}
