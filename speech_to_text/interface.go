package speech_to_text

import "github.com/go-audio/audio"

type Interface interface {
	// Process transcribes one utterance and returns its text.
	Process(wavBuffer audio.Buffer) (string, error)
	Close()
}
