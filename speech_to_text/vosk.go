package speech_to_text

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
	"github.com/go-audio/audio"
)

type voskImpl struct {
	mu         sync.Mutex
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
}

type voskResult struct {
	Text string `json:"text"`
}

func newVosk(modelPath string) (Interface, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("vosk model not found: %s", modelPath)
	}

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading vosk model: %w", err)
	}

	rec, err := vosk.NewRecognizer(model, 16000.0)
	if err != nil {
		model.Free()

		return nil, err
	}

	return &voskImpl{
		model:      model,
		recognizer: rec,
	}, nil
}

// Process transcribes one utterance. Vosk wants little-endian PCM16 bytes, so
// the int buffer is re-encoded before feeding.
func (stt *voskImpl) Process(wavBuffer audio.Buffer) (string, error) {
	stt.mu.Lock()
	defer stt.mu.Unlock()

	data := wavBuffer.AsIntBuffer().Data

	pcm16 := make([]byte, len(data)*2)
	for i, sample := range data {
		binary.LittleEndian.PutUint16(pcm16[i*2:], uint16(int16(sample)))
	}

	stt.recognizer.AcceptWaveform(pcm16)

	resultJSON := stt.recognizer.FinalResult()

	// reset so the next utterance starts from a clean decoder state
	stt.recognizer.Reset()

	var result voskResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return "", err
	}

	return result.Text, nil
}

func (stt *voskImpl) Close() {
	stt.mu.Lock()
	defer stt.mu.Unlock()

	if stt.recognizer != nil {
		stt.recognizer.Free()
		stt.recognizer = nil
	}

	if stt.model != nil {
		stt.model.Free()
		stt.model = nil
	}
}
