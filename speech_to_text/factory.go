package speech_to_text

import "fmt"

// Engine selects the recognizer backend.
type Engine string

const (
	EngineWhisper Engine = "whisper"
	EngineVosk    Engine = "vosk"
)

type Config struct {
	Engine    Engine
	ModelPath string
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is empty")
	}

	switch cfg.Engine {
	case EngineWhisper, "":
		return newWhisper(cfg.ModelPath)
	case EngineVosk:
		return newVosk(cfg.ModelPath)
	default:
		return nil, fmt.Errorf("unknown speech engine: %s", cfg.Engine)
	}
}
