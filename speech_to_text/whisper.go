package speech_to_text

import (
	"fmt"
	"io"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/go-audio/audio"
)

type whisperImpl struct {
	model whisper.Model
}

func newWhisper(modelPath string) (Interface, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading whisper model: %w", err)
	}

	return &whisperImpl{
		model: model,
	}, nil
}

func (stt *whisperImpl) Process(wavBuffer audio.Buffer) (string, error) {
	// Create processing context
	context, err := stt.model.NewContext()
	if err != nil {
		return "", err
	}

	data := wavBuffer.AsFloat32Buffer().Data

	var cb whisper.SegmentCallback

	if err := context.Process(data, cb); err != nil {
		return "", err
	}

	segments, err := outputSegments(context)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(segments))
	for _, segment := range segments {
		texts = append(texts, segment.Text)
	}

	return strings.TrimSpace(strings.Join(texts, " ")), nil
}

func (stt *whisperImpl) Close() {
	stt.model.Close()
}

func outputSegments(context whisper.Context) ([]whisper.Segment, error) {
	seenText := make(map[string]bool)

	segments := make([]whisper.Segment, 0)

	for {
		segment, err := context.NextSegment()
		if err == io.EOF {
			return segments, nil
		} else if err != nil {
			return nil, err
		}

		// if segment text starts or ends with a parenthesis or a bracket, then ignore it
		if len(segment.Text) > 0 && (segment.Text[0] == '(' || segment.Text[0] == '[' ||
			segment.Text[len(segment.Text)-1] == ')' || segment.Text[len(segment.Text)-1] == ']') {
			continue
		}

		// if we've already seen this text, then ignore it
		if _, ok := seenText[segment.Text]; ok {
			continue
		} else {
			seenText[segment.Text] = true
		}

		segments = append(segments, segment)
	}
}
