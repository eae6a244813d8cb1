package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/spf13/afero"

	"object-scale-control/audio_capture"
	"object-scale-control/clients/scene"
	"object-scale-control/command"
	"object-scale-control/config"
	"object-scale-control/motion"
	"object-scale-control/scale_state"
	"object-scale-control/speech_session"
	"object-scale-control/speech_to_text"
)

const frameInterval = time.Second / 30

func main() {
	modelFlag := flag.String("m", "", "model file for the speech engine")
	replayFlag := flag.String("replay", "", "wav file to run through the command pipeline instead of the microphone")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	if *modelFlag != "" {
		cfg.Speech.ModelPath = *modelFlag
	}

	if cfg.Speech.ModelPath == "" {
		log.Fatalf("error: model file not specified")
	}

	state, err := scale_state.New(&scale_state.Config{
		Initial: scale_state.Vector{X: cfg.Scale.Initial, Y: cfg.Scale.Initial, Z: cfg.Scale.Initial},
	})
	if err != nil {
		log.Fatalf("error with scale_state.New: %v", err)
	}

	sttEngine, err := speech_to_text.New(&speech_to_text.Config{
		Engine:    speech_to_text.Engine(cfg.Speech.Engine),
		ModelPath: cfg.Speech.ModelPath,
	})
	if err != nil {
		log.Fatalf("error with speech_to_text.New: %v", err)
	}

	defer sttEngine.Close()

	if *replayFlag != "" {
		runReplay(state, sttEngine, *replayFlag)

		return
	}

	runLive(cfg, state, sttEngine)
}

func runLive(cfg *config.Config, state scale_state.Interface, sttEngine speech_to_text.Interface) {
	// the gate closes over the manager so a voice callback still in flight
	// after the toggle turns off gets dropped instead of applied
	var manager speech_session.Interface

	router, err := command.New(&command.Config{
		State: state,
		Gates: map[command.Source]command.Gate{
			command.SourceVoice: func() bool {
				return manager != nil && manager.IsListening()
			},
		},
	})
	if err != nil {
		log.Fatalf("error with command.New: %v", err)
	}

	defer router.Close()

	capture, err := audio_capture.New(&audio_capture.Config{
		FileSys:        afero.NewOsFs(),
		DumpUtterances: cfg.Debug.DumpUtterances,
	})
	if err != nil {
		log.Fatalf("error with audio_capture.New: %v", err)
	}

	defer capture.Close()

	manager, err = speech_session.New(&speech_session.Config{
		Capture:    capture,
		Engine:     sttEngine,
		QuietTime:  time.Duration(cfg.Speech.QuietTimeMs) * time.Millisecond,
		MaxSession: time.Duration(cfg.Speech.MaxSessionMs) * time.Millisecond,
		OnStateChange: func(listening bool) {
			log.Printf("listening toggle forced to %v", listening)
		},
	})
	if err != nil {
		log.Fatalf("error with speech_session.New: %v", err)
	}

	monitor, err := motion.New(&motion.Config{
		Sensor:    motion.NewIIOSensor(),
		Router:    router,
		Threshold: cfg.Motion.Threshold,
		Interval:  time.Duration(cfg.Motion.IntervalMs) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("error with motion.New: %v", err)
	}

	if err := monitor.Start(); err != nil {
		if errors.Is(err, motion.ErrSensorUnavailable) {
			log.Printf("no rotation sensor found, motion control disabled")
		} else {
			log.Printf("error starting motion monitor: %v", err)
		}
	} else {
		defer monitor.Stop()
	}

	object := scene.NewLogObject()

	// the renderer reads the scale every frame
	go func() {
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()

		for range ticker.C {
			scale := state.Get()
			object.SetScale(scale.X, scale.Y, scale.Z)
		}
	}()

	onVoice := func(cmd command.Command) {
		router.Apply(cmd, command.SourceVoice)
	}

	controlLoop(manager, router, state, onVoice)
}

// controlLoop is the stand-in control surface: two buttons and the listening
// toggle, driven from stdin.
func controlLoop(manager speech_session.Interface, router command.Interface,
	state scale_state.Interface, onVoice func(command.Command)) {
	fmt.Println("commands: +  -  listen on  listen off  scale  quit")

	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "+":
			router.Apply(command.Increase, command.SourceButton)
		case "-":
			router.Apply(command.Decrease, command.SourceButton)
		case "listen on":
			manager.Start(onVoice)

			log.Printf("listening: %v", manager.IsListening())
		case "listen off":
			manager.Stop()

			log.Printf("listening: %v", manager.IsListening())
		case "scale":
			scale := state.Get()
			fmt.Printf("scale: (%.2f, %.2f, %.2f)\n", scale.X, scale.Y, scale.Z)
		case "quit":
			manager.Stop()

			return
		}
	}
}

// runReplay feeds a recorded utterance through the same transcribe/parse/apply
// path the live microphone uses, then prints the resulting scale.
func runReplay(state scale_state.Interface, sttEngine speech_to_text.Interface, path string) {
	router, err := command.New(&command.Config{
		State: state,
	})
	if err != nil {
		log.Fatalf("error with command.New: %v", err)
	}

	defer router.Close()

	if err := replay(afero.NewOsFs(), path, sttEngine, router); err != nil {
		log.Fatalf("error replaying %s: %v", path, err)
	}

	// let the router drain before reading the result
	time.Sleep(100 * time.Millisecond)

	scale := state.Get()
	fmt.Printf("final scale: (%.2f, %.2f, %.2f)\n", scale.X, scale.Y, scale.Z)
}

func replay(fileSys afero.Fs, path string, engine speech_to_text.Interface, router command.Interface) error {
	file, err := fileSys.Open(path)
	if err != nil {
		return err
	}

	defer file.Close()

	decoder := wav.NewDecoder(file)

	wavBuffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return err
	}

	transcript, err := engine.Process(wavBuffer)
	if err != nil {
		return err
	}

	log.Printf("replay transcript: %q", transcript)

	router.Apply(command.Parse(transcript), command.SourceVoice)

	return nil
}
