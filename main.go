package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"stepseq/audio"
	"stepseq/config"
	"stepseq/debug"
	"stepseq/engine"
	"stepseq/midiout"
	"stepseq/pattern"
	"stepseq/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Debug {
		debug.Enable()
		defer debug.Disable()
	}

	// Persistent pattern state
	stateDir, err := config.StateDir()
	if err != nil {
		fmt.Printf("state dir: %v\n", err)
		os.Exit(1)
	}
	kv, err := pattern.NewFileStore(stateDir)
	if err != nil {
		fmt.Printf("state store: %v\n", err)
		os.Exit(1)
	}
	store := pattern.NewPatternStore(kv)
	store.Load()

	// Sound engines: drums and synth over MIDI, slices through the speaker
	midiEng := midiout.NewEngine(midiout.Config{
		PortName:     cfg.MIDI.PortName,
		DrumChannel:  uint8(cfg.MIDI.DrumChannel),
		SynthChannel: uint8(cfg.MIDI.SynthChannel),
	})
	audioEng, err := audio.NewEngine(cfg.Audio.SampleRate)
	if err != nil {
		fmt.Printf("audio: %v\n", err)
		os.Exit(1)
	}
	snd := &engine.Multi{Trig: midiEng, Sampler: audioEng}
	defer snd.Close()

	clock := engine.NewStepClock(store.Snapshot().Transport.BPM)
	dispatcher := engine.NewDispatcher(clock, snd, store)

	// The MIDI engine sizes note gates from the tempo; readiness changes
	// from the sampler rebuild the schedule like any other edit.
	midiEng.SetBPM(store.Snapshot().Transport.BPM)
	store.OnChange(func() {
		midiEng.SetBPM(store.Snapshot().Transport.BPM)
	})
	audioEng.OnReady(dispatcher.Rebuild)

	if cfg.Audio.SamplePath != "" {
		audioEng.LoadSample(cfg.Audio.SamplePath)
	}

	m := tui.NewModel(store, dispatcher)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
