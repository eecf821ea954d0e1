// groovehostd runs the plugin host against the default audio device: it
// registers the built-in plugins, pulls catalog plugins from a catalog
// service when one is configured, and plays a chosen instrument from the
// first matching MIDI input.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/amapianolab/groovehost/pkg/graph"
	"github.com/amapianolab/groovehost/pkg/host"
	"github.com/amapianolab/groovehost/pkg/loader"
	"github.com/amapianolab/groovehost/pkg/plugin"
	"github.com/amapianolab/groovehost/pkg/plugins/builtin"
	"github.com/amapianolab/groovehost/pkg/registry"
)

func main() {
	var (
		rate       = flag.Float64("rate", 44100, "sample rate in Hz")
		buffer     = flag.Int("buffer", 256, "audio buffer size in frames")
		catalogURL = flag.String("catalog", "", "catalog service base URL (empty disables hot reload)")
		poll       = flag.Duration("poll", loader.DefaultPollInterval, "catalog polling interval")
		midiPort   = flag.String("midi", "", "substring of the MIDI input to play (empty disables MIDI)")
		instrument = flag.String("instrument", "amapiano-bass", "plugin id played from MIDI input")
		volume     = flag.Float64("volume", 0.8, "master volume in [0, 1]")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(log, *rate, *buffer, *catalogURL, *poll, *midiPort, *instrument, *volume); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, rate float64, buffer int, catalogURL string, poll time.Duration, midiPort, instrument string, volume float64) error {
	reg := registry.New()
	builtin.Register(reg)

	ctx := graph.NewContext(rate)
	h := host.New(ctx, reg)
	h.SetMasterVolume(volume)

	if catalogURL != "" {
		l := loader.New(reg, catalogURL, loader.WithLogger(log))
		entries, err := l.LoadAllPlugins(context.Background())
		if err != nil {
			log.Warn("catalog unreachable at startup, polling anyway", "err", err)
		} else {
			log.Info("catalog loaded", "plugins", len(entries))
		}
		l.StartPolling(poll)
		defer l.StopPolling()
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()

	stream, err := portaudio.OpenDefaultStream(0, 1, rate, buffer, func(out []float32) {
		ctx.Render(out)
	})
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()
	h.Resume()
	log.Info("audio running", "rate", rate, "buffer", buffer)

	if midiPort != "" {
		stop, err := connectMIDI(log, h, midiPort, instrument)
		if err != nil {
			log.Warn("midi unavailable", "err", err)
		} else {
			defer stop()
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	return nil
}

// connectMIDI routes note events from the first input whose name contains
// port into an instance of the chosen instrument. Held notes are tracked per
// MIDI key so NoteOff releases the matching voice.
func connectMIDI(log *slog.Logger, h *host.Host, port, instrument string) (func(), error) {
	inst, err := h.CreatePlugin(instrument, "")
	if err != nil {
		return nil, err
	}
	if err := h.ConnectPlugin(inst.ID, nil); err != nil {
		return nil, err
	}

	var in drivers.In
	for _, candidate := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(candidate.String()), strings.ToLower(port)) {
			in = candidate
			break
		}
	}
	if in == nil {
		return nil, fmt.Errorf("no MIDI input matching %q", port)
	}

	var mu sync.Mutex
	held := make(map[uint8]plugin.VoiceHandle)

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteOn(&ch, &key, &vel):
			handle, err := h.NoteOn(inst.ID, int(key), float64(vel)/127.0, 0)
			if err != nil {
				log.Warn("noteOn failed", "err", err)
				return
			}
			mu.Lock()
			if prev, ok := held[key]; ok {
				h.NoteOff(inst.ID, prev)
			}
			held[key] = handle
			mu.Unlock()
		case msg.GetNoteOff(&ch, &key, &vel):
			mu.Lock()
			handle, ok := held[key]
			delete(held, key)
			mu.Unlock()
			if ok {
				h.NoteOff(inst.ID, handle)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	log.Info("midi connected", "port", in.String(), "instrument", instrument)
	return func() {
		stop()
		h.DeletePlugin(inst.ID)
	}, nil
}
