package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cellux/resound"
	"github.com/mitchellh/go-homedir"
)

// demoEvents builds a short composition exercising most of the engine:
// a detuned saw pad through a lowpass sweep, an FM bass line and a
// spatialized noise sweep.
func demoEvents(m *resound.Mixer) error {
	padFilter, err := resound.NewFilterParams(resound.FilterLowPass, resound.Slope12, 400, 0.4)
	if err != nil {
		return err
	}
	pad := resound.Event{
		StartTime: 0,
		Voice: resound.Voice{
			Waveform: resound.Sawtooth,
			Freq:     220,
			Duration: 3,
			Env:      resound.Envelope{Attack: 0.5, Decay: 0.5, Sustain: 0.7, Release: 1.0},
			Filter:   &padFilter,
			FilterEnv: &resound.FilterEnvelope{
				Env:        resound.Envelope{Attack: 1.5, Decay: 1.0, Sustain: 0.5, Release: 1.0},
				BaseCutoff: 400,
				PeakCutoff: 4000,
				Amount:     1,
			},
			Effects: []resound.EffectSpec{
				resound.ChorusSpec{Rate: 0.3, DepthMs: 4, Mix: 0.4},
				resound.ReverbSpec{RoomSize: 0.8, Damping: 0.4, Mix: 0.3},
			},
			Velocity: 0.5,
		},
	}
	for _, ev := range resound.UnisonEvents(pad, 3, 8, 0.7) {
		if err := m.AddEvent(ev); err != nil {
			return err
		}
	}

	fm, err := resound.NewFMParams(2, 3)
	if err != nil {
		return err
	}
	bassNotes := []float64{55, 55, 82.41, 73.42}
	for i, freq := range bassNotes {
		ev := resound.Event{
			StartTime: float64(i),
			Voice: resound.Voice{
				Waveform: resound.Sine,
				Freq:     freq,
				Duration: 0.8,
				Env:      resound.Envelope{Attack: 0.01, Decay: 0.2, Sustain: 0.6, Release: 0.2},
				FM:       &fm,
				Effects: []resound.EffectSpec{
					resound.SaturatorSpec{Drive: 2, Mix: 0.5},
				},
				Velocity: 0.8,
			},
		}
		if err := m.AddEvent(ev); err != nil {
			return err
		}
	}

	sweepFilter, err := resound.NewFilterParams(resound.FilterBandPass, resound.Slope12, 2000, 0.7)
	if err != nil {
		return err
	}
	sweep := resound.Event{
		StartTime: 1,
		Voice: resound.Voice{
			Waveform: resound.Noise,
			Freq:     440,
			Duration: 2,
			Env:      resound.Envelope{Attack: 1.0, Decay: 0.5, Sustain: 0.3, Release: 0.5},
			Filter:   &sweepFilter,
			Velocity: 0.3,
		},
		Spatial: &resound.SpatialPosition{
			Position: resound.Vec3{8, 0, -4},
			Velocity: resound.Vec3{-4, 0, 0},
		},
	}
	return m.AddEvent(sweep)
}

func main() {
	outPath := flag.String("o", "resound-demo.wav", "output WAV path")
	play := flag.Bool("play", false, "play through the audio device instead of writing a file")
	rate := flag.Int("rate", resound.DefaultSampleRate, "sample rate in Hz")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	if err := resound.InitLogger(*logLevel); err != nil {
		log.Fatalf("%v\n", err)
	}

	m, err := resound.NewMixer(*rate)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	err = m.SetMasterEffects(
		resound.EQSpec{LowFreq: 200, HighFreq: 5000, LowGain: 1.1, MidGain: 1, HighGain: 0.9},
		resound.CompressorSpec{Threshold: 0.7, Ratio: 3, Attack: 0.005, Release: 0.1, Makeup: 1.2},
		resound.LimiterSpec{Threshold: 0.95, Release: 0.05},
	)
	if err != nil {
		log.Fatalf("%v\n", err)
	}

	if err := demoEvents(m); err != nil {
		log.Fatalf("%v\n", err)
	}

	if *play {
		if err := m.Play(); err != nil {
			log.Fatalf("%v\n", err)
		}
		return
	}

	buf, err := m.Render()
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	path, err := homedir.Expand(*outPath)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	if err := resound.WriteStereoWAV(path, buf, *rate); err != nil {
		log.Fatalf("%v\n", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d frames)\n", path, len(buf)/2)
}
