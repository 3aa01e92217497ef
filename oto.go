package resound

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

var otoContext *oto.Context

type OtoPlayer = oto.Player

// InitOtoContext opens the audio device. Call once before Play; the
// context cannot be reopened with a different sample rate.
func InitOtoContext(sampleRate int) error {
	otoContextOptions := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}
	ctx, readyChan, err := oto.NewContext(otoContextOptions)
	if err != nil {
		return err
	}
	<-readyChan
	otoContext = ctx
	return nil
}

// Play streams the mixer through the audio device and blocks until the
// composition ends or the mixer is stopped.
func (m *Mixer) Play() error {
	if otoContext == nil {
		if err := InitOtoContext(m.sampleRate); err != nil {
			return fmt.Errorf("cannot initialize audio output: %w", err)
		}
	}
	stream := m.Stream()
	player := otoContext.NewPlayer(stream)
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}
