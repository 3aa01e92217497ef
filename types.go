package resound

// Smp is the sample type used for internal synthesis math.
// Buffers handed to consumers are float32; internal math is float64.
type Smp = float64

// DefaultSampleRate is used when the caller does not configure one.
const DefaultSampleRate = 44100

// Waveform selects the oscillator's source table.
type Waveform int

const (
	Sine Waveform = iota
	Sawtooth
	Square
	Triangle
	Noise
	Custom
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Sawtooth:
		return "sawtooth"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Noise:
		return "noise"
	case Custom:
		return "custom"
	}
	return "unknown"
}
