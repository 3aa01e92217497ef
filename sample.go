package resound

import (
	"fmt"
	"math"
)

// Sample is an offline mono buffer with a sample rate. It is the unit
// the WSOLA time-stretcher, the rate converter and the file adapters
// operate on.
type Sample struct {
	Data []float32
	Rate int
}

func NewSample(data []float32, rate int) (*Sample, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidParameter, rate)
	}
	return &Sample{Data: data, Rate: rate}, nil
}

func (s *Sample) String() string {
	return fmt.Sprintf("Sample(frames=%d rate=%d)", len(s.Data), s.Rate)
}

// Duration is the sample's length in seconds.
func (s *Sample) Duration() float64 {
	return float64(len(s.Data)) / float64(s.Rate)
}

// at reads a fractional frame position with linear interpolation.
func (s *Sample) at(frame float64) float32 {
	lo := math.Floor(frame)
	i := int(lo)
	if i < 0 || i >= len(s.Data) {
		return 0
	}
	if i == len(s.Data)-1 {
		return s.Data[i]
	}
	frac := float32(frame - lo)
	return s.Data[i] + frac*(s.Data[i+1]-s.Data[i])
}

// Clone returns a deep copy.
func (s *Sample) Clone() *Sample {
	return &Sample{Data: append([]float32(nil), s.Data...), Rate: s.Rate}
}

// Peak returns the maximum absolute amplitude.
func (s *Sample) Peak() float32 {
	var peak float32
	for _, v := range s.Data {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Normalize scales the sample in place so its peak is 1.
func (s *Sample) Normalize() {
	peak := s.Peak()
	if peak < 1e-9 {
		return
	}
	scaleBuffer(s.Data, 1/peak)
}
