package resound

import (
	"errors"
	"math"
	"testing"
)

func TestAttenuate_Models(t *testing.T) {
	t.Parallel()

	base := DefaultSpatialParams()
	tests := []struct {
		name  string
		model AttenuationModel
		d     float64
		want  float64
	}{
		{"none mid-range", AttenuationNone, 50, 1},
		{"linear midpoint", AttenuationLinear, 50.5, 0.5},
		{"inverse", AttenuationInverse, 3, 1.0 / 3},
		{"inverse square", AttenuationInverseSquare, 50, 1.0 / 2500},
		{"exponential", AttenuationExponential, 4, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.Model = tt.model
			got := p.attenuate(tt.d)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("attenuate(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestAttenuate_Boundaries(t *testing.T) {
	t.Parallel()

	p := DefaultSpatialParams()
	if got := p.attenuate(0.5); got != 1 {
		t.Errorf("inside ref distance: %v, want 1", got)
	}
	if got := p.attenuate(100); got != 0 {
		t.Errorf("at max distance: %v, want 0", got)
	}
	if got := p.attenuate(500); got != 0 {
		t.Errorf("beyond max distance: %v, want 0", got)
	}
}

func TestSpatialize_DistanceVolume(t *testing.T) {
	t.Parallel()

	// source 50 m ahead with inverse-square falloff
	res := spatialize(
		SpatialPosition{Position: Vec3{0, 0, -50}},
		DefaultListener(),
		DefaultSpatialParams(),
	)
	if math.Abs(res.volume-1.0/2500) > 1e-9 {
		t.Errorf("volume = %v, want %v", res.volume, 1.0/2500)
	}
	if math.Abs(res.pan) > 1e-9 {
		t.Errorf("pan = %v, want 0 for a source dead ahead", res.pan)
	}
}

func TestSpatialize_PanSides(t *testing.T) {
	t.Parallel()

	listener := DefaultListener()
	params := DefaultSpatialParams()

	right := spatialize(SpatialPosition{Position: Vec3{10, 0, 0}}, listener, params)
	if math.Abs(right.pan-1) > 1e-9 {
		t.Errorf("right source pan = %v, want 1", right.pan)
	}
	left := spatialize(SpatialPosition{Position: Vec3{-10, 0, 0}}, listener, params)
	if math.Abs(left.pan+1) > 1e-9 {
		t.Errorf("left source pan = %v, want -1", left.pan)
	}
	halfRight := spatialize(SpatialPosition{Position: Vec3{10, 0, -10}}, listener, params)
	if math.Abs(halfRight.pan-0.5) > 1e-9 {
		t.Errorf("45-degree source pan = %v, want 0.5", halfRight.pan)
	}
}

func TestSpatialize_ElevationIgnored(t *testing.T) {
	t.Parallel()

	listener := DefaultListener()
	params := DefaultSpatialParams()
	flat := spatialize(SpatialPosition{Position: Vec3{5, 0, -5}}, listener, params)
	raised := spatialize(SpatialPosition{Position: Vec3{5, 3, -5}}, listener, params)
	if math.Abs(flat.pan-raised.pan) > 1e-9 {
		t.Errorf("elevation changed pan: %v vs %v", flat.pan, raised.pan)
	}
}

func TestSpatialize_DopplerApproaching(t *testing.T) {
	t.Parallel()

	// source 10 m ahead moving toward the listener at 34.3 m/s
	res := spatialize(
		SpatialPosition{
			Position: Vec3{0, 0, -10},
			Velocity: Vec3{0, 0, 34.3},
		},
		DefaultListener(),
		DefaultSpatialParams(),
	)
	// radial velocity is -34.3 (closing), shift = (343 + 34.3)/343 = 1.1
	if math.Abs(res.pitchShift-1.1) > 1e-9 {
		t.Errorf("pitchShift = %v, want 1.1", res.pitchShift)
	}
}

func TestSpatialize_DopplerReceding(t *testing.T) {
	t.Parallel()

	res := spatialize(
		SpatialPosition{
			Position: Vec3{0, 0, -10},
			Velocity: Vec3{0, 0, -34.3},
		},
		DefaultListener(),
		DefaultSpatialParams(),
	)
	if math.Abs(res.pitchShift-0.9) > 1e-9 {
		t.Errorf("pitchShift = %v, want 0.9", res.pitchShift)
	}
}

func TestSpatialize_DopplerClamped(t *testing.T) {
	t.Parallel()

	// faster than sound toward the listener
	res := spatialize(
		SpatialPosition{
			Position: Vec3{0, 0, -10},
			Velocity: Vec3{0, 0, 500},
		},
		DefaultListener(),
		DefaultSpatialParams(),
	)
	if res.pitchShift != 2 {
		t.Errorf("pitchShift = %v, want clamp at 2", res.pitchShift)
	}
	res = spatialize(
		SpatialPosition{
			Position: Vec3{0, 0, -10},
			Velocity: Vec3{0, 0, -500},
		},
		DefaultListener(),
		DefaultSpatialParams(),
	)
	if res.pitchShift != 0.5 {
		t.Errorf("pitchShift = %v, want clamp at 0.5", res.pitchShift)
	}
}

func TestSpatialize_DopplerDisabled(t *testing.T) {
	t.Parallel()

	params := DefaultSpatialParams()
	params.DopplerEnabled = false
	res := spatialize(
		SpatialPosition{
			Position: Vec3{0, 0, -10},
			Velocity: Vec3{0, 0, 100},
		},
		DefaultListener(),
		params,
	)
	if res.pitchShift != 1 {
		t.Errorf("pitchShift = %v, want 1 with doppler off", res.pitchShift)
	}
}

func TestSpatialize_SourceAtListener(t *testing.T) {
	t.Parallel()

	res := spatialize(SpatialPosition{}, DefaultListener(), DefaultSpatialParams())
	if res.volume != 1 || res.pan != 0 || res.pitchShift != 1 {
		t.Errorf("coincident source = %+v, want full volume, centered, unshifted", res)
	}
}

func TestSpatialParams_Validate(t *testing.T) {
	t.Parallel()

	good := DefaultSpatialParams()
	if err := good.Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*SpatialParams)
	}{
		{"zero ref distance", func(p *SpatialParams) { p.RefDistance = 0 }},
		{"max below ref", func(p *SpatialParams) { p.MaxDistance = 0.5 }},
		{"negative rolloff", func(p *SpatialParams) { p.Rolloff = -1 }},
		{"zero speed of sound", func(p *SpatialParams) { p.SpeedOfSound = 0 }},
		{"negative doppler factor", func(p *SpatialParams) { p.DopplerFactor = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultSpatialParams()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}
