package resound

import (
	"fmt"
	"math"

	mgl "github.com/go-gl/mathgl/mgl64"
)

// Vec3 is the spatial vector type, re-exported so callers do not need
// to import mathgl themselves.
type Vec3 = mgl.Vec3

// AttenuationModel selects how volume falls off with distance.
type AttenuationModel int

const (
	AttenuationNone AttenuationModel = iota
	AttenuationLinear
	AttenuationInverse
	AttenuationInverseSquare
	AttenuationExponential
)

// SpatialPosition attaches a 3D location and velocity to an event.
type SpatialPosition struct {
	Position Vec3
	Velocity Vec3
}

// ListenerConfig places the listener in the scene. Forward and Up
// should be unit length; the right vector is derived as forward x up.
type ListenerConfig struct {
	Position Vec3
	Forward  Vec3
	Up       Vec3
	Velocity Vec3
}

// DefaultListener sits at the origin facing -Z with +Y up.
func DefaultListener() ListenerConfig {
	return ListenerConfig{
		Forward: mgl.Vec3{0, 0, -1},
		Up:      mgl.Vec3{0, 1, 0},
	}
}

// SpatialParams configures attenuation and doppler.
type SpatialParams struct {
	Model          AttenuationModel
	RefDistance    float64 // > 0
	MaxDistance    float64 // > RefDistance; silence beyond it
	Rolloff        float64 // >= 0
	SpeedOfSound   float64 // > 0
	DopplerEnabled bool
	DopplerFactor  float64 // >= 0
}

// DefaultSpatialParams uses inverse-square attenuation and doppler at
// 343 m/s.
func DefaultSpatialParams() SpatialParams {
	return SpatialParams{
		Model:          AttenuationInverseSquare,
		RefDistance:    1,
		MaxDistance:    100,
		Rolloff:        1,
		SpeedOfSound:   343,
		DopplerEnabled: true,
		DopplerFactor:  1,
	}
}

// Validate checks the parameter ranges.
func (p SpatialParams) Validate() error {
	if !isFinite(p.RefDistance) || p.RefDistance <= 0 {
		return fmt.Errorf("%w: ref distance %v", ErrInvalidParameter, p.RefDistance)
	}
	if !isFinite(p.MaxDistance) || p.MaxDistance <= p.RefDistance {
		return fmt.Errorf("%w: max distance %v must exceed ref distance %v",
			ErrInvalidParameter, p.MaxDistance, p.RefDistance)
	}
	if !isFinite(p.Rolloff) || p.Rolloff < 0 {
		return fmt.Errorf("%w: rolloff %v", ErrInvalidParameter, p.Rolloff)
	}
	if !isFinite(p.SpeedOfSound) || p.SpeedOfSound <= 0 {
		return fmt.Errorf("%w: speed of sound %v", ErrInvalidParameter, p.SpeedOfSound)
	}
	if !isFinite(p.DopplerFactor) || p.DopplerFactor < 0 {
		return fmt.Errorf("%w: doppler factor %v", ErrInvalidParameter, p.DopplerFactor)
	}
	return nil
}

// spatialResult is the per-event mix contribution computed from 3D
// state.
type spatialResult struct {
	volume     float64
	pan        float64 // [-1,1]
	pitchShift float64 // multiplies the resampler ratio
}

// attenuate computes the distance gain for the configured model.
func (p SpatialParams) attenuate(d float64) float64 {
	if d >= p.MaxDistance {
		return 0
	}
	if d <= p.RefDistance {
		return 1
	}
	switch p.Model {
	case AttenuationNone:
		return 1
	case AttenuationLinear:
		g := 1 - p.Rolloff*(d-p.RefDistance)/(p.MaxDistance-p.RefDistance)
		return clamp(g, 0, 1)
	case AttenuationInverse:
		return p.RefDistance / (p.RefDistance + p.Rolloff*(d-p.RefDistance))
	case AttenuationInverseSquare:
		r := d / p.RefDistance
		return 1 / (r * r)
	case AttenuationExponential:
		return math.Pow(d/p.RefDistance, -p.Rolloff)
	}
	return 1
}

// spatialize computes (volume, pan, pitch shift) for a source relative
// to the listener.
func spatialize(src SpatialPosition, listener ListenerConfig, params SpatialParams) spatialResult {
	toSource := src.Position.Sub(listener.Position)
	d := toSource.Len()

	res := spatialResult{volume: 1, pitchShift: 1}
	if d < 1e-9 {
		// Source on top of the listener: full volume, centered.
		return res
	}

	res.volume = params.attenuate(d)

	// Azimuth between listener forward and the source direction, both
	// projected onto the XZ plane.
	fwd := mgl.Vec3{listener.Forward.X(), 0, listener.Forward.Z()}
	dir := mgl.Vec3{toSource.X(), 0, toSource.Z()}
	if fwd.Len() > 1e-9 && dir.Len() > 1e-9 {
		fwd = fwd.Normalize()
		dir = dir.Normalize()
		// dir x fwd so a source on the listener's right comes out with
		// positive pan under Y-up coordinates.
		cross := dir.Cross(fwd)
		theta := math.Atan2(cross.Y(), fwd.Dot(dir))
		res.pan = clamp(theta, -math.Pi/2, math.Pi/2) / (math.Pi / 2)
	}

	if params.DopplerEnabled && params.DopplerFactor > 0 {
		u := toSource.Mul(1 / d)
		vSource := src.Velocity.Dot(u)
		vListener := listener.Velocity.Dot(u)
		c := params.SpeedOfSound
		shift := (c - (vSource-vListener)*params.DopplerFactor) / c
		res.pitchShift = clamp(shift, 0.5, 2.0)
	}
	return res
}
