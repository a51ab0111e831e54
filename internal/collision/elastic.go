package collision

import (
	"fmt"
	"math"

	"github.com/san-kum/dsmcdb/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// vssMinPerp is the transverse relative speed (m/s) below which the VSS
// rotation falls back to the axis-aligned form.
const vssMinPerp = 1e-6

// Elastic scatters isotropically in the centre-of-mass frame (VHS).
type Elastic struct {
	mu physics.ReducedMass
}

func NewElastic(mu physics.ReducedMass) (*Elastic, error) {
	if !mu.IsSet() {
		return nil, fmt.Errorf("%w: elastic model needs a reduced mass", ErrBadParameter)
	}
	return &Elastic{mu: mu}, nil
}

func (e *Elastic) Name() string { return "elastic" }

func (e *Elastic) Interact(a, b *physics.Particle, rng Rand) ([]physics.Particle, error) {
	vcm := centreOfMass(e.mu, a.Velocity, b.Velocity)
	speed := r3.Norm(r3.Sub(a.Velocity, b.Velocity))

	cosChi := 2*rng.Float64() - 1
	sinChi := math.Sqrt(1 - cosChi*cosChi)
	eps := 2 * math.Pi * rng.Float64()
	post := r3.Vec{
		X: cosChi * speed,
		Y: sinChi * math.Cos(eps) * speed,
		Z: sinChi * math.Sin(eps) * speed,
	}

	scatter(e.mu, a, b, vcm, post)
	return nil, nil
}

// VSS is variable soft sphere scattering. The deflection angle follows
// cos χ = 2u^(1/α) - 1 and the new relative velocity is rotated out of the
// pre-collision one, which keeps the forward bias of α > 1.
type VSS struct {
	mu    physics.ReducedMass
	alpha float64 // 1/α
}

func NewVSS(mu physics.ReducedMass, paramInv float64) (*VSS, error) {
	if !mu.IsSet() {
		return nil, fmt.Errorf("%w: vss model needs a reduced mass", ErrBadParameter)
	}
	if !(paramInv > 0) || math.IsInf(paramInv, 0) {
		return nil, fmt.Errorf("%w: vss_param_inv=%g", ErrBadParameter, paramInv)
	}
	return &VSS{mu: mu, alpha: paramInv}, nil
}

func (v *VSS) Name() string { return "vss" }

func (v *VSS) Interact(a, b *physics.Particle, rng Rand) ([]physics.Particle, error) {
	vcm := centreOfMass(v.mu, a.Velocity, b.Velocity)
	g := r3.Sub(a.Velocity, b.Velocity)
	speed := r3.Norm(g)

	cosChi := 2*math.Pow(rng.Float64(), v.alpha) - 1
	sinChi := math.Sqrt(1 - cosChi*cosChi)
	eps := 2 * math.Pi * rng.Float64()
	sinEps, cosEps := math.Sincos(eps)

	var post r3.Vec
	if perp := math.Hypot(g.Y, g.Z); perp > vssMinPerp {
		post = r3.Vec{
			X: cosChi*g.X + sinChi*sinEps*perp,
			Y: cosChi*g.Y + sinChi*(speed*cosEps*g.Z-g.X*g.Y*sinEps)/perp,
			Z: cosChi*g.Z - sinChi*(speed*cosEps*g.Y+g.X*g.Z*sinEps)/perp,
		}
	} else {
		post = r3.Vec{
			X: cosChi * g.X,
			Y: sinChi * cosEps * g.X,
			Z: sinChi * sinEps * g.X,
		}
	}

	scatter(v.mu, a, b, vcm, post)
	return nil, nil
}

func centreOfMass(mu physics.ReducedMass, v1, v2 r3.Vec) r3.Vec {
	return r3.Add(r3.Scale(mu.OverM2, v1), r3.Scale(mu.OverM1, v2))
}

// scatter applies a post-collision relative velocity to the pair.
func scatter(mu physics.ReducedMass, a, b *physics.Particle, vcm, post r3.Vec) {
	a.Velocity = r3.Add(vcm, r3.Scale(mu.OverM1, post))
	b.Velocity = r3.Sub(vcm, r3.Scale(mu.OverM2, post))
}
