// Package physics provides the small value types shared by the collision
// core:
//
//   - [ReducedMass]: μ = m1·m2/(m1+m2) with cached mass ratios
//   - [Particle]: species index plus velocity
//   - thermal sampling and conservation helpers
//
// All quantities are SI (kg, m/s, J).
//
// # Reduced mass ratios
//
// OverM1 = μ/m1 and OverM2 = μ/m2, so the centre-of-mass velocity of a pair
// is OverM2·v1 + OverM1·v2:
//
//	mu, _ := physics.NewReducedMass(m1, m2)
//	vcm := r3.Add(r3.Scale(mu.OverM2, v1), r3.Scale(mu.OverM1, v2))
package physics
