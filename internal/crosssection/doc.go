// Package crosssection provides cross-section models σ(v) for pairwise
// collisions as a function of relative speed:
//
//   - [Constant]: velocity independent
//   - [VHS]: variable hard sphere, analytic
//   - [Tabulated]: linear interpolation of measured data with an asymptotic
//     ln(E)/E tail past the last point
//   - [Averaged]: mean-diameter combination of two models
//   - [Lotz]: semi-empirical electron-impact ionization
//
// Every model also answers MaxSigmaV, the largest σ(v)·v below a speed
// bound, which seeds the majorant of the collision selection.
//
// Models are built from a [Spec] through [New], which looks the model name
// up in a label registry. Built models are immutable and safe for concurrent
// use.
package crosssection
