// Package analysis provides post-run diagnostics for three-body trajectories.
//
//   - [SensitivityExponent]: finite-time Lyapunov estimate from a twin run
//   - [ConvergenceOrder]: observed order of accuracy by step halving
//   - [GeneratePhasePortrait]: one body projected onto two coordinates
//   - [PoincareSection]: upward crossings of y = 0 and their period
//   - [MassSweep]: outcome of a run as one mass varies
//
// # Chaos Detection
//
// Nearby starts separate faster in chaotic configurations:
//
//	lambda := analysis.SensitivityExponent(sim.DefaultStepper(), x0, 10, 1e-8)
package analysis
