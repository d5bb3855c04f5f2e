// Package viz renders a running three-body simulation in the terminal.
//
// [Model] is a Bubble Tea program over a [sim.Driver]. Each frame it ticks
// the driver, records positions into fixed-capacity trails and draws them
// on a braille [Canvas] whose cells carry the body colours, older trail
// segments fading toward the background.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the initial conditions
//	I     - Edit initial conditions (x vx y vy per body)
//	M     - Edit masses
//	D     - Edit step size
//	C     - Edit body colours
//	B     - Cycle background (white, red, black, blue)
//	S     - Toggle axes
//	H     - Hide the info panel
//	A     - About
//	+/-   - Zoom
//	Q     - Quit
//
// Edits are validated when entered and queued on [sim.Updates]; the driver
// applies them between ticks, also while paused.
package viz
