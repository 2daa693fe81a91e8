// Package viz replays stored swing trajectories in the terminal.
//
// The replay is a Bubble Tea program drawing on a braille [Canvas]: each cell
// holds a 2x4 dot block, and a [Viewport] maps metres onto dots with a single
// scale so the arc keeps its shape.
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from the first sample
//	[ ]   - Scrub backward/forward
//	+ -   - Change playback speed
//	T     - Cycle color themes
//	?     - Show help
//	Q     - Quit
package viz
