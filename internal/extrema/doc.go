// Package extrema finds candidate extrema for the sub-pixel locator.
//
// Responsibilities: plateau labelling of local maxima/minima, masking,
// border clearing and plain non-zero coordinate search.
// Key functions: DetectLocalExtrema, ApplyMask, ClearBorderRegions, Find.
//
// Label images are *grid.Grid[uint32] with 0 meaning background.
package extrema
