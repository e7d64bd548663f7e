// Package subpixel refines integer extremum locations to sub-sample
// precision and tracks mean-shift fixed points.
//
// Responsibilities: neighbourhood sampling, the fit models (centre of
// gravity, separable and joint parabolic/Gaussian), candidate orchestration
// with border rejection, and the mean-shift tracker.
// Key types: Location, Method, Polarity, MeanShiftTracker.
//
// Element types are resolved once at the API boundary: every exported
// entry point takes a grid.Image and dispatches to a generic
// implementation instantiated for the concrete grid.Real type.
//
// Minimum polarity negates every sample before fitting and negates the
// resulting value back, so the fit code only ever looks for maxima.
package subpixel
