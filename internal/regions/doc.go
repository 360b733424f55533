// Package regions labels regional extrema and measures labelled regions.
//
// LabelMaxima and LabelMinima produce a Labels value in which each connected
// plateau forming a regional extremum carries its own number. Measure reports
// the centroid, pixel count and mean intensity of each label in pixel units.
package regions
