// Package naming derives output file paths from input files and profiles,
// and guards a run against two jobs writing the same output file.
//
// Path derivation is pure: the same input name, profile, and output root
// always give the same path, independent of scheduling order.
//
//	<outputDir>/<stem><profile suffix><profile extension>
//	clip.mp4 + vp9 (-vp9, .webm)  ->  out/clip-vp9.webm
//
// Two inputs whose names differ only by extension (clip.mp4, clip.mov) share
// a stem and therefore every output path. [CollisionResolver] detects this
// before any job is dispatched and either fails the run or renames the
// later claimant with a " - dupN" stem suffix.
package naming
