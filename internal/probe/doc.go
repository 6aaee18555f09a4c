// Package probe inspects encoded outputs with ffprobe and checks them
// against the profile that produced them.
//
// Types:
//   - FormatInfo, VideoStream, Result
//
// Functions:
//   - Probe(ctx, prober, path) → *Result
//     Runs ffprobe -print_format json -show_format -show_streams.
//   - ParseJSON(data) → *Result
//   - Verify(result, profile) → error wrapping ErrVerify
//     Checks for at least one stream, the profile's video codec, and the
//     profile's target scale when one is set.
package probe
