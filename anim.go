package edmfile

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// FrameScale is the number of frames that an argument range of [0, 1] is
// mapped to.
const FrameScale = 100

// Key tags.
const (
	TagPositionKey = "model::Key<key::POSITION>"
	TagRotationKey = "model::Key<key::ROTATION>"
	TagScaleKey    = "model::Key<key::SCALE>"
	TagFloatKey    = "model::Key<key::FLOAT>"
)

// PositionKey is a keyframe of a position track.
type PositionKey struct {
	Frame float64
	Value mgl64.Vec3
}

// RotationKey is a keyframe of a rotation track.
type RotationKey struct {
	Frame float64
	Value mgl64.Quat
}

// ScaleKey is a keyframe of a scale track. Only the first three components of
// the value are known to be a scale.
type ScaleKey struct {
	Frame float64
	Value mgl64.Vec4
}

// FloatKey is a keyframe of an animated float property.
type FloatKey struct {
	Frame float64
	Value float32
}

// PositionTrack is the position keys driven by one argument.
type PositionTrack struct {
	Argument uint32
	Keys     []PositionKey
}

// RotationTrack is the rotation keys driven by one argument.
type RotationTrack struct {
	Argument uint32
	Keys     []RotationKey
}

// ScaleTrack is the scale keys driven by one argument.
type ScaleTrack struct {
	Argument uint32
	Keys     []ScaleKey
}

// normalizeFrames maps frames onto [-FrameScale, FrameScale] by dividing by
// the largest absolute frame. Results are truncated toward zero.
func normalizeFrames(frames []float64) []int {
	var peak float64
	for _, f := range frames {
		if a := math.Abs(f); a > peak {
			peak = a
		}
	}
	out := make([]int, len(frames))
	if peak == 0 {
		return out
	}
	scale := FrameScale / peak
	for i, f := range frames {
		out[i] = int(f * scale)
	}
	return out
}

// Frames returns the frame of each key, normalized against the largest
// absolute frame of the track.
func (t PositionTrack) Frames() []int {
	frames := make([]float64, len(t.Keys))
	for i, k := range t.Keys {
		frames[i] = k.Frame
	}
	return normalizeFrames(frames)
}

// Frames returns the frame of each key, normalized against the largest
// absolute frame of the track.
func (t RotationTrack) Frames() []int {
	frames := make([]float64, len(t.Keys))
	for i, k := range t.Keys {
		frames[i] = k.Frame
	}
	return normalizeFrames(frames)
}

// Frames returns the frame of each key, normalized against the largest
// absolute frame of the track.
func (t ScaleTrack) Frames() []int {
	frames := make([]float64, len(t.Keys))
	for i, k := range t.Keys {
		frames[i] = k.Frame
	}
	return normalizeFrames(frames)
}

// Frames returns the frame of each key, normalized against the largest
// absolute frame of the property.
func (t ValueAnimatedFloat) Frames() []int {
	frames := make([]float64, len(t.Keys))
	for i, k := range t.Keys {
		frames[i] = k.Frame
	}
	return normalizeFrames(frames)
}

// bracket returns the indices of the keys surrounding frame within a sorted
// list of frames, and the interpolation factor between them.
func bracket(frames []float64, frame float64) (i, j int, t float64) {
	n := len(frames)
	j = sort.SearchFloat64s(frames, frame)
	switch {
	case j == 0:
		return 0, 0, 0
	case j == n:
		return n - 1, n - 1, 0
	}
	i = j - 1
	span := frames[j] - frames[i]
	if span == 0 {
		return i, j, 0
	}
	return i, j, (frame - frames[i]) / span
}

// Sample returns the interpolated position at frame. Keys need not be sorted.
// Returns the zero vector when the track has no keys.
func (t PositionTrack) Sample(frame float64) mgl64.Vec3 {
	if len(t.Keys) == 0 {
		return mgl64.Vec3{}
	}
	keys := append([]PositionKey(nil), t.Keys...)
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Frame < keys[j].Frame })
	frames := make([]float64, len(keys))
	for i, k := range keys {
		frames[i] = k.Frame
	}
	i, j, f := bracket(frames, frame)
	a, b := keys[i].Value, keys[j].Value
	return a.Add(b.Sub(a).Mul(f))
}

// Sample returns the spherically interpolated rotation at frame. Keys need not
// be sorted. Returns the identity when the track has no keys.
func (t RotationTrack) Sample(frame float64) mgl64.Quat {
	if len(t.Keys) == 0 {
		return mgl64.QuatIdent()
	}
	keys := append([]RotationKey(nil), t.Keys...)
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Frame < keys[j].Frame })
	frames := make([]float64, len(keys))
	for i, k := range keys {
		frames[i] = k.Frame
	}
	i, j, f := bracket(frames, frame)
	if i == j {
		return keys[i].Value
	}
	return mgl64.QuatSlerp(keys[i].Value, keys[j].Value, f)
}

////////////////////////////////////////////////////////////////

// ArgAnimation holds the rest transform and the animation tracks of an
// argument animation node.
type ArgAnimation struct {
	Matrix   mgl64.Mat4
	Position mgl64.Vec3
	// Orientation holds two rotations. Only the first takes part in the
	// rest transform.
	Orientation [2]mgl64.Quat
	Scale       mgl64.Vec3

	PositionTracks []PositionTrack
	RotationTracks []RotationTrack
	ScaleTracks    []ScaleTrack
}

// NewArgAnimation returns an animation with an identity rest transform.
func NewArgAnimation() ArgAnimation {
	return ArgAnimation{
		Matrix:      mgl64.Ident4(),
		Orientation: [2]mgl64.Quat{mgl64.QuatIdent(), mgl64.QuatIdent()},
		Scale:       mgl64.Vec3{1, 1, 1},
	}
}

// RestTransform returns the transform that animated values are applied on
// top of.
func (a *ArgAnimation) RestTransform() mgl64.Mat4 {
	return a.Matrix.
		Mul4(mgl64.Translate3D(a.Position[0], a.Position[1], a.Position[2])).
		Mul4(a.Orientation[0].Mat4()).
		Mul4(mgl64.Scale3D(a.Scale[0], a.Scale[1], a.Scale[2]))
}

// DuplicateArgumentError indicates that an argument drives more than one
// track of the same channel.
type DuplicateArgumentError struct {
	Channel  string
	Argument uint32
}

func (err DuplicateArgumentError) Error() string {
	return fmt.Sprintf("argument %d appears more than once in %s tracks", err.Argument, err.Channel)
}

// Validate returns an error if an argument appears twice within one channel.
func (a *ArgAnimation) Validate() error {
	seen := map[uint32]bool{}
	for _, t := range a.PositionTracks {
		if seen[t.Argument] {
			return DuplicateArgumentError{Channel: "position", Argument: t.Argument}
		}
		seen[t.Argument] = true
	}
	seen = map[uint32]bool{}
	for _, t := range a.RotationTracks {
		if seen[t.Argument] {
			return DuplicateArgumentError{Channel: "rotation", Argument: t.Argument}
		}
		seen[t.Argument] = true
	}
	seen = map[uint32]bool{}
	for _, t := range a.ScaleTracks {
		if seen[t.Argument] {
			return DuplicateArgumentError{Channel: "scale", Argument: t.Argument}
		}
		seen[t.Argument] = true
	}
	return nil
}

// Arguments returns each argument that drives a track, sorted and without
// duplicates.
func (a *ArgAnimation) Arguments() []uint32 {
	set := map[uint32]struct{}{}
	for _, t := range a.PositionTracks {
		set[t.Argument] = struct{}{}
	}
	for _, t := range a.RotationTracks {
		set[t.Argument] = struct{}{}
	}
	for _, t := range a.ScaleTracks {
		set[t.Argument] = struct{}{}
	}
	args := make([]uint32, 0, len(set))
	for arg := range set {
		args = append(args, arg)
	}
	sort.Slice(args, func(i, j int) bool { return args[i] < args[j] })
	return args
}

////////////////////////////////////////////////////////////////

// VisibleRange is a range of argument values within which an object is
// visible.
type VisibleRange struct {
	Start, End float64
}

// VisibilityTrack is the visible ranges driven by one argument.
type VisibilityTrack struct {
	Argument uint32
	Ranges   []VisibleRange
}

// VisibilityKey marks a change of visibility at a frame.
type VisibilityKey struct {
	Frame   int
	Visible bool
}

// Keyframes converts the ranges of the track into visibility changes on the
// normalized frame scale. When the first range does not begin at the start of
// the argument range, the object is hidden by an extra leading key.
func (t VisibilityTrack) Keyframes() []VisibilityKey {
	var keys []VisibilityKey
	if len(t.Ranges) > 0 && t.Ranges[0].Start >= -0.995 {
		keys = append(keys, VisibilityKey{Frame: -FrameScale, Visible: false})
	}
	for _, r := range t.Ranges {
		start := int(r.Start * FrameScale)
		end := FrameScale
		if r.End <= 1 {
			end = int(r.End * FrameScale)
		}
		keys = append(keys, VisibilityKey{Frame: start, Visible: true})
		if end < FrameScale {
			keys = append(keys, VisibilityKey{Frame: end, Visible: false})
		}
	}
	return keys
}
