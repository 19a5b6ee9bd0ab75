package edm

import (
	"fmt"

	"github.com/edmtools/edmfile"
)

func registerNodes(reg *Registry) {
	node := func(decode func(r *Reader, tag string) (edmfile.Element, bool), encode func(w *Writer, e edmfile.Element) bool) Codec {
		return Codec{Category: CategoryNode, Decode: decode, Encode: encode}
	}
	reg.Register(edmfile.TagRootNode, node(decodeRootNode, encodeRootNode))
	reg.Register(edmfile.TagNode, node(decodePlainNode, encodePlainNode))
	reg.Register(edmfile.TagTransformNode, node(decodeTransformNode, encodeTransformNode))
	reg.Register(edmfile.TagBone, node(decodeBone, encodeBone))
	reg.Register(edmfile.TagArgAnimatedBone, node(decodeArgAnimatedBone, encodeArgAnimatedBone))
	reg.Register(edmfile.TagArgAnimationNode, node(decodeArgAnimationNode, encodeArgAnimationNode))
	reg.Register(edmfile.TagArgRotationNode, node(decodeArgAnimationNode, encodeArgAnimationNode))
	reg.Register(edmfile.TagArgPositionNode, node(decodeArgAnimationNode, encodeArgAnimationNode))
	reg.Register(edmfile.TagArgScaleNode, node(decodeArgAnimationNode, encodeArgAnimationNode))
	reg.Register(edmfile.TagArgVisibilityNode, node(decodeArgVisibilityNode, encodeArgVisibilityNode))
	reg.Register(edmfile.TagLodNode, node(decodeLodNode, encodeLodNode))
	reg.Register(edmfile.TagBillboardNode, node(decodeBillboardNode, encodeBillboardNode))
	reg.Register(edmfile.TagSegmentsNode, node(decodeSegmentsNode, encodeSegmentsNode))
	reg.Register(edmfile.TagFakeOmniLightsNode, node(decodeFakeOmniLightsNode, encodeFakeOmniLightsNode))
	reg.Register(edmfile.TagFakeSpotLightsNode, node(decodeFakeSpotLightsNode, encodeFakeSpotLightsNode))
	reg.Register(edmfile.TagFakeALSNode, node(decodeFakeALSNode, encodeFakeALSNode))
}

func typeError(e edmfile.Element, want string) error {
	return fmt.Errorf("cannot encode %T as %s", e, want)
}

func readRef(r *Reader, ref *edmfile.Ref) bool {
	var v uint32
	if r.Uint32(&v) {
		return true
	}
	*ref = edmfile.Ref(int32(v))
	return false
}

func writeRef(w *Writer, ref edmfile.Ref) bool {
	return w.Uint32(uint32(ref))
}

////////////////////////////////////////////////////////////////

func decodeRootNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.RootNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if r.Uint8(&n.UnknownA) {
		return nil, true
	}
	if r.Vec3d(&n.BoundingBoxMin) {
		return nil, true
	}
	if r.Vec3d(&n.BoundingBoxMax) {
		return nil, true
	}
	for i := range n.UnknownB {
		if r.Vec3d(&n.UnknownB[i]) {
			return nil, true
		}
	}
	var failed bool
	if n.Materials, failed = ReadList(r, readMaterial); failed {
		return nil, true
	}
	for i := range n.UnknownC {
		if r.Uint32(&n.UnknownC[i]) {
			return nil, true
		}
	}
	return n, false
}

func encodeRootNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.RootNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagRootNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	if w.Uint8(n.UnknownA) {
		return true
	}
	if w.Vec3d(n.BoundingBoxMin) || w.Vec3d(n.BoundingBoxMax) {
		return true
	}
	for _, v := range n.UnknownB {
		if w.Vec3d(v) {
			return true
		}
	}
	if WriteList(w, n.Materials, writeMaterial) {
		return true
	}
	for _, v := range n.UnknownC {
		if w.Uint32(v) {
			return true
		}
	}
	return false
}

////////////////

func decodePlainNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.PlainNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	return n, false
}

func encodePlainNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.PlainNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagNode))
	}
	return writeBase(w, &n.NodeBase)
}

////////////////

func decodeTransformNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.TransformNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if r.Matrixd(&n.Matrix) {
		return nil, true
	}
	return n, false
}

func encodeTransformNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.TransformNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagTransformNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	return w.Matrixd(n.Matrix)
}

////////////////

func decodeBone(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.Bone{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if r.Matrixd(&n.Matrix) {
		return nil, true
	}
	if r.Matrixd(&n.InverseMatrix) {
		return nil, true
	}
	return n, false
}

func encodeBone(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.Bone)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagBone))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	if w.Matrixd(n.Matrix) {
		return true
	}
	return w.Matrixd(n.InverseMatrix)
}

////////////////

func decodeArgAnimatedBone(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.ArgAnimatedBone{}
	if r.String(&n.Name) {
		return nil, true
	}
	if r.Bytes(n.Data[:]) {
		return nil, true
	}
	return n, false
}

func encodeArgAnimatedBone(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.ArgAnimatedBone)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagArgAnimatedBone))
	}
	if w.String(n.Name) {
		return true
	}
	return w.Bytes(n.Data[:])
}

////////////////

func decodeArgAnimationNode(r *Reader, tag string) (edmfile.Element, bool) {
	var base edmfile.NodeBase
	if readBase(r, &base) {
		return nil, true
	}
	var anim edmfile.ArgAnimation
	if readArgAnimation(r, &anim) {
		return nil, true
	}
	switch tag {
	case edmfile.TagArgRotationNode:
		return &edmfile.ArgRotationNode{NodeBase: base, ArgAnimation: anim}, false
	case edmfile.TagArgPositionNode:
		return &edmfile.ArgPositionNode{NodeBase: base, ArgAnimation: anim}, false
	case edmfile.TagArgScaleNode:
		return &edmfile.ArgScaleNode{NodeBase: base, ArgAnimation: anim}, false
	}
	return &edmfile.ArgAnimationNode{NodeBase: base, ArgAnimation: anim}, false
}

func encodeArgAnimationNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(edmfile.Node)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagArgAnimationNode))
	}
	anim := edmfile.Animation(n)
	if anim == nil {
		return w.Fail(typeError(e, edmfile.TagArgAnimationNode))
	}
	if writeBase(w, n.Base()) {
		return true
	}
	return writeArgAnimation(w, anim)
}

func readArgAnimation(r *Reader, a *edmfile.ArgAnimation) bool {
	if r.Matrixd(&a.Matrix) {
		return true
	}
	if r.Vec3d(&a.Position) {
		return true
	}
	if r.Quatd(&a.Orientation[0]) || r.Quatd(&a.Orientation[1]) {
		return true
	}
	if r.Vec3d(&a.Scale) {
		return true
	}
	var failed bool
	if a.PositionTracks, failed = ReadList(r, readPositionTrack); failed {
		return true
	}
	if a.RotationTracks, failed = ReadList(r, readRotationTrack); failed {
		return true
	}
	if a.ScaleTracks, failed = ReadList(r, readScaleTrack); failed {
		return true
	}
	return false
}

func writeArgAnimation(w *Writer, a *edmfile.ArgAnimation) bool {
	if len(a.ScaleTracks) > 0 {
		return w.Fail(UnsupportedError{Feature: "writing scale tracks"})
	}
	if w.Matrixd(a.Matrix) {
		return true
	}
	if w.Vec3d(a.Position) {
		return true
	}
	if w.Quatd(a.Orientation[0]) || w.Quatd(a.Orientation[1]) {
		return true
	}
	if w.Vec3d(a.Scale) {
		return true
	}
	if WriteList(w, a.PositionTracks, writePositionTrack) {
		return true
	}
	if WriteList(w, a.RotationTracks, writeRotationTrack) {
		return true
	}
	return WriteList(w, a.ScaleTracks, writeScaleTrack)
}

func readPositionTrack(r *Reader, t *edmfile.PositionTrack) bool {
	if r.Uint32(&t.Argument) {
		return true
	}
	var failed bool
	t.Keys, failed = ReadList(r, func(r *Reader, k *edmfile.PositionKey) bool {
		if r.Float64(&k.Frame) {
			return true
		}
		return r.Vec3d(&k.Value)
	})
	return failed
}

func writePositionTrack(w *Writer, t edmfile.PositionTrack) bool {
	if w.Uint32(t.Argument) {
		return true
	}
	return WriteList(w, t.Keys, func(w *Writer, k edmfile.PositionKey) bool {
		if w.Float64(k.Frame) {
			return true
		}
		return w.Vec3d(k.Value)
	})
}

func readRotationTrack(r *Reader, t *edmfile.RotationTrack) bool {
	if r.Uint32(&t.Argument) {
		return true
	}
	var failed bool
	t.Keys, failed = ReadList(r, func(r *Reader, k *edmfile.RotationKey) bool {
		if r.Float64(&k.Frame) {
			return true
		}
		return r.Quatd(&k.Value)
	})
	return failed
}

func writeRotationTrack(w *Writer, t edmfile.RotationTrack) bool {
	if w.Uint32(t.Argument) {
		return true
	}
	return WriteList(w, t.Keys, func(w *Writer, k edmfile.RotationKey) bool {
		if w.Float64(k.Frame) {
			return true
		}
		return w.Quatd(k.Value)
	})
}

func readScaleTrack(r *Reader, t *edmfile.ScaleTrack) bool {
	if r.Uint32(&t.Argument) {
		return true
	}
	var failed bool
	t.Keys, failed = ReadList(r, func(r *Reader, k *edmfile.ScaleKey) bool {
		if r.Float64(&k.Frame) {
			return true
		}
		return r.Float64s(k.Value[:])
	})
	return failed
}

func writeScaleTrack(w *Writer, t edmfile.ScaleTrack) bool {
	if w.Uint32(t.Argument) {
		return true
	}
	return WriteList(w, t.Keys, func(w *Writer, k edmfile.ScaleKey) bool {
		if w.Float64(k.Frame) {
			return true
		}
		return w.Float64s(k.Value[:])
	})
}

////////////////

func decodeArgVisibilityNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.ArgVisibilityNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	var failed bool
	n.Tracks, failed = ReadList(r, func(r *Reader, t *edmfile.VisibilityTrack) bool {
		if r.Uint32(&t.Argument) {
			return true
		}
		var failed bool
		t.Ranges, failed = ReadList(r, func(r *Reader, v *edmfile.VisibleRange) bool {
			if r.Float64(&v.Start) {
				return true
			}
			return r.Float64(&v.End)
		})
		return failed
	})
	if failed {
		return nil, true
	}
	return n, false
}

func encodeArgVisibilityNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.ArgVisibilityNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagArgVisibilityNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	return WriteList(w, n.Tracks, func(w *Writer, t edmfile.VisibilityTrack) bool {
		if w.Uint32(t.Argument) {
			return true
		}
		return WriteList(w, t.Ranges, func(w *Writer, v edmfile.VisibleRange) bool {
			if w.Float64(v.Start) {
				return true
			}
			return w.Float64(v.End)
		})
	})
}

////////////////

func decodeLodNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.LodNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	var failed bool
	n.Levels, failed = ReadList(r, func(r *Reader, v *edmfile.LodLevel) bool {
		return r.Float32s(v[:])
	})
	if failed {
		return nil, true
	}
	return n, false
}

func encodeLodNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.LodNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagLodNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	return WriteList(w, n.Levels, func(w *Writer, v edmfile.LodLevel) bool {
		return w.Float32s(v[:])
	})
}

////////////////

func decodeBillboardNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.BillboardNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if r.Bytes(n.Data[:]) {
		return nil, true
	}
	return n, false
}

func encodeBillboardNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.BillboardNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagBillboardNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	return w.Bytes(n.Data[:])
}

////////////////

func decodeSegmentsNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.SegmentsNode{}
	if readBase(r, &n.NodeBase) {
		return nil, true
	}
	if r.Uint32(&n.Unknown) {
		return nil, true
	}
	var failed bool
	n.Segments, failed = ReadList(r, func(r *Reader, v *edmfile.Segment) bool {
		return r.Float32s(v[:])
	})
	if failed {
		return nil, true
	}
	return n, false
}

func encodeSegmentsNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.SegmentsNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagSegmentsNode))
	}
	if writeBase(w, &n.NodeBase) {
		return true
	}
	if w.Uint32(n.Unknown) {
		return true
	}
	return WriteList(w, n.Segments, func(w *Writer, v edmfile.Segment) bool {
		return w.Float32s(v[:])
	})
}

////////////////

func readUnknown5(r *Reader, v *[5]uint32) bool {
	for i := range v {
		if r.Uint32(&v[i]) {
			return true
		}
	}
	return false
}

func writeUnknown5(w *Writer, v [5]uint32) bool {
	for _, u := range v {
		if w.Uint32(u) {
			return true
		}
	}
	return false
}

func decodeFakeOmniLightsNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.FakeOmniLightsNode{}
	if readBase(r, &n.NodeBase) || readUnknown5(r, &n.Unknown) {
		return nil, true
	}
	var failed bool
	n.Lights, failed = ReadList(r, func(r *Reader, v *edmfile.FakeOmniLight) bool {
		return r.Float64s(v[:])
	})
	if failed {
		return nil, true
	}
	return n, false
}

func encodeFakeOmniLightsNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.FakeOmniLightsNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagFakeOmniLightsNode))
	}
	if writeBase(w, &n.NodeBase) || writeUnknown5(w, n.Unknown) {
		return true
	}
	return WriteList(w, n.Lights, func(w *Writer, v edmfile.FakeOmniLight) bool {
		return w.Float64s(v[:])
	})
}

func decodeFakeSpotLightsNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.FakeSpotLightsNode{}
	if readBase(r, &n.NodeBase) || readUnknown5(r, &n.Unknown) {
		return nil, true
	}
	var failed bool
	n.Lights, failed = ReadList(r, func(r *Reader, v *edmfile.FakeSpotLight) bool {
		return r.Bytes(v[:])
	})
	if failed {
		return nil, true
	}
	return n, false
}

func encodeFakeSpotLightsNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.FakeSpotLightsNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagFakeSpotLightsNode))
	}
	if writeBase(w, &n.NodeBase) || writeUnknown5(w, n.Unknown) {
		return true
	}
	return WriteList(w, n.Lights, func(w *Writer, v edmfile.FakeSpotLight) bool {
		return w.Bytes(v[:])
	})
}

func decodeFakeALSNode(r *Reader, tag string) (edmfile.Element, bool) {
	n := &edmfile.FakeALSNode{}
	if readBase(r, &n.NodeBase) || readUnknown5(r, &n.Unknown) {
		return nil, true
	}
	var failed bool
	n.Lights, failed = ReadList(r, func(r *Reader, v *edmfile.FakeALSLight) bool {
		return r.Bytes(v[:])
	})
	if failed {
		return nil, true
	}
	return n, false
}

func encodeFakeALSNode(w *Writer, e edmfile.Element) bool {
	n, ok := e.(*edmfile.FakeALSNode)
	if !ok {
		return w.Fail(typeError(e, edmfile.TagFakeALSNode))
	}
	if writeBase(w, &n.NodeBase) || writeUnknown5(w, n.Unknown) {
		return true
	}
	return WriteList(w, n.Lights, func(w *Writer, v edmfile.FakeALSLight) bool {
		return w.Bytes(v[:])
	})
}
