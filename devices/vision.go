package devices

import (
	"brainrtos-go/errcode"
	"brainrtos-go/kernel"
	"brainrtos-go/ports"
)

// Vision is the object-recognition camera.
type Vision struct {
	port uint8
}

// NewVision consumes the port token. The constructor verifies the camera
// responds; an empty field of view still counts as responding. The port
// stays consumed on failure.
func NewVision(p ports.Port) (*Vision, error) {
	v := &Vision{port: p.Index()}
	if n, st := kernel.Active().VisionGetObjectCount(v.port); n == kernel.ErrValue && st != kernel.StatusEDom {
		return nil, errcode.New(errcode.Vision, st, "vision.new", int(v.port))
	}
	return v, nil
}

// Port returns the smart port the camera occupies.
func (v *Vision) Port() uint8 { return v.port }

// ObjectCount reads how many recognised objects are in view. Seeing none is
// reported as VisionObjectsDeficit, not as zero.
func (v *Vision) ObjectCount() (int32, error) {
	n, st := kernel.Active().VisionGetObjectCount(v.port)
	if n == kernel.ErrValue {
		return 0, errcode.New(errcode.Vision, st, "vision.object_count", int(v.port))
	}
	return n, nil
}
