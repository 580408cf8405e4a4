package surface

import (
	"fmt"
	"strings"
	"time"

	"github.com/ivlev/flyover/internal/camera"
)

const (
	Backend3D   = "3d"
	BackendFlat = "flat"
)

// Flat is a rendering backend without a 3D camera. Every command is accepted
// and ignored; the count of ignored commands is kept for reports.
type Flat struct {
	Dropped int
}

func (f *Flat) SetCameraImmediate(camera.Pose) { f.Dropped++ }

func (f *Flat) SetCameraAnimated(camera.Pose, time.Duration) { f.Dropped++ }

// Supports3D reports whether the actuator honours 3D camera commands.
func Supports3D(a camera.Actuator) bool {
	_, flat := a.(*Flat)
	return !flat
}

// ForBackend returns the actuator to command for the named backend. The 3D
// backend commands inner directly; the flat backend never reaches it.
func ForBackend(backend string, inner camera.Actuator) (camera.Actuator, error) {
	switch strings.ToLower(backend) {
	case Backend3D, "":
		return inner, nil
	case BackendFlat, "2d", "web":
		return &Flat{}, nil
	default:
		return nil, fmt.Errorf("unknown map backend: %s", backend)
	}
}
