// Package share produces shareable links to a point of interest.
package share

import (
	"fmt"
	"strconv"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/flyover/internal/camera"
)

// DefaultSize is the QR image edge in pixels.
const DefaultSize = 256

// GeoURI returns the RFC 5870 geo: URI for c.
func GeoURI(c camera.Coordinate) string {
	return "geo:" + strconv.FormatFloat(c.Latitude, 'f', 6, 64) + "," +
		strconv.FormatFloat(c.Longitude, 'f', 6, 64)
}

// QR encodes the geo: URI for c as a PNG.
func QR(c camera.Coordinate, size int) ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid coordinate %s", c)
	}
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(GeoURI(c), qrcode.Medium, size)
}

// WriteQR writes the QR code for c to path.
func WriteQR(path string, c camera.Coordinate, size int) error {
	if !c.Valid() {
		return fmt.Errorf("invalid coordinate %s", c)
	}
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.WriteFile(GeoURI(c), qrcode.Medium, size, path)
}
