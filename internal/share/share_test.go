package share

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/flyover/internal/camera"
)

func TestGeoURI(t *testing.T) {
	tests := []struct {
		name string
		c    camera.Coordinate
		want string
	}{
		{"north east", camera.Coordinate{Latitude: 55.7558, Longitude: 37.6173}, "geo:55.755800,37.617300"},
		{"south west", camera.Coordinate{Latitude: -33.8688, Longitude: -151.2093}, "geo:-33.868800,-151.209300"},
		{"origin", camera.Coordinate{}, "geo:0.000000,0.000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GeoURI(tt.c); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestQR(t *testing.T) {
	data, err := QR(camera.Coordinate{Latitude: 48.8584, Longitude: 2.2945}, 128)
	if err != nil {
		t.Fatalf("QR failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Expected a PNG: %v", err)
	}
	if w := img.Bounds().Dx(); w != 128 {
		t.Errorf("Expected width 128, got %d", w)
	}

	if _, err := QR(camera.Coordinate{Latitude: math.NaN()}, 128); err == nil {
		t.Error("Expected error for invalid coordinate")
	}
}

func TestWriteQR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "share.png")
	if err := WriteQR(path, camera.Coordinate{Latitude: 1, Longitude: 2}, 0); err != nil {
		t.Fatalf("WriteQR failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("Expected a non-empty file")
	}
}
