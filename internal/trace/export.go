package trace

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/flyover/internal/camera"
)

// Document is the on-disk form of a trace.
type Document struct {
	Version  string    `yaml:"version"`
	Session  string    `yaml:"session"`
	Commands []Command `yaml:"commands"`
}

// WriteYAML writes the recorded commands to path.
func (r *Recorder) WriteYAML(path, session string) error {
	doc := Document{Version: "1.0", Session: session, Commands: r.Commands}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadYAML reads a trace written by WriteYAML.
func ReadYAML(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse trace %s: %w", path, err)
	}
	return &doc, nil
}

func toPoint(c camera.Coordinate) orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// FeatureCollection converts the trace to GeoJSON: one point per orbited
// center with its frame count, and one line per animated transition.
func (r *Recorder) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	frames := map[camera.Coordinate]int{}
	var order []camera.Coordinate
	var prev *camera.Coordinate

	for _, c := range r.Commands {
		center := c.Pose.Center
		if c.Kind == Animated && prev != nil && *prev != center {
			line := orb.LineString{toPoint(*prev), toPoint(center)}
			f := geojson.NewFeature(line)
			f.Properties["kind"] = "transition"
			f.Properties["at_ms"] = c.At.Milliseconds()
			f.Properties["duration_ms"] = c.Duration.Milliseconds()
			f.Properties["distance_m"] = geo.Distance(toPoint(*prev), toPoint(center))
			fc.Append(f)
		}
		if c.Kind == Immediate {
			if _, ok := frames[center]; !ok {
				order = append(order, center)
			}
			frames[center]++
		}
		cc := center
		prev = &cc
	}

	for _, center := range order {
		f := geojson.NewFeature(toPoint(center))
		f.Properties["kind"] = "orbit"
		f.Properties["frames"] = frames[center]
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes FeatureCollection to path.
func (r *Recorder) WriteGeoJSON(path string) error {
	data, err := r.FeatureCollection().MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// TravelDistance sums the great-circle length of every transition in meters.
func (r *Recorder) TravelDistance() float64 {
	total := 0.0
	var prev *camera.Coordinate
	for _, c := range r.Commands {
		center := c.Pose.Center
		if c.Kind == Animated && prev != nil {
			total += geo.Distance(toPoint(*prev), toPoint(center))
		}
		cc := center
		prev = &cc
	}
	return total
}
