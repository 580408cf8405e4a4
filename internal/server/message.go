package server

import (
	"time"

	"github.com/ivlev/flyover/internal/camera"
)

// MessageType names a websocket message.
type MessageType string

const (
	// outbound
	MessageTypeHello  MessageType = "hello"
	MessageTypeCamera MessageType = "camera"
	MessageTypeError  MessageType = "error"

	// inbound
	MessageTypeTarget    MessageType = "target"
	MessageTypeLifecycle MessageType = "lifecycle"
	MessageTypeTouch     MessageType = "touch"
)

const (
	ModeImmediate = "immediate"
	ModeAnimated  = "animated"
)

// Message is the JSON envelope exchanged with map clients.
type Message struct {
	Type MessageType `json:"type"`

	// camera
	Mode       string       `json:"mode,omitempty"`
	Pose       *camera.Pose `json:"pose,omitempty"`
	DurationMS int64        `json:"duration_ms,omitempty"`

	// hello; Supports3D false means draw a marker, no camera commands follow
	Client     string         `json:"client,omitempty"`
	Region     *camera.Region `json:"region,omitempty"`
	Backend    string         `json:"backend,omitempty"`
	Supports3D *bool          `json:"supports_3d,omitempty"`

	// target / lifecycle
	Center   *camera.Coordinate `json:"center,omitempty"`
	Altitude *float64           `json:"altitude,omitempty"`
	Phase    string             `json:"phase,omitempty"`

	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func cameraMessage(mode string, pose camera.Pose, d time.Duration) Message {
	return Message{
		Type:       MessageTypeCamera,
		Mode:       mode,
		Pose:       &pose,
		DurationMS: d.Milliseconds(),
		Timestamp:  time.Now(),
	}
}
