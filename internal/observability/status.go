package observability

import (
	"sync"
	"time"
)

// State is the coarse session state exposed on /status.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateStreaming  State = "streaming"
	StateWaiting    State = "waiting"
	StateStopped    State = "stopped"
)

// StreamInfo is the negotiated frame format of the live connection.
type StreamInfo struct {
	BufferSize  uint32 `json:"buffer_size"`
	Pitch       uint16 `json:"pitch"`
	Width       uint16 `json:"width"`
	Height      uint16 `json:"height"`
	PixelFormat string `json:"pixel_format"`
	Rotated     bool   `json:"rotated"`
}

type StatusSnapshot struct {
	State        State       `json:"state"`
	Server       string      `json:"server"`
	ConnectionID string      `json:"connection_id,omitempty"`
	Stream       *StreamInfo `json:"stream,omitempty"`
	Frames       uint64      `json:"frames"`
	Connections  uint64      `json:"connections"`
	LastError    string      `json:"last_error,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Status is written by the session loop and read by the HTTP surface.
type Status struct {
	mu   sync.RWMutex
	snap StatusSnapshot
}

func NewStatus(server string) *Status {
	return &Status{snap: StatusSnapshot{State: StateIdle, Server: server, UpdatedAt: time.Now()}}
}

func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	if s.snap.Stream != nil {
		info := *s.snap.Stream
		out.Stream = &info
	}
	return out
}

func (s *Status) SetState(state State) {
	s.update(func(snap *StatusSnapshot) { snap.State = state })
}

func (s *Status) Connected(id string, info StreamInfo) {
	s.update(func(snap *StatusSnapshot) {
		snap.State = StateStreaming
		snap.ConnectionID = id
		snap.Stream = &info
		snap.Connections++
	})
}

func (s *Status) Disconnected(err error) {
	s.update(func(snap *StatusSnapshot) {
		snap.ConnectionID = ""
		snap.Stream = nil
		if err != nil {
			snap.LastError = err.Error()
		}
	})
}

func (s *Status) FrameRendered() {
	s.update(func(snap *StatusSnapshot) { snap.Frames++ })
}

func (s *Status) update(fn func(*StatusSnapshot)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
	s.snap.UpdatedAt = time.Now()
}
