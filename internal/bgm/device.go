package bgm

import (
	"errors"
	"sync"
)

// ErrNoSource is returned by Play before any track has been loaded,
// the backend analog of the browser's autoplay restriction: playback
// needs a prior explicit action (loading a source) to succeed.
var ErrNoSource = errors.New("no audio source loaded")

// Device is a single playback handle. The application constructs
// exactly one and injects it into the Controller; no component may
// construct a second.
type Device interface {
	// Play starts or resumes playback of the current source.
	Play() error
	// Pause halts playback without unloading the source.
	Pause()
	// SetVolume sets the output level, clamped to [0, 1].
	SetVolume(v float64)
	// Volume reports the current output level.
	Volume() float64
	// SetSource tears down the current track and loads a new one.
	SetSource(src string) error
	// Source reports the loaded track reference.
	Source() string
}

// StateDevice mirrors the playback element state for a web front end:
// the browser renders the audio, the server tracks source, volume and
// play state and serves both through the API.
type StateDevice struct {
	mu      sync.Mutex
	source  string
	volume  float64
	playing bool
}

// NewStateDevice returns a stopped device with no source.
func NewStateDevice() *StateDevice {
	return &StateDevice{}
}

func (d *StateDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.source == "" {
		return ErrNoSource
	}
	d.playing = true
	return nil
}

func (d *StateDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
}

func (d *StateDevice) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	d.mu.Lock()
	d.volume = v
	d.mu.Unlock()
}

func (d *StateDevice) Volume() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume
}

func (d *StateDevice) SetSource(src string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
	d.source = src
	return nil
}

func (d *StateDevice) Source() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.source
}

// Playing reports whether the device is currently playing.
func (d *StateDevice) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}
