// Package bgm manages background-music playback: a state machine over
// a single shared device with fade-in/out transitions, a timed preview
// mode, and automatic pause/resume around video playback.
package bgm

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the controller's playback state.
type State int

const (
	StateStopped State = iota
	StateLoading
	StatePlaying
	StatePreviewing
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePreviewing:
		return "previewing"
	default:
		return "stopped"
	}
}

// Config holds the transition timings. Zero values fall back to the
// defaults below.
type Config struct {
	TargetVolume   float64       // steady-state playback level
	FadeIn         time.Duration // play ramp
	FadeOut        time.Duration // pause ramp
	PreviewListen  time.Duration // how long a preview plays
	PreviewFadeOut time.Duration // preview tail ramp
	FadeSteps      int           // linear interpolation step count
}

// DefaultConfig mirrors the listening experience tuned in the web
// client: a soft 0.35 target, one-second fade-in, 6s previews.
func DefaultConfig() Config {
	return Config{
		TargetVolume:   0.35,
		FadeIn:         time.Second,
		FadeOut:        800 * time.Millisecond,
		PreviewListen:  6 * time.Second,
		PreviewFadeOut: 1500 * time.Millisecond,
		FadeSteps:      25,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TargetVolume == 0 {
		c.TargetVolume = d.TargetVolume
	}
	if c.FadeIn == 0 {
		c.FadeIn = d.FadeIn
	}
	if c.FadeOut == 0 {
		c.FadeOut = d.FadeOut
	}
	if c.PreviewListen == 0 {
		c.PreviewListen = d.PreviewListen
	}
	if c.PreviewFadeOut == 0 {
		c.PreviewFadeOut = d.PreviewFadeOut
	}
	if c.FadeSteps == 0 {
		c.FadeSteps = d.FadeSteps
	}
	return c
}

// Controller drives the shared playback device. All methods are safe
// for concurrent use; at most one fade runs at a time (a newer ramp
// cancels the one in progress).
type Controller struct {
	dev Device
	cfg Config
	log zerolog.Logger

	mu                sync.Mutex
	state             State
	muted             bool
	wasPlayingOnVideo bool
	fadeCancel        chan struct{}
	previewTimer      *time.Timer
}

// NewController wires the controller to the application's one device.
func NewController(dev Device, cfg Config, log zerolog.Logger) *Controller {
	return &Controller{dev: dev, cfg: cfg.withDefaults(), log: log, state: StateStopped, muted: true}
}

// State reports the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Muted reports the user's mute preference.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Play starts playback and ramps volume to the target level. On
// failure the controller returns to stopped and the error surfaces to
// the caller; there is no automatic retry.
func (c *Controller) Play() error {
	return c.play(true)
}

func (c *Controller) play(userEnabling bool) error {
	c.mu.Lock()
	c.clearTimersLocked()
	c.state = StateLoading
	c.mu.Unlock()

	if err := c.dev.Play(); err != nil {
		c.mu.Lock()
		c.state = StateStopped
		c.muted = true
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("bgm playback failed")
		return err
	}

	c.mu.Lock()
	if userEnabling {
		c.state = StatePlaying
		c.muted = false
	} else if c.state == StateLoading {
		c.state = StatePreviewing
	}
	c.startFadeLocked(c.cfg.TargetVolume, c.cfg.FadeIn, nil)
	c.mu.Unlock()

	c.log.Debug().Bool("user", userEnabling).Msg("bgm playing")
	return nil
}

// Preview plays the track for a fixed listen window without flipping
// the mute preference, then fades out and pauses. A no-op while the
// user already has music on.
func (c *Controller) Preview() error {
	c.mu.Lock()
	if c.state == StatePlaying && !c.muted {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.play(false); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.previewTimer = time.AfterFunc(c.cfg.PreviewListen, func() {
		c.mu.Lock()
		if c.state != StatePreviewing {
			c.mu.Unlock()
			return
		}
		c.startFadeLocked(0, c.cfg.PreviewFadeOut, func() {
			c.dev.Pause()
			c.mu.Lock()
			c.state = StateStopped
			c.mu.Unlock()
		})
		c.mu.Unlock()
	})
	return nil
}

// Pause stops playback. Immediate mode halts and zeroes volume at
// once (used around incoming video audio, where a fade would bleed);
// otherwise volume ramps down before the halt. Either way any pending
// preview auto-stop is cancelled and the state returns to stopped.
func (c *Controller) Pause(immediate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked(immediate, true)
}

func (c *Controller) pauseLocked(immediate, flipMute bool) {
	c.clearTimersLocked()
	if flipMute {
		c.muted = true
	}
	c.state = StateStopped

	if immediate {
		c.cancelFadeLocked()
		c.dev.Pause()
		c.dev.SetVolume(0)
		return
	}
	c.startFadeLocked(0, c.cfg.FadeOut, func() {
		c.dev.Pause()
	})
}

// VideoStarted interrupts the music while a video plays. The mute
// preference is left untouched so playback can resume afterwards.
func (c *Controller) VideoStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.muted || c.state != StatePlaying {
		return
	}
	c.wasPlayingOnVideo = true
	c.pauseLocked(true, false)
}

// VideoEnded resumes playback if the video interrupted it. Resumption
// is best-effort: a failure leaves the controller stopped silently.
func (c *Controller) VideoEnded() {
	c.mu.Lock()
	resume := c.wasPlayingOnVideo
	c.wasPlayingOnVideo = false
	c.mu.Unlock()

	if resume {
		_ = c.play(true)
	}
}

// SetSource tears down the current track and loads a new one. If music
// was on, playback resumes on the new source, falling back to stopped
// on failure.
func (c *Controller) SetSource(src string) error {
	c.mu.Lock()
	wasOn := !c.muted && c.state == StatePlaying
	c.clearTimersLocked()
	c.cancelFadeLocked()
	c.mu.Unlock()

	c.dev.Pause()
	if err := c.dev.SetSource(src); err != nil {
		c.mu.Lock()
		c.state = StateStopped
		c.muted = true
		c.mu.Unlock()
		return err
	}

	if wasOn {
		return c.play(true)
	}
	c.mu.Lock()
	c.state = StateStopped
	c.mu.Unlock()
	return nil
}

// Close cancels all timers and halts the device.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearTimersLocked()
	c.cancelFadeLocked()
	c.dev.Pause()
	c.state = StateStopped
}

// startFadeLocked ramps the device volume linearly from its current
// level to target: FadeSteps increments spaced evenly over dur. A ramp
// already in progress is cancelled first. done, if set, runs after the
// ramp completes (not when superseded). Callers hold c.mu.
func (c *Controller) startFadeLocked(target float64, dur time.Duration, done func()) {
	c.cancelFadeLocked()

	steps := c.cfg.FadeSteps
	stepTime := dur / time.Duration(steps)
	from := c.dev.Volume()
	delta := (target - from) / float64(steps)

	cancel := make(chan struct{})
	c.fadeCancel = cancel

	go func() {
		ticker := time.NewTicker(stepTime)
		defer ticker.Stop()
		v := from
		for i := 0; i < steps; i++ {
			select {
			case <-cancel:
				return
			case <-ticker.C:
				v += delta
				c.dev.SetVolume(v)
			}
		}
		c.dev.SetVolume(target)
		if done != nil {
			done()
		}
	}()
}

// cancelFadeLocked stops any ramp in progress. Callers hold c.mu.
func (c *Controller) cancelFadeLocked() {
	if c.fadeCancel != nil {
		close(c.fadeCancel)
		c.fadeCancel = nil
	}
}

// clearTimersLocked cancels a pending preview auto-stop. Callers hold
// c.mu.
func (c *Controller) clearTimersLocked() {
	if c.previewTimer != nil {
		c.previewTimer.Stop()
		c.previewTimer = nil
	}
}
