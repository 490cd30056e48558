package bgm

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeDevice records calls and can be told to fail playback.
type fakeDevice struct {
	mu       sync.Mutex
	volume   float64
	playing  bool
	source   string
	playErr  error
	playCnt  int
	pauseCnt int
}

func (d *fakeDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playCnt++
	if d.playErr != nil {
		return d.playErr
	}
	d.playing = true
	return nil
}

func (d *fakeDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pauseCnt++
	d.playing = false
}

func (d *fakeDevice) SetVolume(v float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.volume = v
}

func (d *fakeDevice) Volume() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume
}

func (d *fakeDevice) SetSource(src string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.source = src
	d.playing = false
	return nil
}

func (d *fakeDevice) Source() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.source
}

func (d *fakeDevice) snapshot() (float64, bool, int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.volume, d.playing, d.playCnt, d.pauseCnt
}

// fastConfig keeps the whole state machine under ~50ms per transition.
func fastConfig() Config {
	return Config{
		TargetVolume:   0.35,
		FadeIn:         20 * time.Millisecond,
		FadeOut:        20 * time.Millisecond,
		PreviewListen:  40 * time.Millisecond,
		PreviewFadeOut: 20 * time.Millisecond,
		FadeSteps:      5,
	}
}

func newTestController() (*Controller, *fakeDevice) {
	dev := &fakeDevice{source: "assets/bgm.mp3"}
	return NewController(dev, fastConfig(), zerolog.Nop()), dev
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPlayRampsToTarget(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	if err := c.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if c.State() != StatePlaying {
		t.Errorf("expected playing, got %v", c.State())
	}
	if c.Muted() {
		t.Error("play must clear the mute flag")
	}
	waitFor(t, "fade-in to complete", func() bool {
		v, _, _, _ := dev.snapshot()
		return v == 0.35
	})
}

func TestPlayFailureResetsToStopped(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()
	dev.playErr = errors.New("autoplay blocked")

	if err := c.Play(); err == nil {
		t.Fatal("expected play error to surface")
	}
	if c.State() != StateStopped {
		t.Errorf("expected stopped after failure, got %v", c.State())
	}
	if !c.Muted() {
		t.Error("expected muted after failure")
	}
}

func TestPauseImmediateZeroesVolume(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	c.Play()
	waitFor(t, "fade-in", func() bool { v, _, _, _ := dev.snapshot(); return v == 0.35 })

	c.Pause(true)
	v, playing, _, _ := dev.snapshot()
	if v != 0 {
		t.Errorf("expected volume 0 immediately, got %v", v)
	}
	if playing {
		t.Error("device still playing after immediate pause")
	}
	if c.State() != StateStopped || !c.Muted() {
		t.Errorf("expected stopped+muted, got %v muted=%v", c.State(), c.Muted())
	}
}

func TestPauseFadesThenHalts(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	c.Play()
	waitFor(t, "fade-in", func() bool { v, _, _, _ := dev.snapshot(); return v == 0.35 })

	c.Pause(false)
	if c.State() != StateStopped {
		t.Errorf("state flips to stopped as soon as the ramp starts")
	}
	waitFor(t, "fade-out then halt", func() bool {
		v, playing, _, _ := dev.snapshot()
		return v == 0 && !playing
	})
}

func TestPreviewAutoStops(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	if err := c.Preview(); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if c.State() != StatePreviewing {
		t.Errorf("expected previewing, got %v", c.State())
	}
	if !c.Muted() {
		t.Error("preview must not flip the mute flag")
	}

	waitFor(t, "preview auto-stop", func() bool {
		_, playing, _, _ := dev.snapshot()
		return c.State() == StateStopped && !playing
	})
}

func TestPreviewNoopWhenMusicOn(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	c.Play()
	_, _, before, _ := dev.snapshot()
	if err := c.Preview(); err != nil {
		t.Fatalf("preview: %v", err)
	}
	_, _, after, _ := dev.snapshot()
	if after != before {
		t.Error("preview while music is on must not touch the device")
	}
	if c.State() != StatePlaying {
		t.Errorf("state changed to %v", c.State())
	}
}

func TestPlayCancelsPreviewAutoStop(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	c.Preview()
	if err := c.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	// Past the preview window the music must still be on.
	time.Sleep(120 * time.Millisecond)
	_, playing, _, _ := dev.snapshot()
	if !playing || c.State() != StatePlaying {
		t.Error("preview timer fired after Play superseded it")
	}
}

func TestVideoInterruptAndResume(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	c.Play()
	waitFor(t, "fade-in", func() bool { v, _, _, _ := dev.snapshot(); return v == 0.35 })

	c.VideoStarted()
	v, playing, _, _ := dev.snapshot()
	if playing || v != 0 {
		t.Error("video start must halt playback immediately")
	}
	if c.Muted() {
		t.Error("video interruption must not alter the mute preference")
	}

	c.VideoEnded()
	waitFor(t, "resume after video", func() bool {
		_, playing, _, _ := dev.snapshot()
		return playing && c.State() == StatePlaying
	})
}

func TestVideoEndWithoutInterruptDoesNothing(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	c.VideoEnded()
	_, _, playCnt, _ := dev.snapshot()
	if playCnt != 0 {
		t.Error("resume attempted without a prior interruption")
	}
}

func TestVideoResumeFailureIsSilent(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	c.Play()
	c.VideoStarted()
	dev.mu.Lock()
	dev.playErr = errors.New("gone")
	dev.mu.Unlock()

	c.VideoEnded() // must not panic or propagate
	if c.State() != StateStopped {
		t.Errorf("expected stopped after failed resume, got %v", c.State())
	}
}

func TestSetSourceResumesWhenPlaying(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	c.Play()
	waitFor(t, "fade-in", func() bool { v, _, _, _ := dev.snapshot(); return v == 0.35 })

	if err := c.SetSource("blob:custom-track"); err != nil {
		t.Fatalf("set source: %v", err)
	}
	if dev.Source() != "blob:custom-track" {
		t.Errorf("source not swapped: %s", dev.Source())
	}
	waitFor(t, "resume on new source", func() bool {
		_, playing, _, _ := dev.snapshot()
		return playing && c.State() == StatePlaying
	})
}

func TestSetSourceStaysStoppedWhenMuted(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	if err := c.SetSource("blob:custom-track"); err != nil {
		t.Fatalf("set source: %v", err)
	}
	_, playing, _, _ := dev.snapshot()
	if playing || c.State() != StateStopped {
		t.Error("muted controller must not start playback on source change")
	}
}

func TestSupersedingFadeCancelsPrevious(t *testing.T) {
	c, dev := newTestController()
	defer c.Close()

	c.Play()
	c.Pause(false)
	c.Play()

	waitFor(t, "final fade to settle", func() bool {
		v, _, _, _ := dev.snapshot()
		return v == 0.35
	})
	// Give any zombie fade-out a chance to clobber the volume.
	time.Sleep(60 * time.Millisecond)
	if v, _, _, _ := dev.snapshot(); v != 0.35 {
		t.Errorf("superseded fade still running, volume %v", v)
	}
}
