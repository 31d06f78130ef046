package transport

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	eventBufferSize    = 16
	timeUpdateInterval = 500 * time.Millisecond
)

// ErrNoSource is returned by Play when nothing has been loaded.
var ErrNoSource = errors.New("no source loaded")

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

// Beep is the speaker-backed transport.
type Beep struct {
	mu sync.Mutex

	streamer    beep.StreamSeekCloser
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	format      beep.Format
	meta        *Metadata
	volumeLevel float64
	loaded      bool
	playing     bool

	events chan Event
	done   chan struct{}
	closed bool
}

// Verify Beep implements Interface at compile time.
var _ Interface = (*Beep)(nil)

// New creates a transport. The speaker is initialized lazily on the first
// Load so that construction never touches the audio device.
func New() *Beep {
	t := &Beep{
		volumeLevel: 1,
		events:      make(chan Event, eventBufferSize),
		done:        make(chan struct{}),
	}
	go t.timeUpdateLoop()
	return t
}

// Load replaces the current source with the given audio bytes. The new
// source starts paused at position zero; an EventReady carrying the
// source metadata is emitted on success.
func (t *Beep) Load(audio []byte) error {
	streamer, format, err := decode(audio)
	if err != nil {
		return err
	}

	speakerOnce.Do(func() {
		speakerRate = format.SampleRate
		speakerErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		streamer.Close()
		return speakerErr
	}

	meta := readMetadata(audio)
	meta.Duration = format.SampleRate.D(streamer.Len())

	t.mu.Lock()
	defer t.mu.Unlock()

	t.unloadLocked()

	t.streamer = streamer
	t.format = format
	t.meta = &meta
	t.ctrl = &beep.Ctrl{Streamer: resampled(streamer, format), Paused: true}
	t.volume = &effects.Volume{Streamer: t.ctrl, Base: 2}
	t.applyVolumeLocked()
	t.loaded = true
	t.playing = false

	speaker.Play(beep.Seq(t.volume, beep.Callback(t.sourceEnded)))

	t.send(Event{Kind: EventReady, Meta: t.meta})
	return nil
}

// Play starts or resumes playback of the loaded source.
func (t *Beep) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return ErrNoSource
	}
	if t.playing {
		return nil
	}
	speaker.Lock()
	t.ctrl.Paused = false
	speaker.Unlock()
	t.playing = true
	return nil
}

// Pause pauses playback.
func (t *Beep) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded || !t.playing {
		return
	}
	speaker.Lock()
	t.ctrl.Paused = true
	speaker.Unlock()
	t.playing = false
}

// Seek moves to the given position, clamped to [0, Duration].
func (t *Beep) Seek(pos time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if d := t.meta.Duration; pos > d {
		pos = d
	}
	speaker.Lock()
	_ = t.streamer.Seek(t.format.SampleRate.N(pos))
	speaker.Unlock()
}

// SetVolume sets the output gain, clamped to [0, 1]. A zero level mutes
// the output entirely.
func (t *Beep) SetVolume(level float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	t.volumeLevel = level
	if t.loaded {
		speaker.Lock()
		t.applyVolumeLocked()
		speaker.Unlock()
	}
}

// Playing reports whether audio is currently advancing.
func (t *Beep) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// Position returns the playback position within the loaded source.
func (t *Beep) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return 0
	}
	speaker.Lock()
	pos := t.format.SampleRate.D(t.streamer.Position())
	speaker.Unlock()
	return pos
}

// Duration returns the duration of the loaded source.
func (t *Beep) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.meta == nil {
		return 0
	}
	return t.meta.Duration
}

// Events returns the notification channel.
func (t *Beep) Events() <-chan Event {
	return t.events
}

// Close stops playback and releases the source.
func (t *Beep) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)
	t.unloadLocked()
	return nil
}

func (t *Beep) unloadLocked() {
	if !t.loaded {
		return
	}
	speaker.Clear()
	t.streamer.Close()
	t.streamer = nil
	t.ctrl = nil
	t.volume = nil
	t.meta = nil
	t.loaded = false
	t.playing = false
}

func (t *Beep) sourceEnded() {
	t.mu.Lock()
	t.playing = false
	t.mu.Unlock()
	t.send(Event{Kind: EventEnded})
}

func (t *Beep) timeUpdateLoop() {
	ticker := time.NewTicker(timeUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.mu.Lock()
			if !t.loaded || !t.playing {
				t.mu.Unlock()
				continue
			}
			speaker.Lock()
			pos := t.format.SampleRate.D(t.streamer.Position())
			speaker.Unlock()
			t.mu.Unlock()
			t.send(Event{Kind: EventTimeUpdate, Position: pos})
		}
	}
}

// send delivers an event without blocking; events are dropped when the
// receiver falls behind.
func (t *Beep) send(e Event) {
	select {
	case t.events <- e:
	default:
	}
}

// applyVolumeLocked maps the 0-1 level onto beep's base-2 logarithmic
// scale: 1.0 -> 0, 0.5 -> -1, 0.25 -> -2. Zero is fully silent.
func (t *Beep) applyVolumeLocked() {
	if t.volume == nil {
		return
	}
	if t.volumeLevel <= 0 {
		t.volume.Silent = true
		return
	}
	t.volume.Silent = false
	t.volume.Volume = levelToVolume(t.volumeLevel)
}

// resampled adapts a stream to the speaker sample rate when it differs
// from the rate the speaker was initialized with.
func resampled(s beep.Streamer, format beep.Format) beep.Streamer {
	if format.SampleRate == speakerRate {
		return s
	}
	return beep.Resample(4, format.SampleRate, speakerRate, s)
}

// decode sniffs the container format and decodes mp3 or flac audio.
func decode(audio []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if bytes.HasPrefix(audio, []byte("fLaC")) {
		return flac.Decode(bytes.NewReader(audio))
	}
	return mp3.Decode(nopCloser{bytes.NewReader(audio)})
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }
