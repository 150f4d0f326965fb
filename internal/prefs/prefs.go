// Package prefs stores the visitor's motion and effects settings and
// lazily loads the decorative effects widget when they allow it.
package prefs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"portfolio/internal/browser"
	"portfolio/internal/events"

	"github.com/rs/zerolog"
)

const (
	KeyReducedMotion = "portfolio-reduced-motion"
	KeyIntensity     = "portfolio-effects-intensity"

	// LoadThreshold is the intensity at or below which the widget is not
	// worth loading.
	LoadThreshold = 0.05
)

// Preference is the persisted part of the effects settings.
type Preference struct {
	ForceReducedMotion bool
	Intensity          float64
}

// LoaderState tracks the lazy widget load.
type LoaderState int

const (
	NotLoaded LoaderState = iota
	Loading
	Loaded
	Failed
)

func (s LoaderState) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("LoaderState(%d)", int(s))
}

// Widget receives every published settings snapshot once loaded.
type Widget interface {
	Apply(events.Settings)
}

// LoadFunc builds the widget. It runs from the idle queue.
type LoadFunc func() (Widget, error)

// Store reads, writes and publishes effects settings.
type Store struct {
	win  *browser.Window
	bus  *events.Bus
	load LoadFunc
	log  zerolog.Logger

	current events.Settings
	state   LoaderState
	widget  Widget
}

func NewStore(win *browser.Window, bus *events.Bus, load LoadFunc, log *zerolog.Logger) *Store {
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "prefs").Logger()
	}
	return &Store{win: win, bus: bus, load: load, log: l, current: events.Settings{Intensity: 1}}
}

// Read returns the stored preference. Missing or corrupt values yield an
// unset motion flag and full intensity.
func (s *Store) Read() Preference {
	p := Preference{Intensity: 1}
	if s.win.Storage == nil {
		return p
	}
	if v, ok := s.win.Storage.Get(KeyReducedMotion); ok {
		p.ForceReducedMotion = strings.TrimSpace(v) == "1"
	}
	if v, ok := s.win.Storage.Get(KeyIntensity); ok {
		p.Intensity = ParseIntensity(v)
	}
	return p
}

// ParseIntensity parses a stored intensity, clamped to [0,1]. Anything
// unparseable is full intensity.
func ParseIntensity(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return Clamp(v)
}

// Clamp bounds v to [0,1]; NaN becomes 1.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Max(0, math.Min(1, v))
}

// FormatIntensity is the persisted representation ("0.00" to "1.00").
func FormatIntensity(v float64) string {
	return strconv.FormatFloat(Clamp(v), 'f', 2, 64)
}

// SetReducedMotion persists the flag and republishes.
func (s *Store) SetReducedMotion(force bool) events.Settings {
	value := "0"
	if force {
		value = "1"
	}
	s.write(KeyReducedMotion, value)
	return s.Publish(s.Read())
}

// SetIntensity persists the clamped intensity and republishes.
func (s *Store) SetIntensity(v float64) events.Settings {
	s.write(KeyIntensity, FormatIntensity(v))
	return s.Publish(s.Read())
}

func (s *Store) write(key, value string) {
	if s.win.Storage == nil {
		return
	}
	if err := s.win.Storage.Set(key, value); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("preference not persisted")
	}
}

// Publish resolves the effective motion flag against the live system
// preference, shares the snapshot and notifies subscribers.
func (s *Store) Publish(p Preference) events.Settings {
	system := s.win.ReducedMotion != nil && s.win.ReducedMotion.Matches()
	settings := events.Settings{
		ReducedMotion: p.ForceReducedMotion || system,
		Intensity:     Clamp(p.Intensity),
	}
	s.current = settings
	s.bus.Settings.Publish(settings)
	s.EnsureEffectsWidgetLoaded(settings)
	return settings
}

// Current is the last published snapshot.
func (s *Store) Current() events.Settings { return s.current }

func (s *Store) State() LoaderState { return s.state }

// ShouldLoad reports whether settings allow the widget.
func ShouldLoad(settings events.Settings) bool {
	return !settings.ReducedMotion && settings.Intensity > LoadThreshold
}

// EnsureEffectsWidgetLoaded schedules the widget load on the idle queue.
// Only NotLoaded and Failed may move to Loading, so the widget loads at most
// once; a failure allows a later qualifying change to retry.
func (s *Store) EnsureEffectsWidgetLoaded(settings events.Settings) {
	if s.load == nil || !ShouldLoad(settings) {
		return
	}
	if s.state != NotLoaded && s.state != Failed {
		return
	}
	s.state = Loading
	s.win.RequestIdle(func() {
		w, err := s.load()
		if err != nil || w == nil {
			s.state = Failed
			s.log.Warn().Err(err).Msg("effects widget failed to load")
			return
		}
		s.state = Loaded
		s.widget = w
		s.bus.Settings.Subscribe(w.Apply)
		w.Apply(s.current)
		s.log.Debug().Msg("effects widget loaded")
	})
}

// Widget returns the loaded widget, or nil.
func (s *Store) Widget() Widget { return s.widget }
