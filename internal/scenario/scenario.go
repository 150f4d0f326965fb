// Package scenario describes a scripted visit: the window a page opens in
// and the user actions replayed against it.
package scenario

import (
	"fmt"
	"os"

	"portfolio/internal/app"
	"portfolio/internal/browser"
	perrors "portfolio/internal/errors"

	"gopkg.in/yaml.v3"
)

type Scenario struct {
	URL           string            `yaml:"url"`
	Referrer      string            `yaml:"referrer"`
	ReducedMotion bool              `yaml:"reducedMotion"`
	Navigator     Navigator         `yaml:"navigator"`
	Storage       map[string]string `yaml:"storage"`
	Steps         []Step            `yaml:"steps"`
}

type Navigator struct {
	DoNotTrack           string `yaml:"doNotTrack"`
	MSDoNotTrack         string `yaml:"msDoNotTrack"`
	WindowDoNotTrack     string `yaml:"windowDoNotTrack"`
	GlobalPrivacyControl bool   `yaml:"globalPrivacyControl"`
}

// Step holds exactly one action.
type Step struct {
	Click         string     `yaml:"click,omitempty"`
	Key           *KeyStep   `yaml:"key,omitempty"`
	Input         *InputStep `yaml:"input,omitempty"`
	Check         *CheckStep `yaml:"check,omitempty"`
	Submit        string     `yaml:"submit,omitempty"`
	Idle          bool       `yaml:"idle,omitempty"`
	Reject        string     `yaml:"reject,omitempty"`
	ReducedMotion *bool      `yaml:"reducedMotion,omitempty"`
}

type KeyStep struct {
	Selector string `yaml:"selector"`
	Key      string `yaml:"key"`
}

type InputStep struct {
	Selector string `yaml:"selector"`
	Value    string `yaml:"value"`
}

type CheckStep struct {
	Selector string `yaml:"selector"`
	Checked  bool   `yaml:"checked"`
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", perrors.ErrInvalidScenario, err)
	}
	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return nil, fmt.Errorf("%w: step %d has %d actions, want 1", perrors.ErrInvalidScenario, i+1, n)
		}
	}
	return &s, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Click != "", s.Key != nil, s.Input != nil, s.Check != nil,
		s.Submit != "", s.Idle, s.Reject != "", s.ReducedMotion != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Configure applies the window fields of the scenario. Storage seeds are
// written through to whatever store the window already has.
func (s *Scenario) Configure(win *browser.Window) error {
	win.Referrer = s.Referrer
	win.Navigator = browser.Navigator{
		DoNotTrack:           s.Navigator.DoNotTrack,
		MSDoNotTrack:         s.Navigator.MSDoNotTrack,
		WindowDoNotTrack:     s.Navigator.WindowDoNotTrack,
		GlobalPrivacyControl: s.Navigator.GlobalPrivacyControl,
	}
	win.ReducedMotion = browser.NewMediaQuery(s.ReducedMotion)
	for k, v := range s.Storage {
		if err := win.Storage.Set(k, v); err != nil {
			return fmt.Errorf("seed storage %s: %w", k, err)
		}
	}
	return nil
}

// Run replays the steps in order and stops at the first that fails.
func (s *Scenario) Run(c *app.Controller) error {
	for i, step := range s.Steps {
		if err := step.Apply(c); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s Step) Apply(c *app.Controller) error {
	switch {
	case s.Click != "":
		return c.Click(s.Click)
	case s.Key != nil:
		return c.Key(s.Key.Selector, s.Key.Key)
	case s.Input != nil:
		return c.Input(s.Input.Selector, s.Input.Value)
	case s.Check != nil:
		return c.Check(s.Check.Selector, s.Check.Checked)
	case s.Submit != "":
		return c.Submit(s.Submit)
	case s.Idle:
		c.RunIdle()
	case s.Reject != "":
		c.Reject(s.Reject)
	case s.ReducedMotion != nil:
		c.Win.ReducedMotion.Set(*s.ReducedMotion)
	default:
		return fmt.Errorf("%w: empty step", perrors.ErrInvalidScenario)
	}
	return nil
}
