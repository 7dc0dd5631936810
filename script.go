package hypecycle

import (
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/flanksource/hypecycle/placement"
	"github.com/flanksource/hypecycle/surface"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Step is one scripted drag. The token is picked by id or by label. The
// drag starts at From, or the token's centre, and ends at To or at the
// start moved By.
type Step struct {
	Token *int            `json:"token,omitempty" yaml:"token,omitempty"`
	Text  string          `json:"text,omitempty" yaml:"text,omitempty"`
	From  *geometry.Point `json:"from,omitempty" yaml:"from,omitempty"`
	To    *geometry.Point `json:"to,omitempty" yaml:"to,omitempty"`
	By    *geometry.Point `json:"by,omitempty" yaml:"by,omitempty"`
}

// Script is a sequence of drags replayed before an export.
type Script struct {
	ViewportWidth float64 `json:"viewport_width,omitempty" yaml:"viewport_width,omitempty"`
	Drags         []Step  `json:"drags" yaml:"drags"`
}

// LoadScript reads a YAML drag script.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML drag script.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, step := range s.Drags {
		if step.Token == nil && step.Text == "" {
			return Script{}, fmt.Errorf("drag %d: token or text is required", i)
		}
		if (step.To == nil) == (step.By == nil) {
			return Script{}, fmt.Errorf("drag %d: exactly one of to and by is required", i)
		}
	}
	return s, nil
}

// Play replays a script against the widget.
func (w *Widget) Play(s Script) error {
	if s.ViewportWidth > 0 {
		w.Resize(s.ViewportWidth)
	}
	for i, step := range s.Drags {
		id, err := w.resolve(step)
		if err != nil {
			return fmt.Errorf("drag %d: %w", i, err)
		}

		var from geometry.Point
		if step.From != nil {
			from = *step.From
		} else {
			r, err := w.Rect(surface.TokenHandle(id))
			if err != nil {
				return fmt.Errorf("drag %d: %w", i, err)
			}
			from = geometry.Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
		}
		to := from
		if step.To != nil {
			to = *step.To
		} else if step.By != nil {
			to = from.Add(*step.By)
		}

		logger.Debugf("drag %d: token %d %s -> %s", i, id, from, to)
		if err := w.Drag(id, from, to); err != nil {
			return fmt.Errorf("drag %d: %w", i, err)
		}
		w.Flush()
	}
	return nil
}

func (w *Widget) resolve(step Step) (int, error) {
	if step.Token != nil {
		if _, err := w.store.Get(*step.Token); err != nil {
			return 0, err
		}
		return *step.Token, nil
	}
	_, id, ok := lo.FindIndexOf(w.store.Snapshot(), func(t placement.Token) bool {
		return t.Text == step.Text
	})
	if !ok {
		return 0, fmt.Errorf("no token labelled %q", step.Text)
	}
	return id, nil
}
