// Package layout maps a viewport width to a discrete breakpoint tier and the
// visual parameters (scale, font size, token box height) that go with it.
package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle/api/tailwind"
)

// Width breakpoints
const (
	// CompactWidth is the first width that leaves the narrow tier.
	CompactWidth = 480

	// MediumWidth is the tablet breakpoint.
	MediumWidth = 768

	// WideWidth is the desktop breakpoint; the widget is designed for it.
	WideWidth = 1024
)

// Tier names, narrowest first.
const (
	TierNarrow  = "narrow"
	TierCompact = "compact"
	TierMedium  = "medium"
	TierWide    = "wide"
)

// Params are the tier-derived visual parameters consumed by rendering.
type Params struct {
	Scale     float64 `json:"scale" yaml:"scale"`
	FontSize  float64 `json:"font_size" yaml:"font_size"`
	BoxHeight float64 `json:"box_height" yaml:"box_height"`
}

// Tier is one responsive bucket. It applies to widths in [MinWidth, next
// tier's MinWidth).
type Tier struct {
	Name     string  `json:"name" yaml:"name"`
	MinWidth float64 `json:"min_width" yaml:"min_width"`
	Params   `yaml:",inline"`
}

func (t Tier) String() string {
	return fmt.Sprintf("%s(>=%.0f scale=%.2f font=%.0fpx box=%.0fpx)", t.Name, t.MinWidth, t.Scale, t.FontSize, t.BoxHeight)
}

// DefaultTiers returns the built-in tier table.
func DefaultTiers() []Tier {
	xs := tailwind.ParseFontSize("text-xs")
	sm := tailwind.ParseFontSize("text-sm")
	return []Tier{
		{Name: TierNarrow, MinWidth: 0, Params: Params{Scale: 0.5, FontSize: xs, BoxHeight: 24}},
		{Name: TierCompact, MinWidth: CompactWidth, Params: Params{Scale: 0.7, FontSize: xs, BoxHeight: 28}},
		{Name: TierMedium, MinWidth: MediumWidth, Params: Params{Scale: 0.85, FontSize: sm, BoxHeight: 32}},
		{Name: TierWide, MinWidth: WideWidth, Params: Params{Scale: 1, FontSize: sm, BoxHeight: 36}},
	}
}

// LayoutResolutionError describes a viewport width the policy could not
// place in a tier. ResolveTier never returns it; it falls back to the widest
// tier and logs this error instead.
type LayoutResolutionError struct {
	Width float64
}

func (e *LayoutResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve layout tier for viewport width %v", e.Width)
}

// Policy resolves widths against an ordered tier table.
type Policy struct {
	tiers []Tier
}

// NewPolicy validates tiers and returns a policy for them. Tiers are sorted
// by MinWidth; the first must start at 0 and thresholds must be distinct.
func NewPolicy(tiers ...Tier) (*Policy, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("at least one tier is required")
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinWidth < sorted[j].MinWidth })

	if sorted[0].MinWidth != 0 {
		return nil, fmt.Errorf("first tier %q must start at width 0, got %v", sorted[0].Name, sorted[0].MinWidth)
	}
	for i, t := range sorted {
		if t.Name == "" {
			return nil, fmt.Errorf("tier %d has no name", i)
		}
		if t.Scale <= 0 || t.FontSize <= 0 || t.BoxHeight <= 0 {
			return nil, fmt.Errorf("tier %q must have positive scale, font size and box height", t.Name)
		}
		if i > 0 && t.MinWidth <= sorted[i-1].MinWidth {
			return nil, fmt.Errorf("tier %q threshold %v is not above %q", t.Name, t.MinWidth, sorted[i-1].Name)
		}
	}
	return &Policy{tiers: sorted}, nil
}

// DefaultPolicy returns a policy over DefaultTiers.
func DefaultPolicy() *Policy {
	return &Policy{tiers: DefaultTiers()}
}

// Tiers returns a copy of the tier table, narrowest first.
func (p *Policy) Tiers() []Tier {
	out := make([]Tier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// Widest returns the last tier.
func (p *Policy) Widest() Tier {
	return p.tiers[len(p.tiers)-1]
}

// Resolve returns the tier for width. A width strictly below a tier's
// threshold selects the tier below it. Negative or non-finite widths degrade
// to the widest tier.
func (p *Policy) Resolve(width float64) Tier {
	if math.IsNaN(width) || math.IsInf(width, 0) || width < 0 {
		logger.Debugf("%v, using %s tier", &LayoutResolutionError{Width: width}, p.Widest().Name)
		return p.Widest()
	}
	// index of the first tier whose threshold is above width
	i := sort.Search(len(p.tiers), func(i int) bool { return p.tiers[i].MinWidth > width })
	return p.tiers[i-1]
}

var defaultPolicy = DefaultPolicy()

// ResolveTier resolves width against the default tier table.
func ResolveTier(width float64) Tier {
	return defaultPolicy.Resolve(width)
}
