// Package placement owns the authoritative placement state of every token on
// the hype-cycle widget.
package placement

import (
	"fmt"

	"github.com/flanksource/hypecycle/geometry"
)

// Tray grid used to lay out tokens before they are first dragged.
const (
	TrayColumns    = 4
	TrayMarginX    = 20
	TrayMarginY    = 20
	TrayColumnStep = 220
	TrayRowStep    = 40
)

// DefaultTechnologies is the built-in token list.
var DefaultTechnologies = []string{
	"Artificial Intelligence (AI)", "Virtual assistants", "Augmented Reality (AR)",
	"Virtual Reality (VR)", "Social media", "Mobile technology",
	"Internet of Things (IoT)", "Machine learning", "5G networks",
	"Blockchain", "Wearable technology", "Advanced analytics and big data",
}

// Token is one draggable label.
//
// Position is the cartesian drag offset from the token's tray slot. It is
// zero until the first drag, after which the last write wins. OnSurface is
// only recomputed by a drag.
type Token struct {
	ID        int            `json:"id" yaml:"id"`
	Text      string         `json:"text" yaml:"text"`
	Position  geometry.Point `json:"position" yaml:"position"`
	Placed    bool           `json:"placed" yaml:"placed"`
	OnSurface bool           `json:"on_surface" yaml:"on_surface"`
}

// TraySlot returns the default top-left of token id inside the tray.
func TraySlot(id int) geometry.Point {
	return geometry.Point{
		X: TrayMarginX + float64(id%TrayColumns)*TrayColumnStep,
		Y: TrayMarginY + float64(id/TrayColumns)*TrayRowStep,
	}
}

// Slot is the token's tray slot.
func (t Token) Slot() geometry.Point {
	return TraySlot(t.ID)
}

// Origin is where the token is drawn relative to the tray: its slot plus
// the drag offset.
func (t Token) Origin() geometry.Point {
	return t.Slot().Add(t.Position)
}

func (t Token) String() string {
	return fmt.Sprintf("token[%d %q pos=%s placed=%v on_surface=%v]", t.ID, t.Text, t.Position, t.Placed, t.OnSurface)
}

// UnknownTokenError is returned when an update names a token id the store
// does not hold.
type UnknownTokenError struct {
	ID int
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown token id %d", e.ID)
}
