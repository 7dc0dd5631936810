package tailwind

import (
	"strconv"
	"strings"
)

// RootFontSize is the px size of 1rem.
const RootFontSize = 16.0

// Spacing is the Tailwind spacing scale in rem units
var Spacing = map[string]float64{
	"0":   0,
	"px":  0.0625, // 1px
	"0.5": 0.125,  // 2px
	"1":   0.25,   // 4px
	"1.5": 0.375,  // 6px
	"2":   0.5,    // 8px
	"2.5": 0.625,  // 10px
	"3":   0.75,   // 12px
	"4":   1,      // 16px
	"5":   1.25,   // 20px
	"6":   1.5,    // 24px
	"8":   2,      // 32px
	"10":  2.5,    // 40px
	"12":  3,      // 48px
	"16":  4,      // 64px
	"20":  5,      // 80px
	"24":  6,      // 96px
	"32":  8,      // 128px
	"40":  10,     // 160px
	"48":  12,     // 192px
	"64":  16,     // 256px
	"96":  24,     // 384px
}

// FontSizes is the Tailwind font size scale in rem units
var FontSizes = map[string]float64{
	"xs":   0.75,  // 12px
	"sm":   0.875, // 14px
	"base": 1,     // 16px
	"lg":   1.125, // 18px
	"xl":   1.25,  // 20px
	"2xl":  1.5,   // 24px
	"3xl":  1.875, // 30px
}

// Sides holds per-side values in px; nil means the side was not set.
type Sides struct {
	Top, Right, Bottom, Left *float64
}

// Merge overlays o on s, keeping s where o is unset
func (s Sides) Merge(o Sides) Sides {
	if o.Top != nil {
		s.Top = o.Top
	}
	if o.Right != nil {
		s.Right = o.Right
	}
	if o.Bottom != nil {
		s.Bottom = o.Bottom
	}
	if o.Left != nil {
		s.Left = o.Left
	}
	return s
}

// Resolve returns the four sides in px with unset sides as 0.
func (s Sides) Resolve() (top, right, bottom, left float64) {
	get := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	return get(s.Top), get(s.Right), get(s.Bottom), get(s.Left)
}

// ParseSides parses a padding ("p-4", "px-2", "pt-[10px]") or margin
// ("m-4", "mb-4") utility class into px values.
func ParseSides(class string) Sides {
	idx := strings.Index(class, "-")
	if idx <= 0 {
		return Sides{}
	}
	prefix, valueStr := class[:idx], class[idx+1:]
	if prefix[0] != 'p' && prefix[0] != 'm' {
		return Sides{}
	}

	rem, ok := lookupSpacing(valueStr)
	if !ok {
		return Sides{}
	}
	px := rem * RootFontSize
	v := &px

	switch prefix[1:] {
	case "":
		return Sides{Top: v, Right: v, Bottom: v, Left: v}
	case "x":
		return Sides{Right: v, Left: v}
	case "y":
		return Sides{Top: v, Bottom: v}
	case "t":
		return Sides{Top: v}
	case "r":
		return Sides{Right: v}
	case "b":
		return Sides{Bottom: v}
	case "l":
		return Sides{Left: v}
	}
	return Sides{}
}

// ParseLength parses a width or height utility ("w-[1000px]", "h-48") and
// returns the dimension it sets ("w" or "h") with its value in px.
func ParseLength(class string) (dimension string, px float64, ok bool) {
	switch {
	case strings.HasPrefix(class, "w-"):
		dimension = "w"
	case strings.HasPrefix(class, "h-"):
		dimension = "h"
	default:
		return "", 0, false
	}
	rem, ok := lookupSpacing(class[2:])
	if !ok {
		return "", 0, false
	}
	return dimension, rem * RootFontSize, true
}

// ParseFontSize parses a Tailwind font size utility class
// Returns the font size in px, or 0 if not a font size class
func ParseFontSize(class string) float64 {
	if !strings.HasPrefix(class, "text-") {
		return 0
	}
	sizeStr := strings.TrimPrefix(class, "text-")

	if size, exists := FontSizes[sizeStr]; exists {
		return size * RootFontSize
	}
	if v, ok := arbitrary(sizeStr); ok {
		return v * RootFontSize
	}
	return 0
}

func lookupSpacing(valueStr string) (float64, bool) {
	if v, ok := Spacing[valueStr]; ok {
		return v, true
	}
	return arbitrary(valueStr)
}

// arbitrary parses a bracketed value such as "[10px]" into rem.
func arbitrary(valueStr string) (float64, bool) {
	if !strings.HasPrefix(valueStr, "[") || !strings.HasSuffix(valueStr, "]") {
		return 0, false
	}
	v, err := parseCustomSpacing(valueStr[1 : len(valueStr)-1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseCustomSpacing parses custom spacing values like "10px", "1.5rem", "24"
func parseCustomSpacing(value string) (float64, error) {
	value = strings.TrimSpace(value)

	if strings.HasSuffix(value, "px") {
		px, err := strconv.ParseFloat(strings.TrimSuffix(value, "px"), 64)
		if err != nil {
			return 0, err
		}
		return px / RootFontSize, nil
	}
	if strings.HasSuffix(value, "rem") {
		return strconv.ParseFloat(strings.TrimSuffix(value, "rem"), 64)
	}
	// em is treated as rem
	if strings.HasSuffix(value, "em") {
		return strconv.ParseFloat(strings.TrimSuffix(value, "em"), 64)
	}
	return strconv.ParseFloat(value, 64)
}
