package tailwind

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Colors is the subset of the Tailwind palette the surface styles use.
var Colors = map[string]map[string]string{
	"gray": {
		"50": "#f9fafb", "100": "#f3f4f6", "200": "#e5e7eb", "300": "#d1d5db", "400": "#9ca3af",
		"500": "#6b7280", "600": "#4b5563", "700": "#374151", "800": "#1f2937", "900": "#111827",
	},
	"blue": {
		"50": "#eff6ff", "100": "#dbeafe", "200": "#bfdbfe", "300": "#93c5fd", "400": "#60a5fa",
		"500": "#3b82f6", "600": "#2563eb", "700": "#1d4ed8", "800": "#1e40af", "900": "#1e3a8a",
	},
	"red": {
		"100": "#fee2e2", "300": "#fca5a5", "500": "#ef4444", "700": "#b91c1c",
	},
	"green": {
		"100": "#dcfce7", "300": "#86efac", "500": "#22c55e", "700": "#15803d",
	},
}

// SpecialColors are the palette entries without shades.
var SpecialColors = map[string]string{
	"black":       "#000000",
	"white":       "#ffffff",
	"transparent": "transparent",
}

var colorPrefixes = []string{"bg-", "text-", "border-", "fill-", "stroke-"}

// ParseColor parses a Tailwind color class ("bg-gray-100", "text-white",
// "blue") and returns its hex value. A bare family defaults to shade 500.
func ParseColor(colorClass string) (string, error) {
	if colorClass == "" {
		return "", fmt.Errorf("empty color class")
	}

	name := colorClass
	for _, prefix := range colorPrefixes {
		if strings.HasPrefix(colorClass, prefix) {
			name = strings.TrimPrefix(colorClass, prefix)
			break
		}
	}

	if c, ok := SpecialColors[name]; ok {
		return c, nil
	}

	family, shade, found := strings.Cut(name, "-")
	if !found {
		shade = "500"
	}
	shades, ok := Colors[family]
	if !ok {
		return "", fmt.Errorf("unknown color '%s'", colorClass)
	}
	hex, ok := shades[shade]
	if !ok {
		return "", fmt.Errorf("invalid shade '%s' for color '%s'", shade, family)
	}
	return hex, nil
}

// HexToRGBA converts "#rrggbb" (or "transparent") to an RGBA color.
func HexToRGBA(hex string) (color.RGBA, error) {
	if hex == "transparent" {
		return color.RGBA{}, nil
	}
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color '%s'", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color '%s': %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
