package tailwind

import (
	"strconv"
	"strings"
)

// Style is the box/text styling resolved from a Tailwind class string.
// Sizes are in px.
type Style struct {
	Foreground        string
	Background        string
	BackgroundOpacity float64
	BorderColor       string
	BorderDashed      bool
	Border            bool
	Bold              bool
	Rounded           bool
	Shadow            bool
	FontSize          float64
	Width             float64
	Height            float64
	Padding           Sides
	Margin            Sides
}

// ParseStyle parses a space separated Tailwind class string. Unknown classes
// are ignored.
func ParseStyle(classes string) Style {
	style := Style{BackgroundOpacity: 1}

	for _, class := range strings.Fields(classes) {
		switch class {
		case "font-bold", "font-semibold", "bold":
			style.Bold = true
			continue
		case "rounded", "rounded-md", "rounded-lg":
			style.Rounded = true
			continue
		case "shadow", "shadow-md", "shadow-lg":
			style.Shadow = true
			continue
		case "border":
			style.Border = true
			continue
		case "border-dashed":
			style.Border = true
			style.BorderDashed = true
			continue
		}

		switch {
		case strings.HasPrefix(class, "bg-opacity-"):
			if v, err := strconv.Atoi(strings.TrimPrefix(class, "bg-opacity-")); err == nil {
				style.BackgroundOpacity = float64(v) / 100
			}
		case strings.HasPrefix(class, "bg-"):
			if hex, err := ParseColor(class); err == nil {
				style.Background = hex
			}
		case strings.HasPrefix(class, "border-"):
			if hex, err := ParseColor(class); err == nil {
				style.Border = true
				style.BorderColor = hex
			}
		case strings.HasPrefix(class, "text-"):
			if size := ParseFontSize(class); size > 0 {
				style.FontSize = size
			} else if hex, err := ParseColor(class); err == nil {
				style.Foreground = hex
			}
		case strings.HasPrefix(class, "w-"), strings.HasPrefix(class, "h-"):
			if dim, px, ok := ParseLength(class); ok {
				if dim == "w" {
					style.Width = px
				} else {
					style.Height = px
				}
			}
		case strings.HasPrefix(class, "p"):
			style.Padding = style.Padding.Merge(ParseSides(class))
		case strings.HasPrefix(class, "m"):
			style.Margin = style.Margin.Merge(ParseSides(class))
		}
	}

	return style
}
