package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/samdwyer/wildgates/internal/combat"
	"github.com/samdwyer/wildgates/internal/gamedata"
)

var (
	colorBackground  = colorful.Color{R: 0, G: 0, B: 0}
	colorHealthy     = colorful.Color{R: 0.31, G: 0.86, B: 0.39}
	colorCritical    = colorful.Color{R: 0.9, G: 0.2, B: 0.2}
	colorOpponentHit = mustColor("#FFD23F")
	colorAttackerHit = mustColor("#FF5050")
)

func mustColor(hex string) colorful.Color {
	c, err := gamedata.ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// TagColor maps a feedback color tag to a concrete color.
func TagColor(tag combat.ColorTag) colorful.Color {
	switch tag {
	case combat.ColorOpponentHit:
		return colorOpponentHit
	case combat.ColorAttackerHit:
		return colorAttackerHit
	default:
		return colorful.Color{R: 1, G: 1, B: 1}
	}
}

// FadeColor blends c toward the background as progress goes from 0 to 1.
func FadeColor(c colorful.Color, progress float64) tcell.Color {
	return gamedata.ToTCell(c.BlendLab(colorBackground, clamp01(progress)))
}

// HealthColor shades a health bar from red when empty to green when full.
func HealthColor(current, maximum int) tcell.Color {
	frac := 0.0
	if maximum > 0 {
		frac = float64(current) / float64(maximum)
	}
	return gamedata.ToTCell(colorCritical.BlendHcl(colorHealthy, clamp01(frac)))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
