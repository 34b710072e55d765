package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Level is an indoor air quality band derived from CO2 concentration.
type Level int

const (
	LevelGood Level = iota
	LevelModerate
	LevelPoor
)

// CO2 thresholds in ppm
const (
	ModerateThreshold = 800
	PoorThreshold     = 1200

	// GaugeMax is the concentration shown as a full gauge
	GaugeMax = 2000
)

// ClassifyCO2 returns the air quality band for ppm.
func ClassifyCO2(ppm uint16) Level {
	switch {
	case ppm < ModerateThreshold:
		return LevelGood
	case ppm < PoorThreshold:
		return LevelModerate
	default:
		return LevelPoor
	}
}

func (l Level) String() string {
	switch l {
	case LevelGood:
		return "good"
	case LevelModerate:
		return "moderate"
	default:
		return "poor"
	}
}

// Advice is a short recommendation for the band.
func (l Level) Advice() string {
	switch l {
	case LevelGood:
		return "air is fresh"
	case LevelModerate:
		return "consider ventilating"
	default:
		return "ventilate now"
	}
}

// Color returns the palette color for the band.
func (l Level) Color() lipgloss.Color {
	switch l {
	case LevelGood:
		return SuccessColor
	case LevelModerate:
		return WarningColor
	default:
		return ErrorColor
	}
}

// Style renders text in the band's color.
func (l Level) Style() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(l.Color()).Bold(true)
}

// GaugeFraction maps ppm onto [0, 1] for the gauge.
func GaugeFraction(ppm uint16) float64 {
	f := float64(ppm) / GaugeMax
	if f > 1 {
		return 1
	}
	return f
}
