package ui

import "testing"

func TestClassifyCO2(t *testing.T) {
	tests := []struct {
		ppm  uint16
		want Level
	}{
		{0, LevelGood},
		{420, LevelGood},
		{799, LevelGood},
		{800, LevelModerate},
		{1199, LevelModerate},
		{1200, LevelPoor},
		{5000, LevelPoor},
	}
	for _, tt := range tests {
		if got := ClassifyCO2(tt.ppm); got != tt.want {
			t.Errorf("ClassifyCO2(%d) = %v, want %v", tt.ppm, got, tt.want)
		}
	}
}

func TestLevelText(t *testing.T) {
	for _, l := range []Level{LevelGood, LevelModerate, LevelPoor} {
		if l.String() == "" || l.Advice() == "" || l.Color() == "" {
			t.Errorf("level %d has empty text or color", l)
		}
	}
}

func TestGaugeFraction(t *testing.T) {
	tests := []struct {
		ppm  uint16
		want float64
	}{
		{0, 0},
		{1000, 0.5},
		{2000, 1},
		{4000, 1},
	}
	for _, tt := range tests {
		if got := GaugeFraction(tt.ppm); got != tt.want {
			t.Errorf("GaugeFraction(%d) = %v, want %v", tt.ppm, got, tt.want)
		}
	}
}
