// Package risk classifies thermal and physiological indices into ordinal
// risk levels and folds per-factor levels into one overall level.
//
// Overall risk is the maximum level among the factors assessed at an instant.
// NotAssessed marks an absent factor: it never participates in the maximum,
// and an instant with no assessed factor is itself NotAssessed, which is not
// the same claim as NoneLow.
package risk

import "fmt"

// Level is an ordinal risk level.
type Level int

const (
	NotAssessed Level = -1
	NoneLow     Level = 0
	Moderate    Level = 1
	High        Level = 2
	VeryHigh    Level = 3
	Extreme     Level = 4
)

// LevelLabel pairs a level with its display label.
type LevelLabel struct {
	Level Level
	Label string
}

// Labels is the ordered level-to-label table for the assessed levels.
var Labels = [...]LevelLabel{
	{NoneLow, "None/Low"},
	{Moderate, "Moderate"},
	{High, "High"},
	{VeryHigh, "Very High"},
	{Extreme, "Extreme"},
}

// String returns the display label.
func (l Level) String() string {
	if l.Assessed() {
		return Labels[l].Label
	}
	if l == NotAssessed {
		return "Not Assessed"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Assessed reports whether l is one of the five ordinal levels.
func (l Level) Assessed() bool { return l >= NoneLow && l <= Extreme }

// Overall returns the maximum assessed level, or NotAssessed when none of the
// given levels is assessed.
func Overall(levels ...Level) Level {
	out := NotAssessed
	for _, l := range levels {
		if l.Assessed() && l > out {
			out = l
		}
	}
	return out
}
