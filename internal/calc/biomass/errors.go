package biomass

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownComponent = errors.New("unknown component")
	ErrUnknownPreset    = errors.New("unknown preset")
	ErrDivisionByZero   = errors.New("division by zero")
)

// UnknownComponentError names the override key that matched nothing in the table.
type UnknownComponentError struct {
	Name       string
	Suggestion string
}

func (e *UnknownComponentError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown component %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown component %q", e.Name)
}

func (e *UnknownComponentError) Unwrap() error { return ErrUnknownComponent }

// suggest returns the closest candidate within a small edit distance, or "".
func suggest(name string, candidates []string) string {
	best := ""
	bestDist := -1
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(needle, strings.ToLower(cand))
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	limit := len(needle) / 2
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

// RatioSumWarning is advisory: custom ratios are allowed to miss 100%.
type RatioSumWarning struct {
	SumPercentage float64 `json:"sum_percentage"`
	Message       string  `json:"message"`
}

func (w RatioSumWarning) String() string { return w.Message }
