package operation

import (
	"fmt"
	"strings"
)

// Quality is the render quality hint from the render settings.
type Quality int

const (
	QualityHigh Quality = iota
	QualityMedium
	QualityLow
)

func (q Quality) String() string {
	switch q {
	case QualityHigh:
		return "high"
	case QualityMedium:
		return "medium"
	case QualityLow:
		return "low"
	}
	return fmt.Sprintf("quality(%d)", int(q))
}

// ParseQuality converts a lowercase name. Draft is an alias of low.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(s) {
	case "", "high":
		return QualityHigh, nil
	case "medium":
		return QualityMedium, nil
	case "low", "draft":
		return QualityLow, nil
	}
	return QualityHigh, fmt.Errorf("unknown quality %q", s)
}

// StepMode selects how the sampling step grows as quality drops.
type StepMode int

const (
	StepIncrease StepMode = iota
	StepMultiply
)

// QualityStep is the sampling stride derived from a quality hint. Offset is
// the matching stride in a four channel float array.
type QualityStep struct {
	Step   int
	Offset int
}

// NewQualityStep derives the stride for q.
func NewQualityStep(q Quality, mode StepMode) QualityStep {
	step := 1
	switch q {
	case QualityMedium:
		step = 2
	case QualityLow:
		if mode == StepMultiply {
			step = 4
		} else {
			step = 3
		}
	}
	return QualityStep{Step: step, Offset: step * 4}
}
