package risk

import (
	id "fides/pkg/domain"
)

// Scores and thresholds live on a 0..100 scale.
const (
	MaxScore       = 100
	MaxMetadataLen = 1024

	DefaultMediumThreshold = 50
	DefaultHighThreshold   = 75
)

// RiskLevel classifies a score against an activity type's thresholds.
type RiskLevel uint8

const (
	LevelLow RiskLevel = iota
	LevelMedium
	LevelHigh
)

func (l RiskLevel) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Score is a user's rolling risk state. The score moves only through
// activity logging; the flag moves through both scoring and manual analyst
// action.
type Score struct {
	Score       uint8
	LastUpdated uint64
	Flagged     bool
}

// ActivityLogEntry is one immutable line of a user's activity history.
// Activity ids are dense per user, starting at 1, and never reused.
type ActivityLogEntry struct {
	ID        uint64
	Type      id.ActivityType
	Timestamp uint64
	RiskScore uint8
	Metadata  string
	IPHash    id.Hash
}

// Threshold holds the per-activity-type classification boundaries.
// Medium must be strictly below High.
type Threshold struct {
	Medium uint8
	High   uint8
}

// DefaultThreshold applies when the admin has not configured a type.
var DefaultThreshold = Threshold{Medium: DefaultMediumThreshold, High: DefaultHighThreshold}

// Classify maps a score onto the threshold's three bands.
func (t Threshold) Classify(score uint8) RiskLevel {
	switch {
	case score >= t.High:
		return LevelHigh
	case score >= t.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}
