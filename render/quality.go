package render

import (
	"fmt"
	"strings"
)

// Quality selects a render profile: the CLI flag passed to the tool
// and the output subdirectory the tool derives from it.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

type qualityProfile struct {
	flag string
	dir  string
}

var qualityProfiles = map[Quality]qualityProfile{
	QualityLow:    {flag: "-ql", dir: "480p15"},
	QualityMedium: {flag: "-qm", dir: "720p30"},
	QualityHigh:   {flag: "-qh", dir: "1080p60"},
}

func (q Quality) profile() qualityProfile {
	if p, ok := qualityProfiles[q]; ok {
		return p
	}
	return qualityProfiles[QualityMedium]
}

// ParseQuality maps a tier name to its Quality. Long-form names like
// "medium_quality" are accepted and the empty string selects the
// medium default; anything else is rejected.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return QualityMedium, nil
	case "low", "low_quality":
		return QualityLow, nil
	case "medium", "medium_quality":
		return QualityMedium, nil
	case "high", "high_quality":
		return QualityHigh, nil
	}
	return "", fmt.Errorf("unknown quality %q (want low, medium or high)", s)
}
