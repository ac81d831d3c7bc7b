package matching

import "github.com/oggyb/speedy-match/internal/config"

// Settings are the pipeline limits and the global height range.
type Settings struct {
	MinHeight int
	MaxHeight int
	// QueryLimit caps the candidate rows read, most recent visit first.
	QueryLimit int
	// ResultLimit caps the ranked list.
	ResultLimit int
	// TargetActive is the candidate count at which the recency window stops widening.
	TargetActive int
}

func DefaultSettings() Settings {
	return Settings{
		MinHeight:    100,
		MaxHeight:    250,
		QueryLimit:   2400,
		ResultLimit:  720,
		TargetActive: 1080,
	}
}

// SettingsFromConfig maps the Match config section; unset values keep defaults.
func SettingsFromConfig(cfg *config.Config) Settings {
	s := DefaultSettings()
	if cfg == nil {
		return s
	}
	if cfg.Match.MinHeight > 0 {
		s.MinHeight = cfg.Match.MinHeight
	}
	if cfg.Match.MaxHeight > 0 {
		s.MaxHeight = cfg.Match.MaxHeight
	}
	if cfg.Match.QueryLimit > 0 {
		s.QueryLimit = cfg.Match.QueryLimit
	}
	if cfg.Match.ResultLimit > 0 {
		s.ResultLimit = cfg.Match.ResultLimit
	}
	if cfg.Match.TargetActive > 0 {
		s.TargetActive = cfg.Match.TargetActive
	}
	return s
}
