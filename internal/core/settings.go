package core

import "strconv"

const (
	SettingTitle         = "title"
	SettingPastPeriods   = "pastPeriods"
	SettingFuturePeriods = "futurePeriods"

	DefaultTitle         = "Billy"
	DefaultPastPeriods   = 1
	DefaultFuturePeriods = 3
)

// Settings is the free-form key/value store behind the settings API. Known
// keys get typed accessors with defaults; unknown keys round-trip as strings.
type Settings map[string]string

func (s Settings) Title() string {
	if v, ok := s[SettingTitle]; ok && v != "" {
		return v
	}
	return DefaultTitle
}

func (s Settings) PastPeriods() int {
	return s.intOr(SettingPastPeriods, DefaultPastPeriods)
}

func (s Settings) FuturePeriods() int {
	return s.intOr(SettingFuturePeriods, DefaultFuturePeriods)
}

func (s Settings) intOr(key string, def int) int {
	v, ok := s[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
