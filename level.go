package blocklog

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// LevelCodes maps level flags to short display codes.
type LevelCodes map[LogLevel]string

// Predefined level codes used by New()
var DefaultLevelCodes = LevelCodes{
	LVL_ERROR:         "E",
	LVL_WARNING:       "W",
	LVL_INFO:          "I",
	LVL_TRACE:         "T",
	LVL_PROFILE_BEGIN: "PB",
	LVL_PROFILE_END:   "PE",
	LVL_PROFILE:       "P",
}

// Level names as used in configuration files and by hosts decoding records
var levelNames = map[string]LogLevel{
	"error":         LVL_ERROR,
	"warning":       LVL_WARNING,
	"info":          LVL_INFO,
	"trace":         LVL_TRACE,
	"profile":       LVL_PROFILE,
	"profile_begin": LVL_PROFILE_BEGIN,
	"profile_end":   LVL_PROFILE_END,
}

// Returns the code for a level or LEVEL_UNKNOWN_CODE for unmapped levels.
func (c LevelCodes) Name(level LogLevel) string {
	if code, ok := c[level]; ok {
		return code
	}
	return LEVEL_UNKNOWN_CODE
}

// Returns the default code for a level.
func LevelName(level LogLevel) string {
	return DefaultLevelCodes.Name(level)
}

// LevelNames lists the accepted level names in a stable order.
func LevelNames() []string {
	return slices.Sorted(maps.Keys(levelNames))
}

// Resolves a lowercase level name ("error", "profile_begin", ...) to its flag.
func ParseLevelName(name string) (LogLevel, error) {
	if level, ok := levelNames[name]; ok {
		return level, nil
	}
	return 0, fmt.Errorf("%w `%s` (expected one of: %s)", ErrUnknownLevelName, name, strings.Join(LevelNames(), ", "))
}

// Combines level names into a mask. An empty list gives 0 (no level filter).
func ParseLevelNames(names []string) (mask LogLevel, err error) {
	for _, name := range names {
		level, err := ParseLevelName(name)
		if err != nil {
			return 0, err
		}
		mask |= level
	}
	return mask, nil
}
