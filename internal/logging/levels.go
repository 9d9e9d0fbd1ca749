package logging

import "go.uber.org/zap/zapcore"

// LevelFromString parses a zap level name, defaulting to info on an
// empty string.
func LevelFromString(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}
