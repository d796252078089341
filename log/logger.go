package log

import "github.com/rambollwong/rainbowlog"

var (
	DefaultLoggerLabel = "RAINBOW-SOCK"
	Logger             = rainbowlog.New(rainbowlog.WithDefault(), rainbowlog.WithLabels(DefaultLoggerLabel))
)

// InitLogger replaces the root logger. Components created afterwards derive their sub-loggers from it.
func InitLogger(rootLogger *rainbowlog.Logger) {
	Logger = rootLogger.SubLogger(rainbowlog.WithLabels(DefaultLoggerLabel))
}

// Component returns a sub-logger of the root logger labeled with the given component name.
func Component(name string) *rainbowlog.Logger {
	return Logger.SubLogger(rainbowlog.WithLabels(DefaultLoggerLabel, name))
}
