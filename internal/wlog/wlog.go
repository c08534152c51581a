// Package wlog is the ambient logger shared by every wlrcore package.
package wlog

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
	Prefix:          "wlrcore",
})

func init() {
	switch strings.ToUpper(os.Getenv("WLR_LOG_LEVEL")) {
	case "DEBUG":
		logger.SetLevel(log.DebugLevel)
	case "WARN", "WARNING":
		logger.SetLevel(log.WarnLevel)
	case "ERROR":
		logger.SetLevel(log.ErrorLevel)
	case "SILENT":
		logger.SetLevel(log.FatalLevel + 1)
	default:
		logger.SetLevel(log.InfoLevel)
	}
}

// SetLevel overrides the level derived from WLR_LOG_LEVEL at startup.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		logger.SetLevel(log.DebugLevel)
	case "INFO":
		logger.SetLevel(log.InfoLevel)
	case "WARN", "WARNING":
		logger.SetLevel(log.WarnLevel)
	case "ERROR":
		logger.SetLevel(log.ErrorLevel)
	}
}

// With returns a child logger carrying the given key/value pairs, the way
// every subsystem (session, drm, libinput, backend) tags its log lines with
// the component name.
func With(component string, keyvals ...interface{}) *log.Logger {
	sub := logger.With(append([]interface{}{"component", component}, keyvals...)...)
	return sub
}

func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
