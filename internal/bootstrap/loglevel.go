package bootstrap

import "github.com/civictrack/civictrack-go/internal/logging"

// SetLogLevel applies LOG_LEVEL. Unknown values fall back to info; config
// validation rejects them before this point.
func SetLogLevel(level string) {
	l, _ := logging.ParseLevel(level)
	logging.SetLevel(l)
}
