package rtstream

import "github.com/sirupsen/logrus"

var logger *logrus.Logger = logrus.StandardLogger()

// SetLogger routes the package's log output through l. Decode warnings and
// connection lifecycle events are logged; per-packet paths are not.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger = l
	}
}
