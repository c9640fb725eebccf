package reporter

import "github.com/sirupsen/logrus"

// logrusReporter routes component messages through a *logrus.Logger,
// attaching fields the way a production deployment would (component,
// principal, operation, path) rather than interpolating them into the
// message string.
type logrusReporter struct {
	log *logrus.Logger
}

// NewLogrus wraps log as a Reporter. Passing nil uses logrus.StandardLogger
// so messages still go to stderr when no logger is installed.
func NewLogrus(log *logrus.Logger) Reporter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &logrusReporter{log: log}
}

func (r *logrusReporter) Info(msg string, fields Fields) {
	r.log.WithFields(logrus.Fields(fields)).Info(msg)
}

func (r *logrusReporter) Warn(msg string, fields Fields) {
	r.log.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (r *logrusReporter) Error(msg string, fields Fields) {
	r.log.WithFields(logrus.Fields(fields)).Error(msg)
}
