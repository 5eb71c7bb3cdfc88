package alloc

import (
	"io"

	"github.com/sirupsen/logrus"
)

// orDiscard returns log, or a logger that drops everything when log is nil.
func orDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// reportMalformed logs a recovered per-cell problem at debug level.
func reportMalformed(log logrus.FieldLogger, e *MalformedCellError) {
	log.WithFields(logrus.Fields{
		"row":    e.Row,
		"column": e.Column,
	}).Debug(e.Error())
}
