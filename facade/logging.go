// File: facade/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/momentics/thermostress/api"
)

// TimestampFormat is used by both log formats.
const TimestampFormat = "2006-01-02T15:04:05.999Z07:00"

// NewLogger builds the process logger. level accepts logrus level names;
// format is "text" or "json".
func NewLogger(out io.Writer, level, format string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeInvalidArgument, "bad log level", err).WithContext("log_level", level)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			TimestampFormat: TimestampFormat,
			FullTimestamp:   true,
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: TimestampFormat})
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unknown log format").WithContext("log_format", format)
	}
	return log, nil
}
