// Package stripelog adapts structured loggers to the stripe.Logger interface.
package stripelog

import (
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"

	"github.com/fivetwenty-io/stripe-client/pkg/stripe"
)

var (
	_ stripe.Logger = (*Zerolog)(nil)
	_ stripe.Logger = (*Logrus)(nil)
)

// Zerolog forwards client log lines to a zerolog.Logger.
type Zerolog struct {
	logger zerolog.Logger
}

// NewZerolog wraps logger.
func NewZerolog(logger zerolog.Logger) *Zerolog {
	return &Zerolog{logger: logger.With().Str("component", "stripe").Logger()}
}

func (z *Zerolog) Debug(msg string, fields map[string]interface{}) {
	z.logger.Debug().Fields(fields).Msg(msg)
}

func (z *Zerolog) Info(msg string, fields map[string]interface{}) {
	z.logger.Info().Fields(fields).Msg(msg)
}

func (z *Zerolog) Warn(msg string, fields map[string]interface{}) {
	z.logger.Warn().Fields(fields).Msg(msg)
}

func (z *Zerolog) Error(msg string, fields map[string]interface{}) {
	z.logger.Error().Fields(fields).Msg(msg)
}

// Logrus forwards client log lines to a logrus.FieldLogger, such as a
// *logrus.Logger or a *logrus.Entry carrying service fields.
type Logrus struct {
	logger logrus.FieldLogger
}

// NewLogrus wraps logger. A nil logger uses the logrus standard logger.
func NewLogrus(logger logrus.FieldLogger) *Logrus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Logrus{logger: logger.WithField("component", "stripe")}
}

func (l *Logrus) Debug(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Debug(msg)
}

func (l *Logrus) Info(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Info(msg)
}

func (l *Logrus) Warn(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Warn(msg)
}

func (l *Logrus) Error(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Error(msg)
}
