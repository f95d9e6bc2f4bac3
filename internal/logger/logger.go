// Package logger wires zap for the whole service: one process-wide logger
// plus a per-request child carrying the request id.
package logger

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// HeaderRequestID is read from and echoed back on every response.
	HeaderRequestID = "X-Request-ID"
	contextKey      = "logger"
)

var base = zap.NewNop()

// Init builds the global logger.  Production gets JSON output with ISO
// timestamps; everything else gets the colored development console.
func Init(env, level, service string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if env == "production" || env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.Fields(
		zap.String("service", service),
		zap.String("environment", env),
	))
	if err != nil {
		return nil, err
	}
	Set(l)
	return l, nil
}

// Set replaces the global logger.  Tests use it to install zaptest or nop
// loggers.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base = l
	zap.ReplaceGlobals(l)
}

// L returns the global logger.
func L() *zap.Logger { return base }

// FromEcho returns the request logger stored by Middleware, or the global
// logger outside a request.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(contextKey).(*zap.Logger); ok {
		return l
	}
	return base
}

// Middleware assigns a request id (reusing an inbound X-Request-ID), stores
// a child logger on the context and writes one access line per request.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
				c.Request().Header.Set(HeaderRequestID, rid)
			}
			c.Response().Header().Set(HeaderRequestID, rid)

			reqLog := base.With(zap.String("request_id", rid))
			c.Set(contextKey, reqLog)

			err := next(c)
			if err != nil {
				// let echo render the error so the logged status is the real one
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			switch status := c.Response().Status; {
			case status >= 500:
				reqLog.Error("http request", fields...)
			case status >= 400:
				reqLog.Warn("http request", fields...)
			default:
				reqLog.Info("http request", fields...)
			}
			return nil
		}
	}
}
