package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger instance. It discards everything until
// Initialize is called so packages can log from tests.
var Log = zap.NewNop()

// RequestIDKey is the fiber locals key holding the request id.
const RequestIDKey = "request_id"

// Initialize sets up the logger for the given environment.
func Initialize(env string) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := config.Build()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	Log = l
}

// Sync flushes buffered entries. Errors from syncing stdout are ignored.
func Sync() {
	_ = Log.Sync()
}

// RequestLogger returns a fiber middleware that logs request details.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set("X-Request-ID", requestID)

		err := c.Next()

		Log.Info("Request completed",
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.String("ip", c.IP()),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}

// Error logs an error with the request id of c.
func Error(c *fiber.Ctx, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("request_id", RequestID(c)))
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Log.Error(msg, fields...)
}

// Info logs an info message with the request id of c.
func Info(c *fiber.Ctx, msg string, fields ...zap.Field) {
	fields = append(fields, zap.String("request_id", RequestID(c)))
	Log.Info(msg, fields...)
}

// Warn logs a warning with the request id of c.
func Warn(c *fiber.Ctx, msg string, fields ...zap.Field) {
	fields = append(fields, zap.String("request_id", RequestID(c)))
	Log.Warn(msg, fields...)
}

// Debug logs a debug message with the request id of c.
func Debug(c *fiber.Ctx, msg string, fields ...zap.Field) {
	fields = append(fields, zap.String("request_id", RequestID(c)))
	Log.Debug(msg, fields...)
}

// RequestID returns the id stored by RequestLogger, or "unknown".
func RequestID(c *fiber.Ctx) string {
	if c == nil {
		return "unknown"
	}
	if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
		return id
	}
	return "unknown"
}
