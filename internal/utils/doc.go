// Package utils exposes reusable helpers consumed by the CLI.
//
// It houses ConfigurationLoader, which layers flags, environment variables,
// configuration files, and embedded defaults through Viper, and LoggerFactory,
// which builds zap loggers with an optional rotating file sink.
package utils
