// Package utils holds the process-wide plumbing shared by the gh-monitor commands: the Viper-backed
// ConfigurationLoader, the zap LoggerFactory, the command context accessor carrying the active
// configuration file, and a writer that flushes progress output as it is produced.
package utils
