// Package log provides a logging abstraction for vdesk components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. Default implementations are provided for zerolog
// and a no-op logger for library embedding and tests.
//
// # Usage
//
// Use the provided zerolog adapter:
//
//	logger := log.NewConsoleAdapter(os.Stderr, log.LevelDebug)
//
// Or the no-op logger:
//
//	logger := log.NewNoopLogger()
//
// Retry attempts on the worker thread are logged at debug level only.
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.1.0
package log
