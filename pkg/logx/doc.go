// Package logx is a thin structured-logging facade over zerolog.
//
// It exposes a small Field-based API so call sites don't depend on zerolog
// directly, plus a Service that can re-apply sink configuration (console/file,
// level) at runtime when the config file changes.
package logx
