package config

import "log/slog"

// MethodLogLevel maps full gRPC method names to the level their calls are logged at.
// Methods not listed are logged at Info.
var MethodLogLevel = map[string]slog.Level{
	// Health probes run every few seconds from the orchestrator.
	"/grpc.health.v1.Health/Check": slog.LevelDebug,
	"/grpc.health.v1.Health/Watch": slog.LevelDebug,

	// Reflection is only used by tooling.
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      slog.LevelDebug,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": slog.LevelDebug,
}

// LogLevelForMethod returns the configured level for a method.
func LogLevelForMethod(fullMethod string) slog.Level {
	if level, ok := MethodLogLevel[fullMethod]; ok {
		return level
	}
	return slog.LevelInfo
}
