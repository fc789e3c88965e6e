// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 20

// Source Resolution - these keys select the stream and chapter file opened when no flags are given.
const (
	SourceDefault = "source.default"
)

// Media Surface - these keys configure the external mpv process.
const (
	PlayerPath       = "player.path"
	PlayerArgs       = "player.args"
	PlayerVolume     = "player.volume"
	PlayerFullscreen = "player.fullscreen"
)

// Stream Recovery - these keys bound the restart policy applied to fatal network errors.
const (
	StreamRetryMaxAttempts = "stream.retry.max_attempts"
	StreamRetryBaseDelay   = "stream.retry.base_delay"
	StreamRetryMaxDelay    = "stream.retry.max_delay"
	StreamRetryStableAfter = "stream.retry.stable_after"
)

// Adaptive Bitrate - these keys tune rendition selection in automatic mode.
const (
	StreamStartLevel         = "stream.start_level"
	StreamABRDefaultEstimate = "stream.abr.default_estimate"
	StreamABRBandwidthFactor = "stream.abr.bandwidth_factor"
)

// Terminal User Interface (TUI) - these keys define timeline geometry and keyboard seeking.
const (
	TUIEdgePadding = "tui.edge_padding"
	TUISeekStep    = "tui.seek_step"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
