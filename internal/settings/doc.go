// Package settings loads and persists the exposure meter's user settings.
//
// Settings live in a TOML file with three tables: [exposure] for the
// ExposureConfig a session starts with, [calibration] for the profile, and
// [ticker] for the host's tick period. Shutter speeds and apertures are stored
// the way a photographer writes them ("1/125", "f/5.6") and parsed against the
// meter's tables on load.
//
// Load applies defaults, decodes the file when it exists, normalizes and
// validates. Save takes an advisory file lock next to the settings file and
// replaces the file atomically, so concurrent hosts never observe a partial
// write.
package settings
