// Package domain models Home Assistant recorder state history.
//
// # Data Source
//
// Home Assistant's recorder component persists every entity state change to
// an embedded SQLite database (home-assistant_v2.db). The tables this system
// touches are owned by the recorder, not by us: events, recorder_runs,
// schema_changes, and states. The states table holds one row per recorded
// state change with, among others, the columns domain, entity_id, state,
// attributes, and last_changed.
//
// # Recorder Data Conventions
//
// Attributes blob:
//
//	JSON object serialized to text. For sensor entities it carries at least
//	"friendly_name" (human-readable label) and "unit_of_measurement"
//	(the unit the state value was recorded in, e.g. "°C"). Extraction
//	requires both keys; a blob missing either, or that is not valid JSON,
//	is malformed.
//
// Timestamp format:
//
//	last_changed is stored as a naive wall-clock string:
//
//	  YYYY-MM-DD HH:MM:SS.ffffff  →  e.g. "2023-01-14 07:30:00.124309"
//
//	No timezone suffix, fractional seconds up to microseconds with a
//	variable number of digits. Because the digit count varies, timestamp
//	strings do not sort lexically; time-window filtering must compare
//	parsed instants. Values are parsed as UTC so that readings compare
//	among themselves and with caller-supplied bounds independent of the
//	host timezone.
//
// State value:
//
//	The state column is text. For temperature sensors it is a decimal
//	number ("21.4"); anything that does not parse as a float is malformed.
//	Sentinel states the platform writes during restarts ("unknown",
//	"unavailable") therefore fail extraction rather than producing
//	garbage readings.
//
// Temperature sensors:
//
//	A row is a temperature reading candidate when domain == "sensor" and
//	entity_id contains the substring "temperature"
//	(e.g. "sensor.living_room_temperature").
//
// # Units
//
// Only celsius and fahrenheit are recognized. ParseUnit resolves the
// canonical names case-insensitively along with the symbols the recorder
// writes into attribute blobs ("°C", "°F") and the bare letters. There is
// no Kelvin support and no silent fallback: an unknown target unit fails
// the whole extraction up front.
package domain
