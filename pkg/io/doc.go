// Package io reads project files and writes schedules.
//
// # Project files
//
// A project can be stored as JSON, YAML or TOML using the same field names:
//
//	{
//	  "startDate": "2025-01-06",
//	  "resources": ["BE", "FE"],
//	  "skipWeekends": true,
//	  "tasks": [
//	    {"id": "api", "name": "Build API", "durationDays": 3, "requiredResources": ["BE"]},
//	    {"id": "ui", "durationDays": 2, "dependsOn": ["api"], "requiredResources": ["FE"]}
//	  ]
//	}
//
// "startDateISO" is accepted as an alias of "startDate".
//
// A CSV file holds tasks only, one per row, with the header
// id,name,durationDays,dependsOn,requiredResources. List columns are
// separated by ";". The project's resources are the sorted union of the
// resources the tasks require and the start date is left for the caller.
//
// [ReadProjectFile] picks the decoder from the file extension; [Decode]
// takes an explicit [Format].
//
// # Schedules
//
// [WriteScheduleJSON] and [WriteScheduleCSV] export leveled schedules with
// dates formatted as YYYY-MM-DD. JSON output can be read back with
// [ReadScheduleJSON].
//
// Decoding errors carry the INVALID_FORMAT code from pkg/errors.
package io
