// Package config handles tasklane configuration.
package config

import "time"

const (
	// DefaultDir is the default data directory name.
	DefaultDir = ".tasklane"
	// DefaultName is the default workspace name.
	DefaultName = "tasks"
	// DefaultBackend is the default store backend.
	DefaultBackend = "file"
	// DefaultSQLitePath is the default sqlite file, relative to the data directory.
	DefaultSQLitePath = "tasklane.db"
	// DefaultSort is the default list sort key.
	DefaultSort = "dueDate"
	// DefaultDirection is the default list sort direction.
	DefaultDirection = "asc"
	// DefaultPageSize is the default number of tasks per page.
	DefaultPageSize = 10
	// DefaultSessionTTL is the default session lifetime as a duration string.
	DefaultSessionTTL = "168h"

	// ConfigFileName is the name of the config file within the data directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 2

	// SecretEnv overrides session.secret when set.
	SecretEnv = "TASKLANE_SECRET"
)

// DefaultPageSizes lists the page sizes offered by default (slices cannot be const).
var DefaultPageSizes = []int{5, 10, 25, 50}

func defaultSessionTTL() time.Duration {
	d, _ := time.ParseDuration(DefaultSessionTTL)
	return d
}
