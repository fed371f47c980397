package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL joins a server URL and a database name and defaults sslmode to disable.
// An empty databaseName returns baseURL untouched.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, hasQuery := strings.Cut(baseURL, "?")
	databaseURL := fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), databaseName)
	if hasQuery {
		databaseURL += "?" + query
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !hasQuery {
			separator = "?"
		}
		databaseURL += separator + "sslmode=disable"
	}

	return databaseURL
}
