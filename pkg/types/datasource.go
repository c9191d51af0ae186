package types

import "fmt"

// DatasourceID identifies one logical raw data source, such as a named
// file or the output of a command. It is an opaque key: the filter
// subsystem compares it for equality and nothing else.
type DatasourceID string

// ParseDatasourceID validates s as a datasource identifier.
// Returns error for empty input.
func ParseDatasourceID(s string) (DatasourceID, error) {
	if s == "" {
		return "", fmt.Errorf("datasource ID must not be empty")
	}
	return DatasourceID(s), nil
}

// String implements Stringer.
func (id DatasourceID) String() string {
	return string(id)
}
