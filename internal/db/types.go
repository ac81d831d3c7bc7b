package db

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Sets are stored delimited on both ends (",en,he,") so membership can be
// checked with a portable LIKE '%,v,%' in SQL.
const setDelimiter = ","

// StringSet is a small ordered set of codes, e.g. active languages.
type StringSet []string

func (s StringSet) Contains(v string) bool {
	return slices.Contains(s, v)
}

// Pattern returns the LIKE pattern matching rows that contain v.
func (StringSet) Pattern(v string) string {
	return "%" + setDelimiter + v + setDelimiter + "%"
}

// GormDataType stores the set as a plain string column.
func (StringSet) GormDataType() string { return "string" }

// Value implements driver.Valuer.
func (s StringSet) Value() (driver.Value, error) {
	return encodeSet([]string(s)), nil
}

// Scan implements sql.Scanner.
func (s *StringSet) Scan(value interface{}) error {
	raw, err := setSource(value)
	if err != nil {
		return err
	}
	*s = decodeSet(raw)
	return nil
}

// IntSet is a small set of enum values, e.g. genders to match.
type IntSet []int

func (s IntSet) Contains(v int) bool {
	return slices.Contains(s, v)
}

func (IntSet) Pattern(v int) string {
	return "%" + setDelimiter + strconv.Itoa(v) + setDelimiter + "%"
}

func (IntSet) GormDataType() string { return "string" }

func (s IntSet) Value() (driver.Value, error) {
	items := make([]string, len(s))
	for i, v := range s {
		items[i] = strconv.Itoa(v)
	}
	return encodeSet(items), nil
}

func (s *IntSet) Scan(value interface{}) error {
	raw, err := setSource(value)
	if err != nil {
		return err
	}
	items := decodeSet(raw)
	out := make(IntSet, 0, len(items))
	for _, item := range items {
		v, err := strconv.Atoi(item)
		if err != nil {
			return fmt.Errorf("invalid int set item %q: %w", item, err)
		}
		out = append(out, v)
	}
	*s = out
	return nil
}

func encodeSet(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return setDelimiter + strings.Join(items, setDelimiter) + setDelimiter
}

func decodeSet(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, setDelimiter) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setSource(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("unsupported set column type %T", value)
	}
}
