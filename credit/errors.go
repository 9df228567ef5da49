/*
errors.go - Table validation errors

The calculation functions in this package never fail: unknown keys resolve
to zero. Errors exist only for validating table configuration before it is
turned into a Tables value.
*/
package credit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTables is returned when a TableSet is internally inconsistent.
	ErrInvalidTables = errors.New("invalid lookup tables")
)

// TableError points at the inconsistent entry.
type TableError struct {
	Table string
	Key   string
	Msg   string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("%s[%s]: %s", e.Table, e.Key, e.Msg)
}

func (e *TableError) Unwrap() error { return ErrInvalidTables }

// Validate checks that translations point at existing current keys, that
// rank targets point at known golongan, and that override keys are well
// formed. It collects every problem.
func (s TableSet) Validate() error {
	current := make(map[string]bool, len(s.CurrentCoefficients))
	for k := range s.CurrentCoefficients {
		current[currentKey(k)] = true
	}

	var errs []error
	for legacy, mapped := range s.LegacyToCurrent {
		if !current[currentKey(mapped)] {
			errs = append(errs, &TableError{Table: "legacy_to_current", Key: legacy, Msg: "maps to unknown jenjang " + mapped})
		}
	}
	for g, rt := range s.Targets {
		if rt.Next == "" {
			continue
		}
		if _, ok := s.Targets[rt.Next]; !ok {
			errs = append(errs, &TableError{Table: "targets", Key: string(g), Msg: "next golongan " + string(rt.Next) + " has no entry"})
		}
		if rt.Required.IsNegative() {
			errs = append(errs, &TableError{Table: "targets", Key: string(g), Msg: "negative required credit"})
		}
	}
	for key, o := range s.Overrides {
		cur, _, ok := strings.Cut(key, "|")
		if !ok || cur == "" {
			errs = append(errs, &TableError{Table: "overrides", Key: key, Msg: "key must be current|next"})
			continue
		}
		if _, found := s.Targets[Grade(cur)]; !found {
			errs = append(errs, &TableError{Table: "overrides", Key: key, Msg: "unknown golongan " + cur})
		}
		if o.RankMinimal.IsNegative() {
			errs = append(errs, &TableError{Table: "overrides", Key: key, Msg: "negative rank minimal"})
		}
	}
	return errors.Join(errs...)
}
