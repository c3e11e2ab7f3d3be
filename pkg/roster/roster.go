/*
Package roster loads the employee list whose ids are the tokens a weld is split into.

Text rosters hold one employee per line:

	101,Hoxha,Arben
	1011,Krasniqi,Drita

Fields are trimmed, extra fields are ignored and blank lines are skipped. Lines
with fewer than three fields, or an empty id, are rejected and counted in
LoadStats. A later line with an id seen before replaces the earlier one.

Binary rosters are snapshots produced by SaveBinary: an int32 little endian entry
count followed by id, surname and name per entry, each a uint16 length plus bytes.

Any I/O or decode failure is returned wrapped in ErrUnavailable; a roster that
loads but holds no employees is not an error here.
*/
package roster

import (
	"errors"
	"fmt"

	"github.com/bastiangx/weldsplit/pkg/tokens"
	"github.com/charmbracelet/log"
)

// ErrUnavailable wraps every failure to read or decode a roster.
var ErrUnavailable = errors.New("roster unavailable")

// Employee is the metadata stored for each id in the dictionary.
type Employee struct {
	ID      string
	Surname string
	Name    string
}

// String renders the employee the way reports list commit owners.
func (e Employee) String() string {
	return e.Surname + ", " + e.Name
}

// LoadStats describes one load.
type LoadStats struct {
	Format     FileFormat
	Lines      int
	Loaded     int
	Rejected   int
	Duplicates int
}

// Load reads the roster at path, picking the format from its extension.
func Load(path string) (*tokens.Dictionary, LoadStats, error) {
	format := DetectFileFormat(path)
	stats := LoadStats{Format: format}

	if err := ValidateFileFormat(path, format); err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var (
		dict *tokens.Dictionary
		err  error
	)
	switch format {
	case FormatBinary:
		dict, stats, err = loadBinaryFile(path)
	default:
		dict, stats, err = loadTextFile(path)
	}
	if err != nil {
		return nil, stats, err
	}

	log.Debugf("Loaded %d employees from %s (%s), rejected %d lines",
		dict.Len(), path, stats.Format, stats.Rejected)
	return dict, stats, nil
}

func unavailable(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
}

// add inserts e and keeps the counters in stats current.
func add(dict *tokens.Dictionary, e Employee, stats *LoadStats) error {
	if dict.Has(e.ID) {
		stats.Duplicates++
		log.Debugf("Duplicate employee id %q, keeping the later entry", e.ID)
	}
	if err := dict.Add(e.ID, e); err != nil {
		return err
	}
	stats.Loaded++
	return nil
}

// Describe returns a lookup from id to the owner shown in reports.
// Ids without Employee metadata describe as "".
func Describe(dict *tokens.Dictionary) func(id string) string {
	return func(id string) string {
		meta, ok := dict.Meta(id)
		if !ok {
			return ""
		}
		if e, ok := meta.(Employee); ok {
			return e.String()
		}
		return ""
	}
}
