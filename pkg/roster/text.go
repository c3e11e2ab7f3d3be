package roster

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/bastiangx/weldsplit/pkg/tokens"
	"github.com/charmbracelet/log"
)

// minFields is id, surname, name.
const minFields = 3

func loadTextFile(path string) (*tokens.Dictionary, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{Format: FormatText}, unavailable(path, err)
	}
	defer file.Close()

	dict, stats, err := ReadText(file)
	if err != nil {
		return nil, stats, unavailable(path, err)
	}
	return dict, stats, nil
}

// ReadText parses a comma delimited roster from r.
func ReadText(r io.Reader) (*tokens.Dictionary, LoadStats, error) {
	dict := tokens.New()
	stats := LoadStats{Format: FormatText}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		e, ok := parseLine(line)
		if !ok {
			stats.Rejected++
			log.Warnf("Rejected roster line %d: %q", stats.Lines, line)
			continue
		}
		if err := add(dict, e, &stats); err != nil {
			stats.Rejected++
			log.Warnf("Rejected roster line %d: %v", stats.Lines, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, err
	}
	return dict, stats, nil
}

func parseLine(line string) (Employee, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < minFields {
		return Employee{}, false
	}
	e := Employee{
		ID:      strings.TrimSpace(parts[0]),
		Surname: strings.TrimSpace(parts[1]),
		Name:    strings.TrimSpace(parts[2]),
	}
	return e, e.ID != ""
}
