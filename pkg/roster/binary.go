package roster

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/bastiangx/weldsplit/pkg/tokens"
	"github.com/charmbracelet/log"
)

func loadBinaryFile(path string) (*tokens.Dictionary, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{Format: FormatBinary}, unavailable(path, err)
	}
	defer file.Close()

	dict, stats, err := ReadBinary(bufio.NewReader(file))
	if err != nil {
		return nil, stats, unavailable(path, err)
	}
	return dict, stats, nil
}

// ReadBinary decodes a snapshot written by WriteBinary.
func ReadBinary(r io.Reader) (*tokens.Dictionary, LoadStats, error) {
	dict := tokens.New()
	stats := LoadStats{Format: FormatBinary}

	var totalEntries int32
	if err := binary.Read(r, binary.LittleEndian, &totalEntries); err != nil {
		return nil, stats, fmt.Errorf("failed to read roster header: %w", err)
	}
	if totalEntries < 0 || totalEntries > maxEntries {
		return nil, stats, fmt.Errorf("invalid entry count %d", totalEntries)
	}

	for i := 0; i < int(totalEntries); i++ {
		var fields [minFields]string
		for f := range fields {
			s, err := readString(r)
			if err != nil {
				return nil, stats, fmt.Errorf("entry %d: %w", i, err)
			}
			fields[f] = s
		}
		stats.Lines++

		e := Employee{ID: fields[0], Surname: fields[1], Name: fields[2]}
		if err := add(dict, e, &stats); err != nil {
			stats.Rejected++
			log.Warnf("Rejected roster entry %d: %v", i, err)
		}
	}
	return dict, stats, nil
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", fmt.Errorf("failed to read field length: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("failed to read field: %w", err)
	}
	return string(buf), nil
}

// SaveBinary writes dict as a binary snapshot at path.
// Metadata that is not an Employee is saved with empty names.
func SaveBinary(path string, dict *tokens.Dictionary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating roster snapshot: %w", err)
	}
	writer := bufio.NewWriter(file)

	if err := WriteBinary(writer, dict); err != nil {
		file.Close()
		return err
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flushing roster snapshot: %w", err)
	}
	return file.Close()
}

// WriteBinary encodes dict in snapshot format, ids in lexicographic order.
func WriteBinary(w io.Writer, dict *tokens.Dictionary) error {
	ids := dict.IDs()
	if err := binary.Write(w, binary.LittleEndian, int32(len(ids))); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, id := range ids {
		e := Employee{ID: id}
		if meta, ok := dict.Meta(id); ok {
			if emp, ok := meta.(Employee); ok {
				e.Surname, e.Name = emp.Surname, emp.Name
			}
		}
		for _, field := range []string{e.ID, e.Surname, e.Name} {
			if err := writeString(w, field); err != nil {
				return fmt.Errorf("writing employee %s: %w", id, err)
			}
		}
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("field of %d bytes exceeds %d", len(s), math.MaxUint16)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}
