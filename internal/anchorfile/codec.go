package anchorfile

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMalformedRecord is returned when a scenario file cannot be parsed.
var ErrMalformedRecord = errors.New("malformed anchor record")

// Encode writes each record as a bare JSON object with no separator.
func Encode(w io.Writer, recs ...AnchorRecord) error {
	for i := range recs {
		data, err := json.Marshal(&recs[i])
		if err != nil {
			return fmt.Errorf("failed to marshal anchor %q: %w", recs[i].Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write anchor %q: %w", recs[i].Name, err)
		}
	}
	return nil
}

// Decode reads concatenated JSON objects until EOF. Whitespace between objects
// is tolerated; anything else is a malformed record.
func Decode(r io.Reader) ([]AnchorRecord, error) {
	dec := json.NewDecoder(bufio.NewReader(r))
	var recs []AnchorRecord
	for {
		var rec AnchorRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return recs, fmt.Errorf("%w: record %d: %v", ErrMalformedRecord, len(recs), err)
		}
		recs = append(recs, rec)
	}
}

// AppendFile appends records to the scenario file, creating it if needed.
func AppendFile(path string, recs ...AnchorRecord) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open scenario file: %w", err)
	}
	if err := Encode(f, recs...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes every record in a scenario file.
func ReadFile(path string) ([]AnchorRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
