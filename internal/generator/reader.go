package generator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vanshika/claimstream/internal/claims"
)

const maxLineBytes = 1 << 20

// ReadDataset decodes a claims.ndjson file written by WriteDataset.
func ReadDataset(path string) ([]claims.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	records, err := ReadNDJSON(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// ReadNDJSON decodes one claim per line. Blank lines are skipped.
func ReadNDJSON(r io.Reader) ([]claims.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []claims.Record
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec claims.Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
