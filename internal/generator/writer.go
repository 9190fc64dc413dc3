package generator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vanshika/claimstream/internal/claims"
)

// DatasetFile is the file name WriteDataset writes under its directory.
const DatasetFile = "claims.ndjson"

// WriteDataset serializes the records into claims.ndjson under the provided directory.
func WriteDataset(records []claims.Record, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, DatasetFile)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteNDJSON(file, records); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// WriteNDJSON writes one JSON object per line, the same encoding the stream publishes.
func WriteNDJSON(w io.Writer, records []claims.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		payload, err := rec.Marshal()
		if err != nil {
			return fmt.Errorf("encode claim %s: %w", rec.ClaimID, err)
		}
		if _, err := bw.Write(payload); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
