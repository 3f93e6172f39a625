package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/synheart/synheart-bpsim/internal/models"
)

// ReadReadings parses an NDJSON reading log as written by the ndjson format.
// Blank lines are skipped.
func ReadReadings(r io.Reader) ([]models.Reading, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var readings []models.Reading
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var reading models.Reading
		if err := json.Unmarshal(scanner.Bytes(), &reading); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse reading: %w", line, err)
		}
		if _, err := models.ParseState(string(reading.State)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		readings = append(readings, reading)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading readings: %w", err)
	}
	return readings, nil
}

// ReadReadingsFile reads an NDJSON reading log from path
func ReadReadingsFile(path string) ([]models.Reading, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &models.NotFoundError{Source: path, Err: err}
		}
		return nil, fmt.Errorf("failed to open readings file: %w", err)
	}
	defer file.Close()
	return ReadReadings(file)
}
