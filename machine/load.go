package machine

import (
	"bufio"
	"fmt"
	"io"
)

// LoadData reads whitespace-free lines of hex digit pairs (4 hex chars per
// word: byte0 then byte1) and inserts them into data memory starting at
// word 0, mirroring insert_data/load_files. Loading stops, without error,
// once DataFileWords have been written; any further words in the input are
// reported back to the caller to log as a warning, the same shape as
// caching.cpp's "Data exceeds allocated memory size" message.
func (m *Machine) LoadData(r io.Reader) (wordsLoaded int, truncated bool, err error) {
	scanner := bufio.NewScanner(r)
	idx := 0
	for scanner.Scan() {
		line := scanner.Text()
		for i := 0; i+4 <= len(line); i += 4 {
			if idx >= DataFileWords {
				return idx, true, nil
			}
			var b0, b1 uint8
			if _, err := fmt.Sscanf(line[i:i+4], "%02x%02x", &b0, &b1); err != nil {
				return idx, false, fmt.Errorf("data word %d: %w", idx, err)
			}
			m.Data[idx][0] = b0
			m.Data[idx][1] = b1
			idx++
		}
	}
	return idx, false, scanner.Err()
}
