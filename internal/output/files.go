package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Artifact file names.
const (
	DataCSV        = "pixel_data.csv"
	CommandCSV     = "pixel_cmd.csv"
	RawProgram     = "cmd_raw.txt"
	SimpleProgram  = "cmd_simple.txt"
	CompressedText = "cmd_compressed.txt"
	CompressedJSON = "cmd_compressed.json"
)

// bom is the UTF-8 byte order mark the CSV tables start with so spreadsheet
// tools pick the right encoding.
var bom = []byte{0xEF, 0xBB, 0xBF}

// WriteFile creates path (and its directory) and streams write into it
// through a buffer. It returns the number of bytes written.
func WriteFile(path string, write func(io.Writer) error) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cw := &countingWriter{w: f}
	bw := bufio.NewWriterSize(cw, 64*1024)
	if err := write(bw); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
