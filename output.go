package gotfm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteList writes lines to path, one per line, creating parent directories
// as needed. mode selects whether existing content is replaced or kept.
func WriteList(path string, lines []string, mode FileMode) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE
	switch mode {
	case Overwrite:
		flags |= os.O_TRUNC
	case Append:
		flags |= os.O_APPEND
	default:
		return fmt.Errorf("write %s: unsupported %s", path, mode)
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	return f.Close()
}
