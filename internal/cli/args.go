package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// parseIndex converts a positional argument to a zero-based index.
func parseIndex(arg, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s index %q: must be a non-negative integer", what, arg)
	}
	return n, nil
}

// readContent returns --source, or the contents of --file ("-" reads stdin).
// Both flags at once is an error.
func readContent(source, file string, stdin io.Reader) (string, error) {
	if source != "" && file != "" {
		return "", fmt.Errorf("use either --source or --file, not both")
	}
	if file == "" {
		return source, nil
	}
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(data), nil
}
