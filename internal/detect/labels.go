package detect

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadClassNames reads a labels file with one class name per line; the
// line number (zero-based, blank lines included) is the class id. This
// matches the ordering the model was exported with.
func LoadClassNames(path string) (ClassNames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels %s: %w", path, err)
	}
	defer f.Close()

	names := make(ClassNames)
	scanner := bufio.NewScanner(f)
	for id := 0; scanner.Scan(); id++ {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		names[id] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels %s: %w", path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return names, nil
}
