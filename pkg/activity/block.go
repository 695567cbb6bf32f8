package activity

import (
	"fmt"
	"strings"
)

// RenderAll renders every activity in input order. The first failure aborts
// the whole run; activities are never skipped.
func RenderAll(raws []Raw, opts Options) ([]string, error) {
	lines := make([]string, 0, len(raws))
	for i := range raws {
		line, err := Render(raws[i], opts)
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", i, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Block renders activities and joins them with newlines.
// No activities yields an empty block.
func Block(raws []Raw, opts Options) (string, error) {
	lines, err := RenderAll(raws, opts)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}
