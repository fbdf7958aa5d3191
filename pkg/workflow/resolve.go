package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// lookupPath walks a dot path with optional [n] indexes ("body.items[0]",
// "[1].name") through decoded JSON values. An empty path selects the whole
// value.
func lookupPath(value any, path string) (any, error) {
	if path == "" {
		return value, nil
	}

	current := value

	for _, token := range strings.Split(path, ".") {
		var err error

		current, err = applyPathToken(current, token, path)
		if err != nil {
			return nil, err
		}
	}

	return current, nil
}

func applyPathToken(current any, token, fullPath string) (any, error) {
	for token != "" {
		if token[0] == '[' {
			end := strings.IndexByte(token, ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: invalid index in %q", ErrMissingOutputPath, fullPath)
			}

			index, err := strconv.Atoi(token[1:end])
			if err != nil {
				return nil, fmt.Errorf("%w: invalid index in %q", ErrMissingOutputPath, fullPath)
			}

			list, ok := current.([]any)
			if !ok || index < 0 || index >= len(list) {
				return nil, fmt.Errorf("%w: index %d out of range in %q", ErrMissingOutputPath, index, fullPath)
			}

			current = list[index]
			token = token[end+1:]

			continue
		}

		head := token
		if bracket := strings.IndexByte(token, '['); bracket >= 0 {
			head = token[:bracket]
		}

		object, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an object field in %q", ErrMissingOutputPath, head, fullPath)
		}

		value, ok := object[head]
		if !ok {
			return nil, fmt.Errorf("%w: field %q in %q", ErrMissingOutputPath, head, fullPath)
		}

		current = value
		token = token[len(head):]
	}

	return current, nil
}
