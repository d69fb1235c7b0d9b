package stamper

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Load reads info files and merges them into one map. Later
// files override earlier ones. Lines without a space are
// skipped.
func Load(infoFiles []string) (map[string]string, error) {
	const errCtx = "loading stamps"

	stamps := make(map[string]string)

	for _, sf := range infoFiles {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		sc := bufio.NewScanner(bytes.NewReader(content))
		for sc.Scan() {
			key, val, ok := strings.Cut(
				strings.TrimRight(sc.Text(), "\r"), " ",
			)
			if ok && key != "" {
				stamps[key] = val
			}
		}

		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", errCtx, sf, err)
		}
	}

	return stamps, nil
}

// Apply returns a copy of globals where every string, at any
// depth, has its {KEY} placeholders replaced with stamps.
// Unknown placeholders are kept as is. The stamps themselves
// are bound under key "stamp" unless globals already has it.
func Apply(
	globals map[string]any,
	stamps map[string]string,
) map[string]any {
	vars := make(map[string]any, len(stamps))
	for key, val := range stamps {
		vars[key] = val
	}

	out, _ := stampValue(globals, vars).(map[string]any)
	if out == nil {
		out = make(map[string]any)
	}

	if _, ok := out["stamp"]; !ok && len(stamps) > 0 {
		out["stamp"] = stamps
	}

	return out
}

func stampValue(val any, vars map[string]any) any {
	switch vv := val.(type) {
	case string:
		return fasttemplate.ExecuteStringStd(vv, "{", "}", vars)
	case map[string]any:
		out := make(map[string]any, len(vv))
		for key, elem := range vv {
			out[key] = stampValue(elem, vars)
		}

		return out
	case []any:
		out := make([]any, len(vv))
		for idx, elem := range vv {
			out[idx] = stampValue(elem, vars)
		}

		return out
	default:
		return val
	}
}
