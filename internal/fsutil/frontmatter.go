package fsutil

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// FrontMatter splits a Markdown document into its leading YAML block and the
// remaining body. A document without a complete block yields an empty map and
// the whole content as body; YAML that does not decode to a mapping yields an
// empty map.
func FrontMatter(content string) (map[string]any, string) {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterDelimiter {
		return map[string]any{}, content
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterDelimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return map[string]any{}, content
	}

	body := strings.Join(lines[end+1:], "\n")
	block := strings.Join(lines[1:end], "\n")

	fm := map[string]any{}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil || fm == nil {
		return map[string]any{}, body
	}
	return fm, body
}

// ReadFrontMatter reads path and returns its front-matter. A missing file
// yields an empty map and false.
func ReadFrontMatter(path string) (map[string]any, string, bool) {
	content, ok := ReadFile(path)
	if !ok {
		return map[string]any{}, "", false
	}
	fm, body := FrontMatter(content)
	return fm, body, true
}

// String returns the first non-empty scalar among keys, rendered as a string
func String(m map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

// HasKey reports whether any of keys is present, even with a null value
func HasKey(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

// Bool interprets the first present key as a boolean
func Bool(m map[string]any, keys ...string) (bool, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case bool:
			return v, true
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b, true
			}
		}
	}
	return false, false
}

// Strings returns the first present key as a list of strings. A scalar becomes
// a one-element list, and a comma-separated string is split.
func Strings(m map[string]any, keys ...string) []string {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch list := v.(type) {
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				if s := scalarString(item); s != "" {
					out = append(out, s)
				}
			}
			return out
		case string:
			var out []string
			for _, part := range strings.Split(list, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
			return out
		default:
			if s := scalarString(list); s != "" {
				return []string{s}
			}
		}
	}
	return nil
}

// Map returns the first present key as a nested mapping
func Map(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if nested, ok := m[key].(map[string]any); ok {
			return nested
		}
	}
	return nil
}

// List returns the first present key as a raw list
func List(m map[string]any, keys ...string) []any {
	for _, key := range keys {
		if list, ok := m[key].([]any); ok {
			return list
		}
	}
	return nil
}

// Records converts a YAML list into mappings. Plain scalar entries become
// {"id": value} so lists of ids and lists of objects read the same way.
func Records(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			out = append(out, v)
		default:
			if s := scalarString(v); s != "" {
				out = append(out, map[string]any{"id": s})
			}
		}
	}
	return out
}

// Heading returns the text of the first level-one Markdown heading in body
func Heading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// Stem returns a file name without its extension
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case map[string]any, []any:
		return ""
	case time.Time:
		// unquoted YAML timestamps decode as time.Time
		if s.Hour() == 0 && s.Minute() == 0 && s.Second() == 0 && s.Nanosecond() == 0 {
			return s.Format(time.DateOnly)
		}
		return s.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}
