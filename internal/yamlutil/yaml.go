// Package yamlutil wraps YAML parsing to isolate the external dependency.
// This allows swapping the underlying YAML library without modifying callers.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrParse          = errors.New("yamlutil: parse error")
)

const frontMatterFence = "---"

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes data into v, ignoring unknown fields.
func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// SplitFrontMatter separates a leading "---" fenced YAML block from a
// markdown document. ok is false when the document has no front matter, in
// which case body is content unchanged. Line endings must already be "\n".
func SplitFrontMatter(content string) (front []byte, body string, ok bool) {
	rest, found := strings.CutPrefix(content, frontMatterFence+"\n")
	if !found {
		return nil, content, false
	}
	if after, found := strings.CutPrefix(rest, frontMatterFence+"\n"); found {
		return nil, after, true
	}
	if rest == frontMatterFence {
		return nil, "", true
	}
	end := strings.Index(rest, "\n"+frontMatterFence+"\n")
	if end < 0 {
		if !strings.HasSuffix(rest, "\n"+frontMatterFence) {
			return nil, content, false
		}
		end = len(rest) - len(frontMatterFence) - 1
		return []byte(rest[:end]), "", true
	}
	return []byte(rest[:end]), rest[end+len(frontMatterFence)+2:], true
}

// UnmarshalFrontMatter decodes the front matter of content into v and
// returns the remaining body. Documents without front matter leave v untouched.
func UnmarshalFrontMatter(content string, v any) (string, error) {
	front, body, ok := SplitFrontMatter(content)
	if !ok || len(strings.TrimSpace(string(front))) == 0 {
		return body, nil
	}
	if err := Unmarshal(front, v); err != nil {
		return content, err
	}
	return body, nil
}
