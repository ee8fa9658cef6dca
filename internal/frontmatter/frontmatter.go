// Package frontmatter reads and rewrites the YAML header at the top of a
// Markdown note without touching the body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Header keys written for tracked notes.
const (
	KeyGistID  = "gist_id"
	KeyGistURL = "gist_url"
)

const delim = "---"

// ErrNotMapping is returned when the header parses as YAML but is not a
// key/value mapping.
var ErrNotMapping = errors.New("frontmatter: header is not a mapping")

// Header is an ordered mapping of string keys to YAML values.
// Keys keep the order they had in the file; new keys are appended.
type Header struct {
	node *yaml.Node
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// Len returns the number of keys.
func (h *Header) Len() int {
	return len(h.node.Content) / 2
}

// Keys returns the keys in file order.
func (h *Header) Keys() []string {
	keys := make([]string, 0, h.Len())
	for i := 0; i+1 < len(h.node.Content); i += 2 {
		keys = append(keys, h.node.Content[i].Value)
	}
	return keys
}

// Get returns the scalar value stored under key. Non-scalar values
// (lists, nested maps) report ok=false.
func (h *Header) Get(key string) (string, bool) {
	v := h.value(key)
	if v == nil || v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
		return "", false
	}
	return v.Value, true
}

// Set stores value as a string scalar under key, appending the key when absent.
func (h *Header) Set(key, value string) {
	if v := h.value(key); v != nil {
		if v.Kind == yaml.ScalarNode && v.Tag == "!!str" && v.Value == value {
			return
		}
		*v = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
		return
	}
	h.node.Content = append(h.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}

// Map decodes the header into a plain map for JSON responses.
func (h *Header) Map() (map[string]any, error) {
	out := map[string]any{}
	if err := h.node.Decode(&out); err != nil {
		return nil, fmt.Errorf("frontmatter: decode: %w", err)
	}
	return out, nil
}

func (h *Header) value(key string) *yaml.Node {
	for i := 0; i+1 < len(h.node.Content); i += 2 {
		if h.node.Content[i].Value == key {
			return h.node.Content[i+1]
		}
	}
	return nil
}

// Split separates the leading header from the body. The header must start
// on the first line of data and end at the next line holding only "---".
// When no header is present the returned header is nil and body is data.
func Split(data []byte) (*Header, []byte, error) {
	rest, ok := cutDelimLine(data)
	if !ok {
		return nil, data, nil
	}

	var block []byte
	var body []byte
	found := false
	for off := 0; off <= len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		var line []byte
		next := len(rest)
		if end >= 0 {
			line = rest[off : off+end]
			next = off + end + 1
		} else {
			line = rest[off:]
		}
		if string(bytes.TrimRight(line, "\r")) == delim {
			block = rest[:off]
			body = rest[next:]
			found = true
			break
		}
		if end < 0 {
			break
		}
		off = next
	}
	if !found {
		// Unclosed header: the whole file is body.
		return nil, data, nil
	}

	h, err := parseBlock(block)
	if err != nil {
		return nil, nil, err
	}
	return h, body, nil
}

// Render writes h followed by body. A nil or empty header renders the body alone.
func Render(h *Header, body []byte) ([]byte, error) {
	if h == nil || h.Len() == 0 {
		return body, nil
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(h.node); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: encode: %w", err)
	}
	buf.WriteString(delim + "\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// Merge sets gist_id and gist_url on h, leaving every other key alone.
// It reports whether anything changed.
func Merge(h *Header, id, url string) bool {
	oldID, hadID := h.Get(KeyGistID)
	oldURL, hadURL := h.Get(KeyGistURL)
	if hadID && hadURL && oldID == id && oldURL == url {
		return false
	}
	h.Set(KeyGistID, id)
	h.Set(KeyGistURL, url)
	return true
}

func cutDelimLine(data []byte) ([]byte, bool) {
	switch {
	case bytes.HasPrefix(data, []byte(delim+"\n")):
		return data[len(delim)+1:], true
	case bytes.HasPrefix(data, []byte(delim+"\r\n")):
		return data[len(delim)+2:], true
	}
	return nil, false
}

func parseBlock(block []byte) (*Header, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, fmt.Errorf("frontmatter: parse: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return commentOnlyHeader(block), nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return commentOnlyHeader(block), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	return &Header{node: root}, nil
}

// commentOnlyHeader returns an empty header that keeps the comment lines of
// block, so they survive a later Merge.
func commentOnlyHeader(block []byte) *Header {
	h := NewHeader()
	var comments []string
	for _, line := range strings.Split(string(block), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			comments = append(comments, line)
		}
	}
	h.node.HeadComment = strings.Join(comments, "\n")
	return h
}
