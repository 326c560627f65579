package content

import (
	"bytes"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// timestampLayouts are tried in order when reading dates.
// The first one is also the write format.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a frontmatter date, written as an ISO-8601 string with
// millisecond precision and read from any of timestampLayouts.
type Timestamp struct {
	time.Time
}

// MarshalYAML implements yaml.Marshaler.
func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return "", nil
	}

	return t.UTC().Format(timestampLayouts[0]), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Timestamp) UnmarshalYAML(value *yaml.Node) error {
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}

	return errors.Errorf("unsupported date %q", raw)
}

// Encode renders doc as a YAML frontmatter block followed by the body.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc.Frontmatter); err != nil {
		return nil, errors.Wrap(err, "encode frontmatter")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "close frontmatter encoder")
	}

	buf.WriteString(frontmatterDelim + "\n")
	buf.WriteString(doc.Body)
	return buf.Bytes(), nil
}

// Decode parses a stored file. A file that does not open with a
// frontmatter delimiter is all body.
func Decode(slug string, raw []byte) (*Document, error) {
	doc := &Document{Slug: slug}
	s := string(raw)

	first, rest, found := strings.Cut(s, "\n")
	if !found || strings.TrimRight(first, "\r") != frontmatterDelim {
		doc.Body = s
		return doc, nil
	}

	var head strings.Builder
	for {
		line, after, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == frontmatterDelim {
			if err := yaml.Unmarshal([]byte(head.String()), &doc.Frontmatter); err != nil {
				return nil, errors.Wrapf(err, "decode frontmatter of %q", slug)
			}

			doc.Body = after
			return doc, nil
		}
		if !more {
			return nil, errors.Errorf("unterminated frontmatter in %q", slug)
		}

		head.WriteString(line)
		head.WriteByte('\n')
		rest = after
	}
}
