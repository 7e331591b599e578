// Package codec renders entities as the key=value text stored in each
// journal file, one field per line.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMissingKey    = errors.New("missing key")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrMalformedLine = errors.New("malformed line")
	ErrBadEscape     = errors.New("bad escape sequence")
)

type Field struct {
	Key   string
	Value string
}

// Fields keeps declaration order so files are written deterministically.
type Fields []Field

func (f Fields) Add(key, value string) Fields {
	return append(f, Field{Key: key, Value: value})
}

func (f Fields) AddInt(key string, value int64) Fields {
	return f.Add(key, strconv.FormatInt(value, 10))
}

func (f Fields) AddBool(key string, value bool) Fields {
	return f.Add(key, strconv.FormatBool(value))
}

// Encode panics on an invalid key: keys are compile-time constants of each
// entity, so a bad one is a programming error.
func Encode(fields Fields) string {
	var b strings.Builder
	for _, field := range fields {
		if !validKey(field.Key) {
			panic(fmt.Sprintf("codec: invalid key %q", field.Key))
		}
		b.WriteString(field.Key)
		b.WriteByte('=')
		b.WriteString(escape(field.Value))
		b.WriteByte('\n')
	}
	return b.String()
}

func Decode(text string) (Record, error) {
	record := Record{}
	for i, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		key, raw, found := strings.Cut(line, "=")
		if !found || !validKey(key) {
			return nil, fmt.Errorf("line %d: %w", i+1, ErrMalformedLine)
		}
		if _, exists := record[key]; exists {
			return nil, fmt.Errorf("line %d: %w %q", i+1, ErrDuplicateKey, key)
		}
		value, err := unescape(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		record[key] = value
	}
	return record, nil
}

func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

var escaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

func escape(value string) string {
	return escaper.Replace(value)
}

func unescape(raw string) (string, error) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(raw) {
			return "", ErrBadEscape
		}
		switch raw[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", fmt.Errorf("%w \\%c", ErrBadEscape, raw[i])
		}
	}
	return b.String(), nil
}
