package codec

import (
	"fmt"
	"strconv"
)

// Record is a decoded file: key to unescaped value.
type Record map[string]string

func (r Record) String(key string) (string, error) {
	v, ok := r[key]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrMissingKey, key)
	}
	return v, nil
}

func (r Record) Int(key string) (int64, error) {
	v, err := r.String(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("key %q: %w", key, err)
	}
	return n, nil
}

func (r Record) Bool(key string) (bool, error) {
	v, err := r.String(key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("key %q: %w", key, err)
	}
	return b, nil
}
