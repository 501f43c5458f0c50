package gbfs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Envelope is the common wrapper every GBFS file shares.
type Envelope[T any] struct {
	LastUpdated Timestamp `json:"last_updated"`
	TTL         int       `json:"ttl"`
	Version     string    `json:"version"`
	Data        T         `json:"data"`
}

func Decode[T any](payload []byte) (*Envelope[T], error) {
	var envelope Envelope[T]
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// Timestamp accepts POSIX seconds (2.x) or RFC3339 strings (3.0).
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
			t.Time = time.Unix(seconds, 0).UTC()
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}
	t.Time = time.Unix(int64(seconds), 0).UTC()
	return nil
}

func (t Timestamp) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	value := t.Time
	return &value
}

type LocalizedString struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// LocalizedText is a plain string in 2.x and a list of translations in 3.0.
type LocalizedText []LocalizedString

func (l *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = LocalizedText{{Text: s}}
		return nil
	}

	var translations []LocalizedString
	if err := json.Unmarshal(data, &translations); err != nil {
		return err
	}
	*l = translations
	return nil
}

// Get returns the translation for language, falling back to the first one present.
func (l LocalizedText) Get(language string) string {
	for _, translation := range l {
		if translation.Language == language {
			return translation.Text
		}
	}
	if len(l) > 0 {
		return l[0].Text
	}
	return ""
}
