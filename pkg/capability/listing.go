package capability

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carnet-go/carnet/internal/log"
)

// Listing is the backend's capability response for one vehicle.
//
// Capabilities are kept as raw JSON so that a single malformed entry can be skipped without
// rejecting the whole listing.
type Listing struct {
	Parameters   map[string]json.RawMessage `json:"parameters,omitempty"`
	Capabilities map[string]json.RawMessage `json:"capabilities"`
}

// UnmarshalJSON accepts capabilities either as an object keyed by service id or as an array of
// entries that each carry an "id" field.
func (l *Listing) UnmarshalJSON(b []byte) error {
	var raw struct {
		Parameters   map[string]json.RawMessage `json:"parameters"`
		Capabilities json.RawMessage            `json:"capabilities"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	l.Parameters = raw.Parameters
	l.Capabilities = make(map[string]json.RawMessage)

	body := bytes.TrimSpace(raw.Capabilities)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}
	switch body[0] {
	case '{':
		return json.Unmarshal(body, &l.Capabilities)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return err
		}
		for i, item := range items {
			var header struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(item, &header); err != nil || header.ID == "" {
				log.Warning("Skipping capability at index %d: missing id", i)
				continue
			}
			l.Capabilities[header.ID] = item
		}
		return nil
	}
	return fmt.Errorf("capabilities: unexpected JSON type")
}

type rawEntry struct {
	ID             string            `json:"id"`
	IsEnabled      bool              `json:"isEnabled"`
	Status         json.RawMessage   `json:"status"`
	ExpirationDate string            `json:"expirationDate"`
	Operations     operationList     `json:"operations"`
	Parameters     []json.RawMessage `json:"parameters"`
}

var errIDMismatch = errors.New("entry id does not match its key")

func decodeEntry(key string, body json.RawMessage) (Entry, error) {
	var raw rawEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return Entry{}, err
	}
	if raw.ID != "" && raw.ID != key {
		return Entry{}, fmt.Errorf("%w: %q", errIDMismatch, raw.ID)
	}
	if !raw.IsEnabled {
		reason := "unknown"
		if len(raw.Status) > 0 {
			reason = string(raw.Status)
		}
		log.Debug("Service %s is disabled because of reason: %s", key, reason)
		return Entry{Active: false}, nil
	}

	entry := Entry{Active: true, Operations: []string(raw.Operations)}
	if raw.ExpirationDate != "" {
		t, err := time.Parse(time.RFC3339Nano, raw.ExpirationDate)
		if err != nil {
			return Entry{}, fmt.Errorf("expirationDate: %w", err)
		}
		t = t.UTC()
		entry.Expiration = &t
	}
	for _, p := range raw.Parameters {
		descriptor, err := parameterDescriptor(p)
		if err != nil {
			return Entry{}, fmt.Errorf("parameters: %w", err)
		}
		entry.Parameters = append(entry.Parameters, descriptor)
	}
	return entry, nil
}

// Parameter looks up a key=value parameter descriptor.
func (e Entry) Parameter(key string) (string, bool) {
	for _, p := range e.Parameters {
		if k, v, ok := strings.Cut(p, "="); ok && k == key {
			return v, true
		}
	}
	return "", false
}

func parameterDescriptor(raw json.RawMessage) (string, error) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, nil
	}
	var kv struct {
		Key   string          `json:"key"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &kv); err == nil && kv.Key != "" {
		var value string
		if json.Unmarshal(kv.Value, &value) == nil {
			return kv.Key + "=" + value, nil
		}
		return kv.Key + "=" + string(kv.Value), nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// operationList decodes operation identifiers in listing order. The backend sends either an
// object keyed by operation id or an array.
type operationList []string

func (o *operationList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*o = nil
		return nil
	}
	var ids []string
	switch b[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		for _, item := range items {
			id, err := operationID(item, "")
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
	case '{':
		dec := json.NewDecoder(bytes.NewReader(b))
		if _, err := dec.Token(); err != nil {
			return err
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ := tok.(string)
			var item json.RawMessage
			if err := dec.Decode(&item); err != nil {
				return err
			}
			id, err := operationID(item, key)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
	default:
		return fmt.Errorf("operations: unexpected JSON %q", b[:1])
	}
	*o = ids
	return nil
}

func operationID(item json.RawMessage, key string) (string, error) {
	var s string
	if json.Unmarshal(item, &s) == nil {
		return s, nil
	}
	var op struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(item, &op); err != nil {
		return "", fmt.Errorf("operation %q: %w", key, err)
	}
	if op.ID != "" {
		return op.ID, nil
	}
	if key == "" {
		return "", errors.New("operation without id")
	}
	return key, nil
}
