package document

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/carnet-go/carnet/pkg/protocol"
)

// Separator splits a path into segments.
const Separator = "."

// ErrTypeMismatch indicates a path exists but holds a value of an unexpected kind.
var ErrTypeMismatch = errors.New("type mismatch")

// PathError reports the first segment of Path that could not be resolved.
type PathError struct {
	Path    string
	Segment string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q: segment %q: %s", e.Path, e.Segment, protocol.ErrNotFound)
}

func (e *PathError) Unwrap() error {
	return protocol.ErrNotFound
}

// TypeError reports a value at Path that is not of the Want kind.
type TypeError struct {
	Path string
	Want string
	Got  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("path %q: want %s, got %s: %s", e.Path, e.Want, e.Got, ErrTypeMismatch)
}

func (e *TypeError) Unwrap() error {
	return ErrTypeMismatch
}

// Get returns the value at path within v. An empty path returns v itself. Each segment must name a
// key of a struct value; descending into a scalar or list fails the same way as a missing key.
//
// A key mapped to an explicit null resolves to a NullValue, not an error.
func Get(v *structpb.Value, path string) (*structpb.Value, error) {
	if path == "" {
		return v, nil
	}
	current := v
	for _, segment := range strings.Split(path, Separator) {
		fields := current.GetStructValue().GetFields()
		next, ok := fields[segment]
		if !ok {
			return nil, &PathError{Path: path, Segment: segment}
		}
		current = next
	}
	return current, nil
}

// Exists reports whether Get would resolve path, including paths that resolve to null.
func Exists(v *structpb.Value, path string) bool {
	_, err := Get(v, path)
	return err == nil
}

// Kind names the dynamic type of v.
func Kind(v *structpb.Value) string {
	switch v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return "null"
	case *structpb.Value_BoolValue:
		return "bool"
	case *structpb.Value_NumberValue:
		return "number"
	case *structpb.Value_StringValue:
		return "string"
	case *structpb.Value_ListValue:
		return "list"
	case *structpb.Value_StructValue:
		return "struct"
	}
	return "null"
}

// IsNull reports whether v is absent or an explicit null.
func IsNull(v *structpb.Value) bool {
	return Kind(v) == "null"
}

func String(v *structpb.Value, path string) (string, error) {
	value, err := Get(v, path)
	if err != nil {
		return "", err
	}
	s, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", &TypeError{Path: path, Want: "string", Got: Kind(value)}
	}
	return s.StringValue, nil
}

func Number(v *structpb.Value, path string) (float64, error) {
	value, err := Get(v, path)
	if err != nil {
		return 0, err
	}
	n, ok := value.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, &TypeError{Path: path, Want: "number", Got: Kind(value)}
	}
	return n.NumberValue, nil
}

func Bool(v *structpb.Value, path string) (bool, error) {
	value, err := Get(v, path)
	if err != nil {
		return false, err
	}
	b, ok := value.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, &TypeError{Path: path, Want: "bool", Got: Kind(value)}
	}
	return b.BoolValue, nil
}

func List(v *structpb.Value, path string) ([]*structpb.Value, error) {
	value, err := Get(v, path)
	if err != nil {
		return nil, err
	}
	l, ok := value.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, &TypeError{Path: path, Want: "list", Got: Kind(value)}
	}
	return l.ListValue.GetValues(), nil
}

// Time parses an RFC 3339 timestamp string at path.
func Time(v *structpb.Value, path string) (time.Time, error) {
	s, err := String(v, path)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &TypeError{Path: path, Want: "timestamp", Got: fmt.Sprintf("%q", s)}
	}
	return t, nil
}

// IsNumber reports whether path resolves to a number.
func IsNumber(v *structpb.Value, path string) bool {
	_, err := Number(v, path)
	return err == nil
}
