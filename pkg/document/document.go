package document

import (
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Document is the merged status tree of one vehicle. The zero value is not usable; call New.
//
// Merge replaces the root instead of writing to it, so a value returned by an accessor stays
// consistent while later merges run. Such values are shared with the Document and must not be
// modified.
type Document struct {
	mu      sync.RWMutex
	root    *structpb.Struct
	version uint64
}

func New() *Document {
	return &Document{root: &structpb.Struct{Fields: map[string]*structpb.Value{}}}
}

// Merge copies each top-level key of data into the Document, replacing any value stored under the
// same key. Keys absent from data are untouched. Merge returns false, and leaves the Document as
// it was, when data is nil or has no fields.
//
// The Document takes ownership of data.
func (d *Document) Merge(data *structpb.Struct) bool {
	if len(data.GetFields()) == 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fields := make(map[string]*structpb.Value, len(d.root.Fields)+len(data.Fields))
	for k, v := range d.root.Fields {
		fields[k] = v
	}
	for k, v := range data.Fields {
		fields[k] = v
	}
	d.root = &structpb.Struct{Fields: fields}
	d.version++
	return true
}

// MergeSection stores data under the top-level key section. It is a no-op when data is empty.
func (d *Document) MergeSection(section string, data *structpb.Struct) bool {
	if len(data.GetFields()) == 0 {
		return false
	}
	return d.Merge(&structpb.Struct{Fields: map[string]*structpb.Value{
		section: structpb.NewStructValue(data),
	}})
}

// Version counts effective merges.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Root returns the whole Document as a struct value. Later merges do not change it.
func (d *Document) Root() *structpb.Value {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return structpb.NewStructValue(d.root)
}

// Snapshot returns a deep copy of the Document's contents.
func (d *Document) Snapshot() *structpb.Struct {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return proto.Clone(d.root).(*structpb.Struct)
}

func (d *Document) Get(path string) (*structpb.Value, error) {
	return Get(d.Root(), path)
}

func (d *Document) Exists(path string) bool {
	return Exists(d.Root(), path)
}

func (d *Document) String(path string) (string, error) {
	return String(d.Root(), path)
}

func (d *Document) Number(path string) (float64, error) {
	return Number(d.Root(), path)
}

func (d *Document) Bool(path string) (bool, error) {
	return Bool(d.Root(), path)
}

func (d *Document) List(path string) ([]*structpb.Value, error) {
	return List(d.Root(), path)
}

func (d *Document) Time(path string) (time.Time, error) {
	return Time(d.Root(), path)
}

func (d *Document) IsNumber(path string) bool {
	return IsNumber(d.Root(), path)
}

func (d *Document) MarshalJSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return protojson.Marshal(d.root)
}

// Parse decodes a JSON object into a struct suitable for Merge.
func Parse(body []byte) (*structpb.Struct, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
