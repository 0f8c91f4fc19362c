package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.Mutex
)

// Schema describes the arguments of a tool
type Schema struct {
	RawSchema *jsonschema.Schema
	// Parameters represents the tool input definition,
	// a flat object schema with all references resolved
	Parameters *jsonschema.Schema
}

// New creates a new schema from the given type
func New(t reflect.Type) (*Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	raw := JSONSchema(t)
	params, err := ToParametersSchema(raw)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to build schema for %s", t.Name())
	}
	s := &Schema{
		RawSchema:  raw,
		Parameters: params,
	}
	cache[t] = s

	return s, nil
}

// For returns the parameters schema for the type of the value
func For[T any]() (*jsonschema.Schema, error) {
	var v T
	s, err := New(reflect.TypeOf(v))
	if err != nil {
		return nil, err
	}
	return s.Parameters, nil
}

func (s *Schema) String() string {
	js, _ := json.MarshalIndent(s.Parameters, "", "\t")
	return string(js)
}

// ToParametersSchema flattens the top level definition into an object schema.
func ToParametersSchema(tSchema *jsonschema.Schema) (*jsonschema.Schema, error) {
	refID := strings.TrimPrefix(tSchema.Ref, "#/$defs/")

	defs := make(map[string]*jsonschema.Schema)
	root := tSchema

	for name, def := range tSchema.Definitions {
		if name == refID {
			root = def
		} else {
			defs[name] = def
		}
	}

	res := &jsonschema.Schema{
		Type:       "object",
		Properties: root.Properties,
		Required:   root.Required,
	}
	if res.Properties == nil {
		res.Properties = orderedmap.New[string, *jsonschema.Schema]()
	}

	if err := resolveRefs(res.Properties, defs); err != nil {
		return nil, err
	}
	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			name := strings.TrimPrefix(child.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Errorf("definition not found: %s", child.Ref)
			}
			pair.Value = def
			child = def
		}
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
		if child.Items != nil && child.Items.Ref != "" {
			name := strings.TrimPrefix(child.Items.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Errorf("definition not found: %s", child.Items.Ref)
			}
			child.Items = def
		}
	}
	return nil
}

// JSONSchema returns the json schema of the type
func JSONSchema(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.ExpandedStruct = true
	r.DoNotReference = true
	r.AllowAdditionalProperties = true

	// Structs in different packages may share a name,
	// the hash of the full path keeps the definitions apart.
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}

	return r.ReflectFromType(t)
}

// Raw returns the JSON encoding of the schema,
// an empty object schema is returned for nil.
func Raw(s *jsonschema.Schema) (json.RawMessage, error) {
	if s == nil {
		return json.RawMessage(`{"type":"object","properties":{}}`), nil
	}
	js, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal schema")
	}
	return js, nil
}

// FromAny creates a json schema from any value,
// for example a map[string]any literal.
func FromAny(t any) (*jsonschema.Schema, error) {
	if s, ok := t.(*jsonschema.Schema); ok {
		return s, nil
	}
	js, err := json.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal schema")
	}
	schema := &jsonschema.Schema{}
	err = json.Unmarshal(js, schema)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal schema")
	}
	return schema, nil
}
