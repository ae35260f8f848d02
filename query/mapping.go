package query

import (
	"reflect"
	"strings"

	"github.com/jacoelho/esq/value"
)

// Property describes one field of an index mapping.
type Property struct {
	m *value.Map
}

func NewProperty(fieldType string) *Property {
	return &Property{m: value.MapOf("type", fieldType)}
}

func Text() *Property        { return NewProperty("text") }
func Keyword() *Property     { return NewProperty("keyword") }
func Date() *Property        { return NewProperty("date") }
func Long() *Property        { return NewProperty("long") }
func Integer() *Property     { return NewProperty("integer") }
func Short() *Property       { return NewProperty("short") }
func Byte() *Property        { return NewProperty("byte") }
func Double() *Property      { return NewProperty("double") }
func Float() *Property       { return NewProperty("float") }
func HalfFloat() *Property   { return NewProperty("half_float") }
func ScaledFloat() *Property { return NewProperty("scaled_float") }
func Boolean() *Property     { return NewProperty("boolean") }
func IP() *Property          { return NewProperty("ip") }
func Object() *Property      { return NewProperty("object") }
func Nested() *Property      { return NewProperty("nested") }
func GeoPoint() *Property    { return NewProperty("geo_point") }
func GeoShape() *Property    { return NewProperty("geo_shape") }
func Completion() *Property  { return NewProperty("completion") }

func (p *Property) Analyzer(name string) *Property       { return p.set("analyzer", name) }
func (p *Property) SearchAnalyzer(name string) *Property { return p.set("search_analyzer", name) }
func (p *Property) Normalizer(name string) *Property     { return p.set("normalizer", name) }
func (p *Property) Boost(boost float64) *Property        { return p.set("boost", boost) }
func (p *Property) CopyTo(field string) *Property        { return p.set("copy_to", field) }
func (p *Property) DocValues(enabled bool) *Property     { return p.set("doc_values", enabled) }
func (p *Property) Enabled(enabled bool) *Property       { return p.set("enabled", enabled) }
func (p *Property) Fielddata(enabled bool) *Property     { return p.set("fielddata", enabled) }
func (p *Property) IgnoreAbove(length int) *Property     { return p.set("ignore_above", length) }
func (p *Property) IgnoreMalformed(ignore bool) *Property {
	return p.set("ignore_malformed", ignore)
}
func (p *Property) Index(enabled bool) *Property          { return p.set("index", enabled) }
func (p *Property) IndexOptions(options string) *Property { return p.set("index_options", options) }
func (p *Property) IndexPhrases(enabled bool) *Property   { return p.set("index_phrases", enabled) }
func (p *Property) Norms(enabled bool) *Property          { return p.set("norms", enabled) }
func (p *Property) NullValue(v any) *Property             { return p.set("null_value", v) }
func (p *Property) Similarity(name string) *Property      { return p.set("similarity", name) }
func (p *Property) Store(enabled bool) *Property          { return p.set("store", enabled) }
func (p *Property) TermVector(setting string) *Property   { return p.set("term_vector", setting) }
func (p *Property) Format(layout string) *Property        { return p.set("format", layout) }
func (p *Property) ScalingFactor(f float64) *Property     { return p.set("scaling_factor", f) }
func (p *Property) EagerGlobalOrdinals(enabled bool) *Property {
	return p.set("eager_global_ordinals", enabled)
}
func (p *Property) PositionIncrementGap(gap int) *Property {
	return p.set("position_increment_gap", gap)
}

// Dynamic accepts true, false or "strict".
func (p *Property) Dynamic(setting any) *Property { return p.set("dynamic", setting) }

// Fields adds multi-fields indexing the same value in other ways.
func (p *Property) Fields(fields *value.Map) *Property { return p.set("fields", fields) }

// Properties sets the sub-fields of object and nested properties.
func (p *Property) Properties(props *value.Map) *Property { return p.set("properties", props) }

func (p *Property) Map() *value.Map {
	return p.m
}

func (p *Property) MarshalJSON() ([]byte, error) {
	return p.m.MarshalJSON()
}

func (p *Property) set(key string, v any) *Property {
	p.m.Set(key, v)
	return p
}

// Properties maps document fields to their mapping. Field names given as Go
// struct field names of T are translated to their JSON names.
type Properties[T any] struct {
	m *value.Map
}

func PropertiesOf[T any]() *Properties[T] {
	return &Properties[T]{m: value.NewMap()}
}

func (p *Properties[T]) Add(field string, prop *Property) *Properties[T] {
	p.m.Set(FieldName[T](field), prop.Map())
	return p
}

func (p *Properties[T]) Map() *value.Map {
	return p.m
}

// FieldName resolves the JSON name of the Go struct field of T, honouring
// json tags. Unknown names are returned unchanged.
func FieldName[T any](field string) string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return field
	}

	f, ok := t.FieldByName(field)
	if !ok {
		return field
	}
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return field
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return field
	}
	return name
}

// Mapping wraps properties in a mappings body.
func Mapping(props *value.Map) *value.Map {
	return value.MapOf("properties", props)
}

// IndexSettings assembles a create index body.
type IndexSettings struct {
	shards   int
	replicas int
	replSet  bool
	settings *value.Map
	mappings *value.Map
}

func NewIndexSettings() *IndexSettings {
	return &IndexSettings{settings: value.NewMap()}
}

func (s *IndexSettings) Shards(n int) *IndexSettings {
	s.shards = n
	return s
}

// Replicas is sent even when zero once set.
func (s *IndexSettings) Replicas(n int) *IndexSettings {
	s.replicas = n
	s.replSet = true
	return s
}

// Setting adds an arbitrary index setting such as "refresh_interval".
func (s *IndexSettings) Setting(key string, v any) *IndexSettings {
	s.settings.Set(key, v)
	return s
}

func (s *IndexSettings) Mappings(props *value.Map) *IndexSettings {
	s.mappings = Mapping(props)
	return s
}

func (s *IndexSettings) Map() *value.Map {
	settings := value.NewMap().
		Add("number_of_shards", s.shards, s.shards > 0).
		Add("number_of_replicas", s.replicas, s.replSet).
		Merge(s.settings)

	return value.NewMap().
		Add("settings", settings, settings.Len() > 0).
		Add("mappings", s.mappings, s.mappings != nil)
}

func (s *IndexSettings) MarshalJSON() ([]byte, error) {
	return s.Map().MarshalJSON()
}
