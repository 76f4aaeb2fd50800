// Package record provides reflective access to bun-mapped structs: column
// lookup, string field get/set, translation-bag discovery, and relation
// traversal for per-record language fields. It mirrors the subset of ORM
// metadata the resolution engine needs without requiring a live database.
package record

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-modeltrans/translations"
)

// PathSeparator splits relation traversal paths such as
// "category.default_language".
const PathSeparator = "."

var (
	baseModelType = reflect.TypeOf(bun.BaseModel{})
	bagType       = reflect.TypeOf(translations.Bag{})
	stringType    = reflect.TypeOf("")
)

// Field describes a physical column mapped by a struct field.
type Field struct {
	GoName  string
	Column  string
	Index   []int
	Pointer bool
	SQLType string
}

// IsString reports whether the field holds a translatable scalar.
func (f Field) IsString(typ reflect.Type) bool {
	ft := typ.FieldByIndex(f.Index).Type
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	return ft == stringType
}

type relation struct {
	goName string
	name   string
	index  []int
	typ    reflect.Type // related struct type, pointers unwrapped
}

// Schema holds the reflective layout of one record type.
type Schema struct {
	typ       reflect.Type
	name      string
	fields    map[string]Field
	relations map[string]relation
	bag       *Field
	related   map[string]*Schema
}

// SchemaOf builds the Schema for a record prototype, typically a nil typed
// pointer such as (*Post)(nil).
func SchemaOf(prototype any) (*Schema, error) {
	if prototype == nil {
		return nil, fmt.Errorf("record: prototype is required")
	}
	typ := reflect.TypeOf(prototype)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record: prototype %T is not a struct", prototype)
	}

	schema := &Schema{
		typ:       typ,
		name:      typ.Name(),
		fields:    map[string]Field{},
		relations: map[string]relation{},
		related:   map[string]*Schema{},
	}

	for i := 0; i < typ.NumField(); i++ {
		structField := typ.Field(i)
		if !structField.IsExported() || structField.Type == baseModelType {
			continue
		}

		tag := structField.Tag.Get("bun")
		if tag == "-" {
			continue
		}

		if strings.Contains(tag, "rel:") {
			relType := structField.Type
			for relType.Kind() == reflect.Pointer || relType.Kind() == reflect.Slice {
				relType = relType.Elem()
			}
			if relType.Kind() == reflect.Struct {
				rel := relation{
					goName: structField.Name,
					name:   Underscore(structField.Name),
					index:  structField.Index,
					typ:    relType,
				}
				schema.relations[rel.name] = rel
			}
			continue
		}

		column, sqlType := parseTag(tag)
		if column == "" {
			column = Underscore(structField.Name)
		}

		if structField.Type == bagType {
			if column != translations.BagColumn {
				return nil, &translations.ConfigurationError{
					Model: schema.name,
					Field: column,
					Err:   translations.ErrBagColumnName,
				}
			}
			bagField := Field{
				GoName: structField.Name,
				Column: column,
				Index:  structField.Index,
			}
			schema.bag = &bagField
			continue
		}

		schema.fields[column] = Field{
			GoName:  structField.Name,
			Column:  column,
			Index:   structField.Index,
			Pointer: structField.Type.Kind() == reflect.Pointer,
			SQLType: sqlType,
		}
	}

	return schema, nil
}

// parseTag extracts the column name and declared SQL type from a bun tag.
func parseTag(tag string) (column, sqlType string) {
	if tag == "" {
		return "", ""
	}
	parts := strings.Split(tag, ",")
	column = parts[0]
	for _, part := range parts[1:] {
		if rest, ok := strings.CutPrefix(part, "type:"); ok {
			sqlType = rest
		}
	}
	return column, sqlType
}

// Name returns the record type name, used in configuration errors.
func (s *Schema) Name() string { return s.name }

// Type returns the underlying struct type.
func (s *Schema) Type() reflect.Type { return s.typ }

// New returns a pointer to a fresh zero record.
func (s *Schema) New() any { return reflect.New(s.typ).Interface() }

// HasColumn reports whether name maps to a physical column.
func (s *Schema) HasColumn(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// FieldByColumn returns metadata for a physical column.
func (s *Schema) FieldByColumn(name string) (Field, bool) {
	field, ok := s.fields[name]
	return field, ok
}

// IsStringColumn reports whether the column holds a string or *string value.
func (s *Schema) IsStringColumn(name string) bool {
	field, ok := s.fields[name]
	return ok && field.IsString(s.typ)
}

// HasBag reports whether the record declares a translation bag column.
func (s *Schema) HasBag() bool { return s.bag != nil }

// Bag returns a pointer to the record's translation bag.
func (s *Schema) Bag(rec any) (*translations.Bag, error) {
	value, err := s.structValue(rec)
	if err != nil {
		return nil, err
	}
	if s.bag == nil {
		return nil, translations.ErrBagMissing
	}
	bag, ok := value.FieldByIndex(s.bag.Index).Addr().Interface().(*translations.Bag)
	if !ok {
		return nil, translations.ErrBagMissing
	}
	return bag, nil
}

// GetString reads a string-typed column. The second return is false when a
// *string column is nil.
func (s *Schema) GetString(rec any, column string) (string, bool, error) {
	value, err := s.structValue(rec)
	if err != nil {
		return "", false, err
	}
	return s.getString(value, column)
}

func (s *Schema) getString(value reflect.Value, column string) (string, bool, error) {
	field, ok := s.fields[column]
	if !ok {
		return "", false, fmt.Errorf("record: %s has no column %q", s.name, column)
	}
	fv := value.FieldByIndex(field.Index)
	if field.Pointer {
		if fv.IsNil() {
			return "", false, nil
		}
		fv = fv.Elem()
	}
	if fv.Kind() != reflect.String {
		return "", false, fmt.Errorf("record: %s.%s is not a string column", s.name, column)
	}
	return fv.String(), true, nil
}

// SetString writes a string-typed column. A nil value clears the column:
// *string columns become nil, plain string columns become empty.
func (s *Schema) SetString(rec any, column string, value *string) error {
	sv, err := s.structValue(rec)
	if err != nil {
		return err
	}
	field, ok := s.fields[column]
	if !ok {
		return fmt.Errorf("record: %s has no column %q", s.name, column)
	}
	fv := sv.FieldByIndex(field.Index)
	if field.Pointer {
		if value == nil {
			fv.SetZero()
			return nil
		}
		copied := *value
		fv.Set(reflect.ValueOf(&copied))
		return nil
	}
	if fv.Kind() != reflect.String {
		return fmt.Errorf("record: %s.%s is not a string column", s.name, column)
	}
	if value == nil {
		fv.SetString("")
		return nil
	}
	fv.SetString(*value)
	return nil
}

// ValidatePath checks that a dotted field path resolves to a string column,
// traversing relations for every segment but the last.
func (s *Schema) ValidatePath(path string) error {
	segments := strings.Split(path, PathSeparator)
	current := s
	for _, segment := range segments[:len(segments)-1] {
		next, err := current.relatedSchema(segment)
		if err != nil {
			return err
		}
		current = next
	}
	last := segments[len(segments)-1]
	if !current.IsStringColumn(last) {
		return fmt.Errorf("record: %s has no string column %q", current.name, last)
	}
	return nil
}

// Traverse reads a string value through a dotted field path. The boolean is
// false when a relation along the path is nil or the final value is unset.
func (s *Schema) Traverse(rec any, path string) (string, bool, error) {
	value, err := s.structValue(rec)
	if err != nil {
		return "", false, err
	}
	segments := strings.Split(path, PathSeparator)
	current := s
	for _, segment := range segments[:len(segments)-1] {
		next, err := current.relatedSchema(segment)
		if err != nil {
			return "", false, err
		}
		rel := current.relations[segment]
		fv := value.FieldByIndex(rel.index)
		for fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				return "", false, nil
			}
			fv = fv.Elem()
		}
		if fv.Kind() != reflect.Struct {
			return "", false, fmt.Errorf("record: %s.%s is not traversable", current.name, segment)
		}
		value = fv
		current = next
	}
	return current.getString(value, segments[len(segments)-1])
}

func (s *Schema) relatedSchema(name string) (*Schema, error) {
	if cached, ok := s.related[name]; ok {
		return cached, nil
	}
	rel, ok := s.relations[name]
	if !ok {
		return nil, fmt.Errorf("record: %s has no relation %q", s.name, name)
	}
	schema, err := SchemaOf(reflect.New(rel.typ).Interface())
	if err != nil {
		return nil, err
	}
	s.related[name] = schema
	return schema, nil
}

func (s *Schema) structValue(rec any) (reflect.Value, error) {
	if rec == nil {
		return reflect.Value{}, fmt.Errorf("record: %s record is required", s.name)
	}
	value := reflect.ValueOf(rec)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		return reflect.Value{}, fmt.Errorf("record: %s record must be a non-nil pointer", s.name)
	}
	value = value.Elem()
	if value.Type() != s.typ {
		return reflect.Value{}, fmt.Errorf("record: expected *%s, got %T", s.name, rec)
	}
	return value, nil
}

// Underscore converts a Go field name into its snake_case column form,
// keeping initialisms as single words (ContentID -> content_id).
func Underscore(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		lower := r >= 'A' && r <= 'Z'
		if lower {
			if i > 0 {
				prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if prevLower || nextLower {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
