package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// modelFields caches the db-tagged field layout per struct type.
var modelFields sync.Map

type modelField struct {
	index  int
	column string
}

// ColumnsOf lists the db-tagged columns of a struct model in field order. It panics on a
// non-struct model, which is a programming error.
func ColumnsOf(model any) []string {
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("querybuilder: ColumnsOf needs a struct, got %T", model))
	}

	fields := fieldsOf(typ)
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.column
	}
	return cols
}

func InsertModel(table string, model any, suffix string) (string, []any, error) {
	return InsertModels(table, []any{model}, suffix)
}

// InsertModels builds one multi-row INSERT from models that share a struct type.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("at least one model is required")
	}

	builder := InsertInto(table).Suffix(suffix)
	var rowType reflect.Type
	for i, model := range models {
		value, err := structValue(model)
		if err != nil {
			return "", nil, err
		}
		if rowType == nil {
			rowType = value.Type()
		} else if value.Type() != rowType {
			return "", nil, fmt.Errorf("model %d is %s, want %s", i, value.Type(), rowType)
		}

		fields := fieldsOf(rowType)
		if len(fields) == 0 {
			return "", nil, fmt.Errorf("model has no db columns")
		}
		if i == 0 {
			cols := make([]string, len(fields))
			for j, f := range fields {
				cols[j] = f.column
			}
			builder.Columns(cols...)
		}

		vals := make([]any, len(fields))
		for j, f := range fields {
			vals[j] = value.Field(f.index).Interface()
		}
		builder.Values(vals...)
	}
	return builder.ToSQL()
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be struct")
	}
	return value, nil
}

func fieldsOf(typ reflect.Type) []modelField {
	if cached, ok := modelFields.Load(typ); ok {
		return cached.([]modelField)
	}

	fields := make([]modelField, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		col, _, _ := strings.Cut(strings.TrimSpace(field.Tag.Get("db")), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		fields = append(fields, modelField{index: i, column: col})
	}

	actual, _ := modelFields.LoadOrStore(typ, fields)
	return actual.([]modelField)
}
