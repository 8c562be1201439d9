package postgres

import (
	"fmt"
	"reflect"
	"strings"
)

// StructToMap converts a struct to map[string]any using `db` tags.
// Embedded structs are flattened. Fields tagged `db:"-"` are skipped.
//
// Used by generic repositories to build INSERT/UPDATE statements
// without hand-listing every column.
func StructToMap(v any) (map[string]any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil pointer passed to StructToMap")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("StructToMap expects a struct, got %s", rv.Kind())
	}

	out := make(map[string]any)
	if err := structToMapRec(rv, out); err != nil {
		return nil, err
	}
	return out, nil
}

func structToMapRec(rv reflect.Value, out map[string]any) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		// Flatten anonymous embedded structs (BaseEntity, BaseDocument, ...)
		if field.Anonymous {
			fv := rv.Field(i)
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				if err := structToMapRec(fv, out); err != nil {
					return err
				}
				continue
			}
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		column := strings.Split(tag, ",")[0]
		out[column] = rv.Field(i).Interface()
	}
	return nil
}

// ExtractDBColumns returns the `db`-tagged column names of a struct type,
// in declaration order, with embedded structs flattened.
func ExtractDBColumns(v any) []string {
	rt := reflect.TypeOf(v)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	extractColumnsRec(rt, &cols)
	return cols
}

func extractColumnsRec(rt reflect.Type, cols *[]string) {
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				extractColumnsRec(ft, cols)
				continue
			}
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		*cols = append(*cols, strings.Split(tag, ",")[0])
	}
}

// ColumnValues returns values aligned with the given column order,
// for use with COPY protocol inserts.
func ColumnValues(v any, columns []string) ([]any, error) {
	m, err := StructToMap(v)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(columns))
	for i, col := range columns {
		val, ok := m[col]
		if !ok {
			return nil, fmt.Errorf("column %q not found in struct", col)
		}
		values[i] = val
	}
	return values, nil
}
