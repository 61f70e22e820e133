package simpleexcel

import (
	"fmt"
	"reflect"
	"strings"
)

// ConvertToDynamicData flattens a struct into a map, or a slice of structs into a slice of maps.
// Keys come from the `excel` tag or the field name; `excel:"-"` skips a field.
// Map fields are spread into "<Field>_<key>" entries.
func ConvertToDynamicData(data interface{}) (interface{}, error) {
	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		return flattenStruct(val), nil
	case reflect.Slice:
		return flattenSlice(val)
	default:
		return nil, fmt.Errorf("expected struct or slice, got %v", val.Kind())
	}
}

func flattenStruct(val reflect.Value) map[string]interface{} {
	result := make(map[string]interface{})
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		fieldType := typ.Field(i)
		if !fieldType.IsExported() {
			continue
		}
		name := fieldType.Name
		if tag, ok := fieldType.Tag.Lookup("excel"); ok {
			if tag == "-" {
				continue
			}
			name = strings.Split(tag, ",")[0]
		}

		field := val.Field(i)
		if field.Kind() == reflect.Map {
			if field.IsNil() {
				continue
			}
			for _, key := range field.MapKeys() {
				result[fmt.Sprintf("%s_%v", name, key.Interface())] = field.MapIndex(key).Interface()
			}
			continue
		}
		result[name] = field.Interface()
	}
	return result
}

func flattenSlice(val reflect.Value) ([]map[string]interface{}, error) {
	result := make([]map[string]interface{}, val.Len())
	for i := 0; i < val.Len(); i++ {
		elem := val.Index(i)
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			return nil, fmt.Errorf("expected slice of structs, got slice of %v", elem.Kind())
		}
		result[i] = flattenStruct(elem)
	}
	return result, nil
}
