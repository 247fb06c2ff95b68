package patch

import (
	"reflect"
	"strings"
)

// AllJSONPointerPaths lists the JSON pointers addressable in T, following json tags.
func AllJSONPointerPaths[T any]() []string {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil {
		return []string{}
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return []string{}
	}

	paths := make([]string, 0, typ.NumField())
	visited := make(map[reflect.Type]bool)
	collectPaths(typ, "", &paths, visited)
	return paths
}

func collectPaths(typ reflect.Type, prefix string, paths *[]string, visited map[reflect.Type]bool) {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if visited[typ] {
		return
	}

	switch typ.Kind() {
	case reflect.Struct:
		visited[typ] = true
		defer delete(visited, typ)

		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := jsonFieldName(field)
			if name == "-" {
				continue
			}
			fieldPath := prefix + "/" + name
			*paths = append(*paths, fieldPath)
			collectPaths(field.Type, fieldPath, paths, visited)
		}
	case reflect.Slice, reflect.Array:
		*paths = append(*paths, prefix+"/-")
	case reflect.Map:
		*paths = append(*paths, prefix+"/*")
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" {
		return field.Name
	}
	return name
}

// AllowedSet turns a path list into the lookup form used by validation.
func AllowedSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}
