package core

import "fmt"

// Accessors over raw decoded JSON documents. Every mismatch produces a schema
// error identifying the JSON path, never a silent coercion.

func asObject(value any, path string) (map[string]any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, SchemaError(path, "an object")
	}
	return obj, nil
}

func asList(value any, path string) ([]any, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, SchemaError(path, "a list")
	}
	return list, nil
}

func asString(value any, path string) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", SchemaError(path, "a string")
	}
	return str, nil
}

func asBool(value any, path string) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, SchemaError(path, "a boolean")
	}
	return b, nil
}

// asInt accepts the numeric representations a JSON decoder may produce.
func asInt(value any, path string) (int64, error) {
	switch typed := value.(type) {
	case float64:
		return int64(typed), nil
	case int:
		return int64(typed), nil
	case int64:
		return typed, nil
	}
	return 0, SchemaError(path, "an integer")
}

// optObject returns (nil, nil) when the key is absent, and a schema error when
// the key is present with a non-object value. Absence of a subsystem key is
// not an error, the resolver simply produces nothing.
func optObject(doc map[string]any, key string, path string) (map[string]any, error) {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil, nil
	}
	return asObject(value, fmt.Sprintf("%s/%s", path, key))
}

func optString(doc map[string]any, key string, path string) (string, bool, error) {
	value, ok := doc[key]
	if !ok || value == nil {
		return "", false, nil
	}
	str, err := asString(value, fmt.Sprintf("%s/%s", path, key))
	if err != nil {
		return "", false, err
	}
	return str, true, nil
}

func optInt(doc map[string]any, key string, path string) (int64, bool, error) {
	value, ok := doc[key]
	if !ok || value == nil {
		return 0, false, nil
	}
	n, err := asInt(value, fmt.Sprintf("%s/%s", path, key))
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}
