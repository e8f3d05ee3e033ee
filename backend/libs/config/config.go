// Package config fills service configuration structs from struct tags, an optional YAML
// file and environment variables.
//
// Recognised tags:
//
//	yaml:"key"        key inside the YAML file
//	env:"KEY"         explicit environment variable; otherwise PARENT_FIELD_NAME in snake case
//	default:"value"   applied before the file and the environment are read
//	required:"true"   the field must be non-zero once loading finishes
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding the YAML file path.
const FileEnv = "CONFIG_FILE"

var durationType = reflect.TypeOf(time.Duration(0))

// ErrRequired is wrapped by the error returned for a missing required field.
var ErrRequired = errors.New("is required")

// Load fills target from defaults, the file named by CONFIG_FILE and the environment.
func Load(target interface{}) error {
	return LoadFile(os.Getenv(FileEnv), target)
}

// LoadFile behaves like Load but reads the YAML file at path. An empty path skips the file.
// Empty environment variables are treated as unset.
func LoadFile(path string, target interface{}) error {
	root, err := structValue(target)
	if err != nil {
		return err
	}

	if err := walk(root, "", applyDefault); err != nil {
		return err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, target); err != nil {
			return fmt.Errorf("config: decode yaml: %w", err)
		}
	}
	if err := walk(root, "", applyEnv); err != nil {
		return err
	}
	return walk(root, "", checkRequired)
}

func structValue(target interface{}) (reflect.Value, error) {
	if target == nil {
		return reflect.Value{}, errors.New("config: target is nil")
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("config: target must be pointer to struct")
	}
	return v.Elem(), nil
}

type visitFunc func(field reflect.Value, sf reflect.StructField, key string) error

// walk calls fn for every settable leaf field with its environment key. Embedded structs
// share their parent's prefix; named structs extend it.
func walk(v reflect.Value, prefix string, fn visitFunc) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field, sf := v.Field(i), t.Field(i)
		tag := sf.Tag.Get("env")
		if tag == "-" {
			continue
		}
		if sf.Anonymous && field.Kind() == reflect.Struct {
			if err := walk(field, prefix, fn); err != nil {
				return err
			}
			continue
		}
		if !field.CanSet() {
			continue
		}

		key := tag
		if key == "" {
			key = joinKey(prefix, sf.Name)
		}
		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := walk(field, key, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(field, sf, key); err != nil {
			return err
		}
	}
	return nil
}

func applyDefault(field reflect.Value, sf reflect.StructField, key string) error {
	def, ok := sf.Tag.Lookup("default")
	if !ok || !field.IsZero() {
		return nil
	}
	if err := assign(field, def); err != nil {
		return fmt.Errorf("config: default for %s: %w", key, err)
	}
	return nil
}

func applyEnv(field reflect.Value, _ reflect.StructField, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	if err := assign(field, raw); err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}
	return nil
}

func checkRequired(field reflect.Value, sf reflect.StructField, key string) error {
	if sf.Tag.Get("required") != "true" {
		return nil
	}
	if field.Kind() == reflect.String && strings.TrimSpace(field.String()) == "" || field.IsZero() {
		return fmt.Errorf("config: %s %w", key, ErrRequired)
	}
	return nil
}

func joinKey(prefix, name string) string {
	name = snake(name)
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// snake turns MaxOpenConns into MAX_OPEN_CONNS and DSN into DSN.
func snake(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		if r == '-' {
			r = '_'
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func assign(field reflect.Value, value string) error {
	if field.Type() == durationType {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(parsed))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(parsed)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(parsed)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(parsed)
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(parsed)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		items := reflect.MakeSlice(field.Type(), 0, 4)
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = reflect.Append(items, reflect.ValueOf(p).Convert(field.Type().Elem()))
			}
		}
		field.Set(items)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
