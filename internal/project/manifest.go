package project

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/pelletier/go-toml/v2"
)

// ManifestFilename is the project manifest name, analogous to a
// CMakeLists or Cargo.toml.
const ManifestFilename = "Crest.toml"

// Manifest is the parsed Crest.toml.
type Manifest struct {
	Package PackageSection
	// Vars backs $<BOOL:...> generator expressions.
	Vars    map[string]string
	Targets map[string]*TargetSection
}

// TargetNames returns target names in a deterministic (sorted) order.
func (m *Manifest) TargetNames() []string {
	names := make([]string, 0, len(m.Targets))
	for name := range m.Targets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PackageSection defines the [package] section.
type PackageSection struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Description string   `toml:"description"`
	Authors     []string `toml:"authors"`
}

// PropertySet is one visibility block of a target section
// ([target.<name>.private], .public or .interface).
type PropertySet struct {
	IncludeDirs []string          `toml:"include-dirs"`
	Defines     map[string]string `toml:"defines"`
	Options     []string          `toml:"options"`
	LinkOptions []string          `toml:"link-options"`
	Libs        []string          `toml:"libs"`
}

// LinkSpec is one [[target.<name>.link]] entry.
type LinkSpec struct {
	Target     string `toml:"target"`
	Visibility string `toml:"visibility"`
}

// TargetSection defines a [target.<name>] section.
type TargetSection struct {
	Kind      string      `toml:"kind"`
	Sources   []string    `toml:"sources"`
	Link      []LinkSpec  `toml:"link"`
	Private   PropertySet `toml:"private"`
	Public    PropertySet `toml:"public"`
	Interface PropertySet `toml:"interface"`
}

// mergeStructs merges the fields of the src struct into the dst struct.
// Slices append, maps overlay, bools OR, nested structs merge
// recursively, everything else overwrites when non-zero.
func mergeStructs(dst, src any) error {
	dstVal := reflect.ValueOf(dst)
	if dstVal.Kind() != reflect.Pointer || dstVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dst must be a pointer to a struct")
	}

	dstElem := dstVal.Elem()
	srcVal := reflect.ValueOf(src)

	if srcVal.Kind() == reflect.Pointer {
		srcVal = srcVal.Elem()
	}

	if srcVal.Kind() != reflect.Struct {
		return fmt.Errorf("src must be a struct or a pointer to a struct")
	}

	if dstElem.Type() != srcVal.Type() {
		return fmt.Errorf("dst and src must be of the same struct type")
	}

	for i := range srcVal.NumField() {
		srcField := srcVal.Field(i)
		dstField := dstElem.Field(i)

		if !dstField.CanSet() {
			continue
		}

		switch dstField.Kind() {
		case reflect.Slice:
			if !srcField.IsNil() {
				dstField.Set(reflect.AppendSlice(dstField, srcField))
			}
		case reflect.Map:
			if !srcField.IsNil() {
				if dstField.IsNil() {
					dstField.Set(reflect.MakeMap(dstField.Type()))
				}
				for _, key := range srcField.MapKeys() {
					dstField.SetMapIndex(key, srcField.MapIndex(key))
				}
			}
		case reflect.Bool:
			dstField.SetBool(dstField.Bool() || srcField.Bool())
		case reflect.Struct:
			if err := mergeStructs(dstField.Addr().Interface(), srcField.Interface()); err != nil {
				return err
			}
		default:
			if !srcField.IsZero() {
				dstField.Set(srcField)
			}
		}
	}

	return nil
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// unmarshalSection is a helper to parse sections without conditional logic.
func unmarshalSection(rawCfg map[string]any, name string, dst any) error {
	if data, ok := rawCfg[name]; ok {
		if err := toml.Unmarshal([]byte(mustMarshal(data)), dst); err != nil {
			return fmt.Errorf("failed to parse [%s] section: %w", name, err)
		}
	}
	return nil
}

func evalCondition(expression string, env Env) (bool, error) {
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return false, fmt.Errorf("failed to compile condition %q: %w", expression, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("failed to run condition %q: %w", expression, err)
	}
	matched, ok := result.(bool)
	return ok && matched, nil
}

// decodeConditional parses a raw table into dst, treating sub-tables
// whose keys compile as expressions as conditional fragments: they merge
// into dst only when the condition holds under env.
func decodeConditional[T any](sectionMap map[string]any, dst *T, env Env) error {
	baseFields := make(map[string]any)
	conditionalFields := make(map[string]map[string]any)

	for key, val := range sectionMap {
		if subMap, ok := val.(map[string]any); ok {
			if _, err := expr.Compile(key, expr.Env(env)); err == nil {
				conditionalFields[key] = subMap
				continue
			}
		}
		baseFields[key] = val
	}

	if len(baseFields) > 0 {
		if err := toml.Unmarshal([]byte(mustMarshal(baseFields)), dst); err != nil {
			return fmt.Errorf("failed to parse base section: %w", err)
		}
	}

	for expression, condMap := range conditionalFields {
		matched, err := evalCondition(expression, env)
		if err != nil {
			return err
		}
		if !matched {
			continue
		}

		var condSection T
		if err := toml.Unmarshal([]byte(mustMarshal(condMap)), &condSection); err != nil {
			return fmt.Errorf("failed to parse conditional section [%q]: %w", expression, err)
		}
		if err := mergeStructs(dst, condSection); err != nil {
			return fmt.Errorf("failed to merge conditional section [%q]: %w", expression, err)
		}
	}

	return nil
}

// decodeTargetSection handles one [target.<name>] table. Visibility
// blocks and conditional fragments both live below the target key, so
// this cannot be a plain struct unmarshal.
func decodeTargetSection(raw map[string]any, env Env) (*TargetSection, error) {
	baseFields := make(map[string]any)
	visibilityFields := make(map[string]map[string]any)
	conditionalFields := make(map[string]map[string]any)

	for key, val := range raw {
		if subMap, ok := val.(map[string]any); ok {
			switch key {
			case "private", "public", "interface":
				visibilityFields[key] = subMap
				continue
			}
			if _, err := expr.Compile(key, expr.Env(env)); err == nil {
				conditionalFields[key] = subMap
				continue
			}
		}
		baseFields[key] = val
	}

	sec := new(TargetSection)
	if len(baseFields) > 0 {
		if err := toml.Unmarshal([]byte(mustMarshal(baseFields)), sec); err != nil {
			return nil, fmt.Errorf("failed to parse target section: %w", err)
		}
	}

	for vis, subMap := range visibilityFields {
		var ps PropertySet
		if err := decodeConditional(subMap, &ps, env); err != nil {
			return nil, fmt.Errorf("in [%s] block: %w", vis, err)
		}
		var dst *PropertySet
		switch vis {
		case "private":
			dst = &sec.Private
		case "public":
			dst = &sec.Public
		case "interface":
			dst = &sec.Interface
		}
		if err := mergeStructs(dst, ps); err != nil {
			return nil, err
		}
	}

	for expression, condMap := range conditionalFields {
		matched, err := evalCondition(expression, env)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		condSec, err := decodeTargetSection(condMap, env)
		if err != nil {
			return nil, fmt.Errorf("in conditional [%q]: %w", expression, err)
		}
		if err := mergeStructs(sec, *condSec); err != nil {
			return nil, fmt.Errorf("failed to merge conditional [%q]: %w", expression, err)
		}
	}

	return sec, nil
}

var exprRegex = regexp.MustCompile(`\{\{(.+?)\}\}`)

// interpolate evaluates every {{...}} expression in a string. `$<...>`
// fragments are left alone here; they are deferred until a
// configuration is selected.
func interpolate(s string, env Env) (string, error) {
	var evalErr error
	out := exprRegex.ReplaceAllStringFunc(s, func(m string) string {
		if evalErr != nil {
			return m
		}
		expression := strings.TrimSpace(m[2 : len(m)-2])

		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			evalErr = fmt.Errorf("failed to compile expression %q: %w", expression, err)
			return m
		}
		result, err := expr.Run(program, env)
		if err != nil {
			evalErr = fmt.Errorf("failed to run expression %q: %w", expression, err)
			return m
		}
		return fmt.Sprintf("%v", result)
	})
	if evalErr != nil {
		return "", evalErr
	}
	return out, nil
}

// interpolateTree walks the parsed TOML data, interpolating every string
// in place.
func interpolateTree(data any, env Env) (any, error) {
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			sub, err := interpolateTree(val, env)
			if err != nil {
				return nil, err
			}
			v[key] = sub
		}
		return v, nil
	case []any:
		for i, item := range v {
			sub, err := interpolateTree(item, env)
			if err != nil {
				return nil, err
			}
			v[i] = sub
		}
		return v, nil
	case string:
		return interpolate(v, env)
	default:
		return data, nil
	}
}

func ParseManifest(rdr io.Reader, env Env) (*Manifest, error) {
	var rawCfg map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&rawCfg); err != nil {
		if derr, ok := err.(*toml.DecodeError); ok {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}

	processed, err := interpolateTree(rawCfg, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in manifest: %w", err)
	}
	rawCfg = processed.(map[string]any)

	m := &Manifest{
		Vars:    make(map[string]string),
		Targets: make(map[string]*TargetSection),
	}

	if err := unmarshalSection(rawCfg, "package", &m.Package); err != nil {
		return nil, err
	}
	if err := unmarshalSection(rawCfg, "vars", &m.Vars); err != nil {
		return nil, err
	}

	if targetData, ok := rawCfg["target"]; ok {
		targetMap, ok := targetData.(map[string]any)
		if !ok {
			return nil, errors.New("invalid [target] section format: expected a table")
		}
		for name, val := range targetMap {
			subMap, ok := val.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid [target.%s] section format: expected a table", name)
			}
			sec, err := decodeTargetSection(subMap, env)
			if err != nil {
				return nil, fmt.Errorf("in [target.%s]: %w", name, err)
			}
			m.Targets[name] = sec
		}
	}

	if m.Package.Name == "" {
		return nil, errors.New("manifest is missing package.name")
	}

	return m, nil
}

// ParseManifestFromFile parses a manifest from a filepath.
func ParseManifestFromFile(path string, env Env) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseManifest(bufio.NewReader(f), env)
}
