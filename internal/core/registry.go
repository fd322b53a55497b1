package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	registry   = make(map[Entity]TableDefinition)
	registryMu sync.RWMutex
)

// Register adds an entity definition. Table packages call it from init, so an
// incomplete or repeated definition panics at startup.
func Register(def TableDefinition) {
	if err := checkDefinition(def); err != nil {
		panic(fmt.Sprintf("register %q: %v", def.Info.Key, err))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("register %q: already registered", def.Info.Key))
	}

	if len(def.Info.Columns) == 0 {
		def.Info.Columns = make([]string, len(def.FieldSpecs))
		for i, spec := range def.FieldSpecs {
			def.Info.Columns[i] = spec.Name
		}
	}
	if def.Info.Table == "" {
		def.Info.Table = string(def.Info.Key)
	}

	registry[def.Info.Key] = def
}

// checkDefinition rejects definitions the pipeline cannot ingest.
func checkDefinition(def TableDefinition) error {
	switch {
	case def.Info.Key == "":
		return errors.New("missing key")
	case len(def.FieldSpecs) == 0:
		return errors.New("no fields")
	case def.FieldSpecs[0].DBColumn != "id" || !def.FieldSpecs[0].Required:
		return errors.New("first field must be the required id column")
	case def.BuildRecord == nil || def.CopyRow == nil:
		return errors.New("BuildRecord and CopyRow are required")
	}
	for _, spec := range def.FieldSpecs {
		if spec.Name == "" || spec.DBColumn == "" {
			return fmt.Errorf("field %q has no name or column", spec.Name)
		}
	}
	return nil
}

// Get returns the definition registered under key.
func Get(key Entity) (TableDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// Lookup is Get with an error suitable for returning to callers.
func Lookup(key Entity) (TableDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return TableDefinition{}, fmt.Errorf("%w: %s", ErrUnknownEntity, key)
	}
	return def, nil
}

// All returns every definition ordered by key.
func All() []TableDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]TableDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	slices.SortFunc(result, func(a, b TableDefinition) int {
		return strings.Compare(string(a.Info.Key), string(b.Info.Key))
	})
	return result
}

// TableCount returns the number of registered entities.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
