package merchant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"slices"
)

// fieldSet maps wire names to the entity field each one decodes into. It is
// the whole schema of an entity: anything not listed is unknown.
type fieldSet map[string]any

// merge decodes a JSON object onto the fields in set. Only keys present in
// raw are touched. Unknown keys fail the whole merge when strict is set and
// are logged and skipped otherwise. Values are decoded into scratch copies
// first, so a failed merge leaves the entity unchanged.
func merge(entity string, set fieldSet, raw []byte, strict bool, logger *log.Logger) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var in map[string]json.RawMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("decode %s: %w", entity, err)
	}

	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	known := keys[:0]
	for _, k := range keys {
		if _, ok := set[k]; ok {
			known = append(known, k)
			continue
		}
		if strict {
			return &SchemaError{Entity: entity, Field: k}
		}
		logger.Printf("merchant: ignoring unknown %s field %q", entity, k)
	}

	staged := make([]reflect.Value, len(known))
	for i, k := range known {
		scratch := reflect.New(reflect.TypeOf(set[k]).Elem())
		if err := decodeExact(in[k], scratch.Interface()); err != nil {
			return fmt.Errorf("decode %s.%s: %w", entity, k, err)
		}
		staged[i] = scratch.Elem()
	}
	for i, k := range known {
		reflect.ValueOf(set[k]).Elem().Set(staged[i])
	}
	return nil
}

// mergeFields is the Update path: the caller's values are encoded with the
// same codecs the API uses and merged like a response.
func mergeFields(entity string, set fieldSet, fields map[string]any, strict bool, logger *log.Logger) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s update: %w", entity, err)
	}
	return merge(entity, set, raw, strict, logger)
}
