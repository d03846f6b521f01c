package appconfig

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema describes the accepted config file keys.
var configSchema = map[string]any{
	"$schema":              "http://json-schema.org/draft-07/schema#",
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"debug":              map[string]any{"type": "boolean"},
		"logFile":            map[string]any{"type": "string"},
		"outputRoot":         map[string]any{"type": "string"},
		"bucketsPerSecond":   map[string]any{"type": "integer", "minimum": 1},
		"dropBoundarySample": map[string]any{"type": "boolean"},
	},
}

// Validate checks a raw JSON config document against the config schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(configSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("config failed validation: %s", strings.Join(details, "; "))
}
