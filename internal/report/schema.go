package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var index = map[string]any{
	"type":    "integer",
	"minimum": 0,
	"maximum": 4294967295,
}

var optionalNumber = map[string]any{"type": []string{"number", "null"}}

var optionalIndex = map[string]any{
	"type":    []string{"integer", "null"},
	"minimum": 0,
	"maximum": 4294967295,
}

var sampleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"SampleId":                     map[string]any{"type": "string"},
		"LimeHistory":                  map[string]any{"type": "string"},
		"Crop1":                        map[string]any{"type": "string"},
		"Crop2":                        map[string]any{"type": "string"},
		"Crop1LimeRecommendations":     map[string]any{"type": "string"},
		"Crop2LimeRecommendations":     map[string]any{"type": "string"},
		"pH":                           map[string]any{"type": "number"},
		"NpkFertilizerRecommendations": map[string]any{"type": "string"},
		"PhosphorusIndex":              index,
		"PotassiumIndex":               index,
		"AdditionalTestResults": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"HmPercent": optionalNumber,
				"WV":        optionalNumber,
				"CEC":       optionalNumber,
				"Mn-I":      optionalIndex,
				"Zn-I":      optionalIndex,
				"Cu-I":      optionalIndex,
				"S-I":       optionalIndex,
			},
		},
	},
	"required": []string{
		"SampleId", "LimeHistory", "Crop1", "Crop2",
		"Crop1LimeRecommendations", "Crop2LimeRecommendations",
		"pH", "NpkFertilizerRecommendations",
		"PhosphorusIndex", "PotassiumIndex", "AdditionalTestResults",
	},
}

// ReportSchema is the JSON schema a decoded payload must satisfy.
// Unknown properties are allowed and dropped before decoding.
var ReportSchema = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"properties": map[string]any{
		"ReportNumber": map[string]any{"type": "string"},
		"SampledDate":  map[string]any{"type": "string"},
		"Samples": map[string]any{
			"type":  "array",
			"items": sampleSchema,
		},
	},
	"required": []string{"ReportNumber", "SampledDate", "Samples"},
}

// Schema returns ReportSchema as indented JSON.
func Schema() []byte {
	data, err := json.MarshalIndent(ReportSchema, "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}

// schemaURL is absolute so error locations do not depend on the working directory.
const schemaURL = "mem://soilextract/report.json"

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(Schema())); err != nil {
		return nil, fmt.Errorf("load report schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile report schema: %w", err)
	}
	return schema, nil
})

// prune removes object keys the schema does not name, recursing through
// "properties" and "items". Matching is exact and case-sensitive.
func prune(doc any, schema map[string]any) {
	switch v := doc.(type) {
	case map[string]any:
		props, ok := schema["properties"].(map[string]any)
		if !ok {
			return
		}
		for key, child := range v {
			sub, known := props[key].(map[string]any)
			if !known {
				delete(v, key)
				continue
			}
			prune(child, sub)
		}
	case []any:
		items, ok := schema["items"].(map[string]any)
		if !ok {
			return
		}
		for _, child := range v {
			prune(child, items)
		}
	}
}
