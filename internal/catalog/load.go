package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	_ "embed"
)

//go:embed catalog_schema.json
var catalogSchemaJSON string

//go:embed default_catalog.json
var defaultCatalogJSON []byte

// Default returns the catalog built from the embedded role/permission tables
// for the payments admin portal. The embedded data is validated at build time
// by the package tests; a decode failure here is a programming error.
func Default() *Catalog {
	spec, err := parseSpec(defaultCatalogJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded default catalog is invalid: %v", err))
	}
	return New(spec)
}

// Load reads a catalog specification from a JSON file, validates it against
// the catalog schema, and builds the immutable catalog. Schema violations
// abort startup; a running process never holds a half-valid catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	spec, err := parseSpec(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return New(spec), nil
}

// ValidateBytes checks raw catalog JSON against the embedded schema without
// building a catalog.
func ValidateBytes(data []byte) error {
	schema, err := compileCatalogSchema()
	if err != nil {
		return err
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse catalog JSON: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("catalog schema validation: %w", err)
	}
	return nil
}

func parseSpec(data []byte) (Spec, error) {
	if err := ValidateBytes(data); err != nil {
		return Spec{}, err
	}
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("decode catalog spec: %w", err)
	}
	return spec, nil
}

func compileCatalogSchema() (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(catalogSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse catalog schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)

	const schemaURL = "catalog_schema.json"
	if err := compiler.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add catalog schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	return schema, nil
}
