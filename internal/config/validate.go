package config

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// validateJSON validates an object (already decoded into generic Go
// values) with the given schema.
func validateJSON(obj any, schemaSrc string) error {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("mem://schema.json", strings.NewReader(schemaSrc)); err != nil {
		return err
	}
	sch, err := c.Compile("mem://schema.json")
	if err != nil {
		return err
	}
	return sch.Validate(obj)
}

func validateServerMap(m map[string]any) error {
	return validateJSON(m, serverSchema)
}

const serverSchema = `{
  "$schema":"https://json-schema.org/draft/2020-12/schema",
  "type":"object",
  "properties":{
    "http_addr":{"type":"string"},
    "log_level":{"type":"string","enum":["trace","debug","info","warn","error"]},
    "database":{
      "type":"object",
      "properties":{
        "file":{"type":"string"}
      }
    }
  }
}`
