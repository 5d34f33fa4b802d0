package slack

import (
	"bytes"
	"fmt"
	"io/fs"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/testvox/testvox/data"
)

const (
	blocksSchemaFile = "slack/blocks.schema.json"
	blocksSchemaURL  = "https://testvox.dev/schemas/slack/blocks.schema.json"
)

var (
	blocksSchema *jsonschema.Schema
	compileOnce  sync.Once
	compileErr   error
)

func compileSchema() error {
	compileOnce.Do(func() {
		content, err := fs.ReadFile(data.Schemas(), blocksSchemaFile)
		if err != nil {
			compileErr = fmt.Errorf("read blocks schema: %w", err)
			return
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal blocks schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(blocksSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add blocks schema resource: %w", err)
			return
		}

		blocksSchema, err = compiler.Compile(blocksSchemaURL)
		if err != nil {
			compileErr = fmt.Errorf("compile blocks schema: %w", err)
			return
		}
	})

	return compileErr
}

// Validate checks a JSON message payload against the Block Kit schema.
func Validate(payload []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := blocksSchema.Validate(v); err != nil {
		return fmt.Errorf("slack payload validation failed: %w", err)
	}

	return nil
}

// Validate checks the rendered payload against the Block Kit schema.
func (r *Report) Validate() error {
	out, err := r.JSON()
	if err != nil {
		return err
	}
	return Validate(out)
}
