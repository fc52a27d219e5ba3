package hcl_adapter

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter turns native Go values into cty values for the HCL evaluation
// context.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}

// EvalContext builds the context config expressions are evaluated in. The
// process environment is exposed as the `env` map, e.g. "${env.HOME}".
func (c *Converter) EvalContext(environ []string) (*hcl.EvalContext, error) {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = value
	}

	env, err := c.ToCtyValue(vars)
	if err != nil {
		return nil, fmt.Errorf("failed to convert environment: %w", err)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}, nil
}
