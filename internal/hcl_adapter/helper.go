package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with non-nil,
// zero-width expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}

	// A real attribute occupies bytes in the file; a placeholder for an omitted
	// optional attribute has a zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// decodeAttr evaluates expr into target when the attribute is present.
// Omitted attributes leave target untouched.
func decodeAttr(ctx context.Context, expr hcl.Expression, attrName string, evalCtx *hcl.EvalContext, target any) error {
	if !isExprDefined(ctx, expr, attrName) {
		return nil
	}
	if diags := gohcl.DecodeExpression(expr, evalCtx, target); diags.HasErrors() {
		return fmt.Errorf("invalid value for %s: %w", attrName, diags)
	}
	return nil
}

// decodeDuration evaluates a duration string such as "300ms" into target.
func decodeDuration(ctx context.Context, expr hcl.Expression, attrName string, evalCtx *hcl.EvalContext, target *time.Duration) error {
	raw := ""
	if err := decodeAttr(ctx, expr, attrName, evalCtx, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %w", attrName, err)
	}
	*target = d
	return nil
}
