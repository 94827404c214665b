package hclcfg

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/fortloom/internal/config"
	"github.com/vk/fortloom/internal/ctxlog"
)

// Loader reads scheduler configuration from HCL files.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// Load parses and decodes one HCL config file.
func (Loader) Load(ctx context.Context, path string) (*config.Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing config %q: %w", path, diags)
	}
	cfg, err := decode(file.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding config %q: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Loaded HCL config",
		"path", path,
		"routine_overrides", len(cfg.Routines),
	)
	return cfg, nil
}

func decode(body hcl.Body) (*config.Config, error) {
	var root rootSchema
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	cfg := config.New()
	if root.Default != nil {
		ov, err := overrideFrom(
			root.Default.Mode, root.Default.Role,
			root.Default.Expand, root.Default.Strict,
			root.Default.Blacklist, root.Default.Ignore,
			root.Default.Whitelist, root.Default.Enrich,
		)
		if err != nil {
			return nil, fmt.Errorf("default block: %w", err)
		}
		cfg.ApplyDefault(ov)
	}
	for _, rt := range root.Routines {
		ov, err := overrideFrom(
			rt.Mode, rt.Role, rt.Expand, rt.Strict,
			rt.Blacklist, rt.Ignore, rt.Whitelist, rt.Enrich,
		)
		if err != nil {
			return nil, fmt.Errorf("routine %q: %w", rt.Name, err)
		}
		cfg.SetOverride(rt.Name, ov)
	}
	return cfg, nil
}

func overrideFrom(
	mode, role *string,
	expand, strict *bool,
	blacklist, ignore, whitelist, enrich hcl.Expression,
) (config.Override, error) {
	ov := config.Override{
		Mode:   mode,
		Role:   role,
		Expand: expand,
		Strict: strict,
	}
	for _, l := range []struct {
		name string
		expr hcl.Expression
		dst  *[]string
	}{
		{"blacklist", blacklist, &ov.Blacklist},
		{"ignore", ignore, &ov.Ignore},
		{"whitelist", whitelist, &ov.Whitelist},
		{"enrich", enrich, &ov.Enrich},
	} {
		vals, err := stringList(l.expr)
		if err != nil {
			return config.Override{}, fmt.Errorf("attribute %q: %w", l.name, err)
		}
		*l.dst = vals
	}
	return ov, nil
}

// stringList evaluates a list-valued attribute expression. An absent
// attribute yields nil; a present one yields a non-nil slice even when
// empty, so empty lists still override the default.
func stringList(expr hcl.Expression) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("expected a list of strings, got %s", val.Type().FriendlyName())
	}
	out := make([]string, 0, val.LengthInt())
	for _, elem := range val.AsValueSlice() {
		s, err := convert.Convert(elem, cty.String)
		if err != nil {
			return nil, fmt.Errorf("list element: %w", err)
		}
		out = append(out, s.AsString())
	}
	return out, nil
}
