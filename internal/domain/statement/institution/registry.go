package institution

import (
	"context"
	"log/slog"
	"path/filepath"
)

// Registry is the ordered, read-only list of known formats. Earlier entries are
// tried first, so narrower layouts must precede broader ones from the same issuer.
type Registry struct {
	formats []Format
	byName  map[string]Format
}

// NewRegistry builds a registry in the given order.
func NewRegistry(formats ...Format) *Registry {
	r := &Registry{
		formats: formats,
		byName:  make(map[string]Format, len(formats)),
	}
	for _, f := range formats {
		r.byName[f.Name()] = f
	}
	return r
}

// DefaultRegistry returns every supported layout in precedence order. Card
// variants precede their bank's deposit-account variant.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewBMOAccount(),
		NewBMO(),
		NewEQBank(),
		NewTDCreditCard(),
		NewTDBank(),
		NewTangerineCreditCard(),
		NewTangerine(),
		NewRBCVisa(),
		NewRBCBank(),
		NewSimplii(),
		NewCIBCVisa(),
		NewCIBC(),
		NewAmex(),
		NewScotiabank(),
		NewScotiaCreditCard(),
		NewWise(),
	)
}

// Formats returns the registered formats in order.
func (r *Registry) Formats() []Format {
	out := make([]Format, len(r.formats))
	copy(out, r.formats)
	return out
}

// Lookup finds a format by name.
func (r *Registry) Lookup(name string) (Format, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Identifier picks the first format that claims a document.
type Identifier struct {
	registry *Registry
	logger   *slog.Logger
}

// NewIdentifier creates an identifier over the registry.
func NewIdentifier(registry *Registry, logger *slog.Logger) *Identifier {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Identifier{registry: registry, logger: logger}
}

// Identify returns the first format whose predicate accepts the sample text and
// file name, or nil when none does. Only the base name of the file is considered.
func (id *Identifier) Identify(ctx context.Context, text, filename string) Format {
	if c := id.Candidates(ctx, text, filename); len(c) > 0 {
		return c[0]
	}
	return nil
}

// Candidates returns every format that claims the document, in precedence order.
// Callers that find no records with the first one try the next.
func (id *Identifier) Candidates(ctx context.Context, text, filename string) []Format {
	name := filepath.Base(filename)
	var out []Format
	for _, f := range id.registry.formats {
		if f.Applies(text, name) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		id.logger.DebugContext(ctx, "no institution format matched", slog.String("file", name))
		return nil
	}
	id.logger.DebugContext(ctx, "institution identified",
		slog.String("file", name),
		slog.String("institution", out[0].Name()),
		slog.Int("candidates", len(out)))
	return out
}

// Registry exposes the identifier's registry.
func (id *Identifier) Registry() *Registry {
	return id.registry
}
