package llm

// Options is the enumerated inference option set. The well-known sampling
// parameters are typed fields; anything else goes through Extra and is
// passed to the backend verbatim after key normalization (underscored names
// are converted to the camel-case form the transport expects — see the
// backend's mapping table).
//
// Pointer fields distinguish "unset" from an explicit zero.
type Options struct {
	// MaxTokens caps the length of the generated response. 0 means use the
	// backend default.
	MaxTokens int

	// Temperature controls randomness; higher is more creative.
	Temperature *float64

	// TopP controls nucleus sampling diversity.
	TopP *float64

	// StopSequences end generation when emitted by the model.
	StopSequences []string

	// Extra holds additional named parameters passed through to the
	// backend. Keys may use underscored names.
	Extra map[string]any
}

// Float returns a pointer to v, for filling optional option fields inline.
func Float(v float64) *float64 {
	return &v
}

// Clone returns a deep copy of o. A nil receiver yields an empty Options.
func (o *Options) Clone() *Options {
	out := &Options{}
	if o == nil {
		return out
	}
	out.MaxTokens = o.MaxTokens
	if o.Temperature != nil {
		out.Temperature = Float(*o.Temperature)
	}
	if o.TopP != nil {
		out.TopP = Float(*o.TopP)
	}
	if len(o.StopSequences) > 0 {
		out.StopSequences = append([]string(nil), o.StopSequences...)
	}
	if len(o.Extra) > 0 {
		out.Extra = make(map[string]any, len(o.Extra))
		for k, v := range o.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// MergeOptions layers override on top of base and returns a new Options.
// Fields set in override win; Extra maps are merged key-wise with override
// taking precedence. Both arguments may be nil.
func MergeOptions(base, override *Options) *Options {
	out := base.Clone()
	if override == nil {
		return out
	}
	if override.MaxTokens != 0 {
		out.MaxTokens = override.MaxTokens
	}
	if override.Temperature != nil {
		out.Temperature = Float(*override.Temperature)
	}
	if override.TopP != nil {
		out.TopP = Float(*override.TopP)
	}
	if len(override.StopSequences) > 0 {
		out.StopSequences = append([]string(nil), override.StopSequences...)
	}
	if len(override.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]any, len(override.Extra))
		}
		for k, v := range override.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
