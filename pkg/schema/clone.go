package schema

// Clone deep-copies the schema so snapshots handed to the interpreter or a
// store never alias the authoring session's state.
func (s EndpointTypeSchema) Clone() EndpointTypeSchema {
	out := s
	out.SupportedModes = append([]Mode(nil), s.SupportedModes...)
	out.Fields = CloneFields(s.Fields)
	return out
}

// CloneFields deep-copies a field list.
func CloneFields(fields []FieldDefinition) []FieldDefinition {
	if fields == nil {
		return nil
	}
	out := make([]FieldDefinition, len(fields))
	for idx, field := range fields {
		out[idx] = field.Clone()
	}
	return out
}

// Clone deep-copies a single field definition.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	out.Properties = cloneMap(f.Properties)
	out.Modes = append([]Mode(nil), f.Modes...)
	if f.Rules != nil {
		out.Rules = make([]RuleSpec, len(f.Rules))
		for idx, rule := range f.Rules {
			out.Rules[idx] = rule.Clone()
		}
	}
	if f.Visibility != nil {
		predicate := *f.Visibility
		out.Visibility = &predicate
	}
	return out
}

// Clone deep-copies a rule.
func (r RuleSpec) Clone() RuleSpec {
	out := r
	if r.Min != nil {
		v := *r.Min
		out.Min = &v
	}
	if r.Max != nil {
		v := *r.Max
		out.Max = &v
	}
	if r.Len != nil {
		v := *r.Len
		out.Len = &v
	}
	if r.Enum != nil {
		out.Enum = make([]any, len(r.Enum))
		for idx, value := range r.Enum {
			out.Enum[idx] = cloneValue(value)
		}
	}
	return out
}

// CloneProperties deep-copies a widget property map.
func CloneProperties(props map[string]any) map[string]any {
	return cloneMap(props)
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = cloneValue(v)
		}
		return clone
	case []map[string]any:
		clone := make([]map[string]any, len(typed))
		for i, v := range typed {
			clone[i] = cloneMap(v)
		}
		return clone
	default:
		return typed
	}
}
