package characteristic

// Serialized map keys.
const (
	KeyIID         = "iid"
	KeyType        = "type"
	KeyPerms       = "perms"
	KeyValue       = "value"
	KeyDescription = "description"
	KeyFormat      = "format"
	KeyUnit        = "unit"
	KeyMaxLength   = "maxLength"
	KeyMaxValue    = "maxValue"
	KeyMinValue    = "minValue"
	KeyMinStep     = "minStep"
)

// Serialize maps a characteristic to its transport-ready representation.
//
// iid, type and perms are always present. value and each metadata key are
// present only when set. No other keys are produced.
func Serialize(c Characteristic) map[string]any {
	perms := c.Permissions()
	tags := make([]string, len(perms))
	for i, p := range perms {
		tags[i] = string(p)
	}

	m := map[string]any{
		KeyIID:   c.IID(),
		KeyType:  string(c.Type()),
		KeyPerms: tags,
	}

	if v := c.UntypedValue(); v != nil {
		m[KeyValue] = v
	}
	if d := c.Description(); d != "" {
		m[KeyDescription] = d
	}
	if f := c.Format(); f != "" {
		m[KeyFormat] = string(f)
	}
	if u := c.Unit(); u != "" {
		m[KeyUnit] = string(u)
	}
	if n := c.MaxLength(); n != nil {
		m[KeyMaxLength] = *n
	}
	if v := c.MaxValue(); v != nil {
		m[KeyMaxValue] = *v
	}
	if v := c.MinValue(); v != nil {
		m[KeyMinValue] = *v
	}
	if v := c.MinStep(); v != nil {
		m[KeyMinStep] = *v
	}

	return m
}
