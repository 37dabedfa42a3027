package characteristic

import "sync"

// Option configures a characteristic at construction time.
type Option func(*settings)

// settings collects the fixed, non-generic parts of a characteristic.
type settings struct {
	permissions []Permission
	meta        Metadata
	formatSet   bool
}

// WithPermissions replaces the default permission set.
func WithPermissions(perms ...Permission) Option {
	return func(s *settings) {
		s.permissions = append([]Permission(nil), perms...)
	}
}

// WithDescription sets the human readable description.
func WithDescription(description string) Option {
	return func(s *settings) { s.meta.Description = description }
}

// WithFormat overrides the format derived from the value type.
// WithFormat("") leaves the format unconfigured.
func WithFormat(format Format) Option {
	return func(s *settings) {
		s.meta.Format = format
		s.formatSet = true
	}
}

// WithUnit sets the unit tag.
func WithUnit(unit Unit) Option {
	return func(s *settings) { s.meta.Unit = unit }
}

// WithMaxLength sets the maximum length (strings and data).
func WithMaxLength(n int) Option {
	return func(s *settings) { s.meta.MaxLength = &n }
}

// WithMaxValue sets the maximum numeric value.
func WithMaxValue(v float64) Option {
	return func(s *settings) { s.meta.MaxValue = &v }
}

// WithMinValue sets the minimum numeric value.
func WithMinValue(v float64) Option {
	return func(s *settings) { s.meta.MinValue = &v }
}

// WithMinStep sets the minimum step between numeric values.
func WithMinStep(v float64) Option {
	return func(s *settings) { s.meta.MinStep = &v }
}

// Generic is a characteristic holding an optional value of type T.
//
// The stored value, when present, is always a valid T: a failed conversion is
// never committed. Cells compare by identity only; two cells with the same
// iid, type and value are still different characteristics.
type Generic[T Value] struct {
	typ         Type
	permissions []Permission
	meta        Metadata

	mu        sync.RWMutex // protects fields below
	iid       uint64
	value     *T
	owner     Owner
	listeners []func(*T)
}

// New creates a characteristic of the given type with an optional initial value.
//
// Permissions default to read, write and events. Unless WithFormat is given
// the format is derived from T.
func New[T Value](typ Type, value *T, opts ...Option) *Generic[T] {
	s := settings{permissions: DefaultPermissions}
	for _, opt := range opts {
		opt(&s)
	}
	if !s.formatSet {
		s.meta.Format = formatOf[T]()
	}

	return &Generic[T]{
		typ:         typ,
		permissions: append([]Permission(nil), s.permissions...),
		meta:        s.meta,
		value:       clone(value),
	}
}

// IID returns the instance identifier.
func (c *Generic[T]) IID() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.iid
}

// SetIID assigns the instance identifier. Called by the accessory during assembly.
func (c *Generic[T]) SetIID(iid uint64) {
	c.mu.Lock()
	c.iid = iid
	c.mu.Unlock()
}

// Type returns the characteristic type.
func (c *Generic[T]) Type() Type { return c.typ }

// Permissions returns a copy of the permission set.
func (c *Generic[T]) Permissions() []Permission {
	return append([]Permission(nil), c.permissions...)
}

func (c *Generic[T]) Description() string { return c.meta.Description }
func (c *Generic[T]) Format() Format      { return c.meta.Format }
func (c *Generic[T]) Unit() Unit          { return c.meta.Unit }
func (c *Generic[T]) MaxLength() *int     { return clone(c.meta.MaxLength) }
func (c *Generic[T]) MaxValue() *float64  { return clone(c.meta.MaxValue) }
func (c *Generic[T]) MinValue() *float64  { return clone(c.meta.MinValue) }
func (c *Generic[T]) MinStep() *float64   { return clone(c.meta.MinStep) }

// Owner returns the owning service handle, or nil.
func (c *Generic[T]) Owner() Owner {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.owner
}

// SetOwner attaches the characteristic to a service. Passing nil detaches it.
func (c *Generic[T]) SetOwner(owner Owner) {
	c.mu.Lock()
	c.owner = owner
	c.mu.Unlock()
}

// UntypedValue returns the current value as any, or nil when absent.
func (c *Generic[T]) UntypedValue() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil {
		return nil
	}
	return *c.value
}

// SetUntypedValue is the entry point for remote protocol writes.
//
// A nil v clears the value. Otherwise v is converted to T; if that fails the
// previous value is kept, nothing is notified and ErrTypeMismatch is returned.
// On success the value is replaced even when unchanged and the device is
// notified for every subscriber except origin, so the writer gets no echo.
func (c *Generic[T]) SetUntypedValue(v any, origin ConnectionID) error {
	var next *T
	if v != nil {
		converted, err := coerce[T](v)
		if err != nil {
			return err
		}
		next = &converted
	}

	c.mu.Lock()
	c.value = next
	owner := c.owner
	c.mu.Unlock()

	c.notify(owner, origin)
	return nil
}

// Value returns a copy of the current value, or nil when absent.
func (c *Generic[T]) Value() *T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.value)
}

// Get returns the current value and whether one is present.
func (c *Generic[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil {
		var zero T
		return zero, false
	}
	return *c.value, true
}

// SetValue is the local programmatic write.
//
// Nothing happens when v equals the current value. Otherwise the value is
// replaced and every subscriber is notified, with no connection excluded.
func (c *Generic[T]) SetValue(v *T) {
	c.mu.Lock()
	if equal(c.value, v) {
		c.mu.Unlock()
		return
	}
	c.value = clone(v)
	owner := c.owner
	c.mu.Unlock()

	c.notify(owner, NoConnection)
}

// Set is shorthand for SetValue(&v).
func (c *Generic[T]) Set(v T) {
	c.SetValue(&v)
}

// SimulateRemoteWrite applies a typed write as if it came from a remote
// client, for in-process observers.
//
// Like SetValue it is a no-op when the value is unchanged. On change only the
// listeners registered with OnValueChange are called; the device is not
// notified. origin is not used for routing. It never fails.
func (c *Generic[T]) SimulateRemoteWrite(v *T, origin ConnectionID) {
	c.mu.Lock()
	if equal(c.value, v) {
		c.mu.Unlock()
		return
	}
	c.value = clone(v)
	listeners := make([]func(*T), len(c.listeners))
	copy(listeners, c.listeners)
	current := clone(c.value)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(clone(current))
	}
}

// OnValueChange registers a listener called by SimulateRemoteWrite with the new value.
func (c *Generic[T]) OnValueChange(fn func(*T)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// notify routes a single-characteristic notification through the owner chain.
// A detached characteristic, or one whose device is gone, notifies nobody.
func (c *Generic[T]) notify(owner Owner, except ConnectionID) {
	if owner == nil {
		return
	}
	n := owner.Notifier()
	if n == nil {
		return
	}
	n.Notify([]Characteristic{c}, except)
}

// clone returns a pointer to a copy of *p, or nil.
func clone[V any](p *V) *V {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// equal reports whether two optional values are both absent or hold equal values.
func equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
