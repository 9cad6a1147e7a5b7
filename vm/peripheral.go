package vm

import "github.com/pkg/errors"

// Handler is a peripheral's opcode implementation: it receives the VM (for
// ReadAny/ReadInt/Write access and output-buffer appends) and the current
// instruction's operand list. It must return within bounded time and must
// not invoke Step on the same Instance.
type Handler func(i *Instance, operands []Operand) error

// PeripheralRegistry is a name -> handler mapping for extension opcodes.
// Names are case-sensitive, uppercase by convention. The registry is not
// part of a snapshot: handlers must be re-registered by the host after
// Restore.
type PeripheralRegistry struct {
	handlers map[string]Handler
}

// NewPeripheralRegistry builds an empty registry.
func NewPeripheralRegistry() *PeripheralRegistry {
	return &PeripheralRegistry{handlers: make(map[string]Handler)}
}

// Register binds name to handler, replacing any existing binding.
func (p *PeripheralRegistry) Register(name string, handler Handler) {
	p.handlers[name] = handler
}

// Unregister removes name's binding, if any.
func (p *PeripheralRegistry) Unregister(name string) {
	delete(p.handlers, name)
}

// Lookup returns the handler bound to name, if any.
func (p *PeripheralRegistry) Lookup(name string) (Handler, bool) {
	h, ok := p.handlers[name]
	return h, ok
}

// Has reports whether name currently has a registered handler.
func (p *PeripheralRegistry) Has(name string) bool {
	_, ok := p.handlers[name]
	return ok
}

// dispatch invokes the handler bound to name, failing with
// ErrPeripheralUnresolved if none is registered.
func (p *PeripheralRegistry) dispatch(i *Instance, name string, operands []Operand) error {
	h, ok := p.handlers[name]
	if !ok {
		return errors.Wrapf(ErrPeripheralUnresolved, "peripheral %q", name)
	}
	return h(i, operands)
}
