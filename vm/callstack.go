package vm

import "github.com/pkg/errors"

// CallStack is a bounded array of return instruction indices.
// Entries exist between a matching CALL and RET.
type CallStack struct {
	entries []int
	sp      int // number of entries currently on the stack
	limit   int
}

// NewCallStack builds an empty call stack with the given depth limit.
func NewCallStack(limit int) *CallStack {
	return &CallStack{entries: make([]int, limit), limit: limit}
}

// Depth returns the number of entries currently pushed.
func (c *CallStack) Depth() int { return c.sp }

// Limit returns the configured depth limit.
func (c *CallStack) Limit() int { return c.limit }

// Push pushes a return instruction index. Fails with ErrStackOverflow when
// the stack is already at its depth limit.
func (c *CallStack) Push(returnIndex int) error {
	if c.sp >= c.limit {
		return errors.Wrapf(ErrStackOverflow, "call stack depth %d", c.limit)
	}
	c.entries[c.sp] = returnIndex
	c.sp++
	return nil
}

// Pop pops and returns the most recently pushed return index. Fails with
// ErrStackUnderflow when the stack is empty.
func (c *CallStack) Pop() (int, error) {
	if c.sp == 0 {
		return 0, errors.Wrap(ErrStackUnderflow, "call stack is empty")
	}
	c.sp--
	return c.entries[c.sp], nil
}

// Entries returns the active entries, 0..sp, for snapshot capture. The
// returned slice is a copy; mutating it does not affect the call stack.
func (c *CallStack) Entries() []int {
	out := make([]int, c.sp)
	copy(out, c.entries[:c.sp])
	return out
}

// Restore replaces the active entries (used by snapshot restore). It fails
// if len(entries) exceeds the configured limit.
func (c *CallStack) Restore(entries []int) error {
	if len(entries) > c.limit {
		return errors.Wrapf(ErrStackOverflow, "snapshot call stack depth %d exceeds limit %d", len(entries), c.limit)
	}
	copy(c.entries, entries)
	c.sp = len(entries)
	return nil
}
