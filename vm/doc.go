// Package vm implements the PanSpark virtual machine: a tick-stepped,
// register-based VM for a small assembly-like scripting language used to
// bridge factory/automation scripts to host-provided peripherals.
//
// A VM is constructed with three limits (register count, call-stack depth,
// and heap byte budget) via New and a set of Option values. Source is
// turned into an instruction program by the sibling asm package; the
// Instance only executes an already-compiled Program.
//
// Execution is driven by repeatedly calling Step (or RunFast for
// non-interactive runs): each call executes at most one instruction and
// returns control to the caller, so a host tick loop can interleave VM
// execution with anything else it needs to do. State is fully
// pause/resumable via Snapshot and Restore; peripheral handlers are not
// part of a snapshot and must be re-registered by the caller before
// stepping a restored Instance.
package vm
