package core

// ObjKey is the stable 64-bit identity of an object (row) within a table.
// Negative keys are null; bit 62, the highest bit below the sign bit, is
// reserved to mark unresolved (tombstone) keys.
type ObjKey int64

// NullKey is the null object key. It compares less than every valid key.
const NullKey ObjKey = -1

// unresolvedBit marks a key that refers to a tombstone.
const unresolvedBit = ObjKey(1) << 62

// IsNull reports whether the key is the null key.
func (k ObjKey) IsNull() bool { return k < 0 }

// IsUnresolved reports whether the key refers to a tombstone.
func (k ObjKey) IsUnresolved() bool { return k >= 0 && k&unresolvedBit != 0 }

// Unresolved returns the tombstone form of the key.
func (k ObjKey) Unresolved() ObjKey { return k | unresolvedBit }

// NotFound is the row index returned when a search finds no match.
const NotFound = -1
