// Package mixer blends separated stems back into a single track for
// export, applying per-stem gains before the sum.
package mixer
