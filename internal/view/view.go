// Package view reinterprets allocator-provided byte regions as typed slices.
//
// Containers keep their storage in memory obtained from an alloc.Allocator,
// which hands out []byte. Values stored that way are invisible to the garbage
// collector, so only pointer-free types may be viewed; Check enforces this.
package view

import (
	"fmt"
	"reflect"
	"unsafe"
)

// PointerFree reports whether values of type t contain no Go pointers.
func PointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || PointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !PointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Check returns the size of T, panicking if T is zero-sized or holds pointers.
func Check[T any]() int {
	t := reflect.TypeFor[T]()
	if !PointerFree(t) {
		panic(fmt.Sprintf("view: %v contains pointers and cannot live in allocator memory", t))
	}
	if t.Size() == 0 {
		panic(fmt.Sprintf("view: %v is zero-sized", t))
	}
	return int(t.Size())
}

// Align returns the alignment of T.
func Align[T any]() int {
	var zero T
	return int(unsafe.Alignof(zero))
}

// Bytes returns the memory of *v as a byte slice.
func Bytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// Slice reinterprets b as a slice of T covering len(b)/sizeof(T) elements.
// b must be aligned for T.
func Slice[T any](b []byte) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(b) == 0 || size == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/size)
}

// Of reinterprets a slice of T as its underlying bytes.
func Of[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}
