package libretro

import "unsafe"

// CString returns a NUL-terminated copy of s. The caller keeps the slice alive
// for as long as a core may hold the pointer.
func CString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// CStringPtr returns a pointer to the first byte of a NUL-terminated buffer.
func CStringPtr(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}

// GoString copies a NUL-terminated C string into Go memory. A nil pointer
// yields the empty string.
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
