// Package cursor provides sequential little-endian readers and writers for
// the primitive fields of TMS and locres files.
//
// Strings are stored with a signed 32-bit length prefix. A positive length
// is followed by that many bytes of NUL-terminated UTF-8; a negative length
// -n is followed by 2n bytes of NUL-terminated UTF-16LE; zero is the empty
// string. Writers only ever emit the UTF-8 form.
package cursor
