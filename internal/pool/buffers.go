// Package pool provides sized byte-buffer pools to keep the read loops
// in internal/transport from allocating a fresh buffer per datagram
// under load. Adapted from
// _examples/straticus1-dnsscienced/internal/pool/buffers.go: the
// dns.Msg-typed MessagePool is dropped (this server builds a fresh
// dnsmsg.Message per query for compression-dictionary reasons — see
// DESIGN.md), but the plain []byte pools it sat alongside are kept and
// resized to this codec's actual traffic shape.
package pool

import "sync"

const (
	// SmallBufferSize covers the common case: a UDP query small enough
	// that RFC 1035's 512-byte response limit was never going to bind.
	SmallBufferSize = 512
	// MediumBufferSize matches the fixed UDP read buffer spec.md §4.8
	// mandates (internal/transport.maxUDPDatagram).
	MediumBufferSize = 1024
	// LargeBufferSize covers the largest length-prefixed TCP message
	// RFC 1035 §4.2.2's 16-bit length field allows.
	LargeBufferSize = 65535
)

var smallBufferPool = sync.Pool{New: func() interface{} { b := make([]byte, SmallBufferSize); return &b }}
var mediumBufferPool = sync.Pool{New: func() interface{} { b := make([]byte, MediumBufferSize); return &b }}
var largeBufferPool = sync.Pool{New: func() interface{} { b := make([]byte, LargeBufferSize); return &b }}

// GetSmallBuffer returns a zero-length-extended 512-byte buffer.
func GetSmallBuffer() []byte {
	return (*smallBufferPool.Get().(*[]byte))[:SmallBufferSize]
}

// PutSmallBuffer returns buf to the pool. Undersized buffers are
// dropped rather than pooled.
func PutSmallBuffer(buf []byte) {
	if cap(buf) < SmallBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	smallBufferPool.Put(&buf)
}

// GetMediumBuffer returns a 1024-byte buffer.
func GetMediumBuffer() []byte {
	return (*mediumBufferPool.Get().(*[]byte))[:MediumBufferSize]
}

// PutMediumBuffer returns buf to the pool.
func PutMediumBuffer(buf []byte) {
	if cap(buf) < MediumBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	mediumBufferPool.Put(&buf)
}

// GetLargeBuffer returns a 65535-byte buffer.
func GetLargeBuffer() []byte {
	return (*largeBufferPool.Get().(*[]byte))[:LargeBufferSize]
}

// PutLargeBuffer returns buf to the pool.
func PutLargeBuffer(buf []byte) {
	if cap(buf) < LargeBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	largeBufferPool.Put(&buf)
}
