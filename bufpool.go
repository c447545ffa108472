package seb

// Provides a buffer of allocated but unused read buffers.
var readBufPool chan []byte

func init() {
	readBufPool = make(chan []byte, 64)
}

// readBufAlloc allocates a scratch buffer of ReadChunkSize bytes.
func readBufAlloc() []byte {
	select {
	case b := <-readBufPool:
		return b
	default:
		return make([]byte, ReadChunkSize)
	}
}

// readBufFree releases a scratch buffer.
func readBufFree(b []byte) {
	if cap(b) >= ReadChunkSize {
		select {
		case readBufPool <- b[:ReadChunkSize]:
		default:
		}
	}
}
