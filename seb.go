// Package tunables.
package seb

const (
	// ReadChunkSize is the read size used when draining a body whose
	// length is not known in advance.
	ReadChunkSize = 8192
	// DefaultEventWindow is the number of events an EventPipe will
	// buffer before Submit reports overflow.
	DefaultEventWindow = 8
	// DefaultMultipartMemory is the maximum number of bytes of a
	// multipart form kept in memory when parsing.
	DefaultMultipartMemory = 10 << 20
)
