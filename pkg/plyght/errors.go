package plyght

import (
	"errors"
	"syscall"
)

var (
	// ErrTransport means no socket could be allocated for the connection.
	ErrTransport = errors.New("plyght: unable to create socket")
	// ErrConnect means the server did not accept the connection.
	ErrConnect = errors.New("plyght: unable to connect to server")
	// ErrWrite means the transport broke mid-stream.
	ErrWrite = errors.New("plyght: write to server failed")
	// ErrMalformedToken is returned by ParseToken.
	ErrMalformedToken = errors.New("plyght: malformed token")
)

// isResourceExhausted reports whether a dial error came from socket
// allocation rather than from the peer.
func isResourceExhausted(err error) bool {
	return errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE) ||
		errors.Is(err, syscall.ENOBUFS) ||
		errors.Is(err, syscall.ENOMEM)
}
