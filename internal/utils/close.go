package utils

import "io"

// Close closes c and ignores any error. For best-effort cleanup in defer
// where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}
