// Package stream adapts the bencode codec to io-style transports:
// pull-based value reading from an io.Reader, buffered encoding into an
// io.Writer, and zlib-wrapped variants of both for links where the
// ASCII-heavy wire format is worth compressing.
package stream
