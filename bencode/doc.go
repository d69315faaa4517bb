// Package bencode implements an incremental Bencode codec built for
// fixed-memory operation.
//
// Wire grammar, byte-exact:
//
//	integer    = "i" ["-"] digits "e"        ; i42e, i-7e, i0e
//	bytestring = digits ":" raw-bytes        ; 4:spam
//	list       = "l" *value "e"              ; l4:spami42ee
//	dictionary = "d" *(bytestring value) "e" ; d3:key5:valuee
//
// The Decoder consumes the stream one byte per Process call and flattens
// exactly one complete top-level value into a fixed-capacity buffer as a
// token stream: string tokens store their length in the marker byte itself
// (0..250), and the structural markers occupy the high end of the byte
// range so payload lengths and structure coexist in the same byte space.
// Nothing is heap-allocated after construction, so a single Decoder can
// sit behind a serial line or socket indefinitely.
//
// After Process signals completion the caller walks the flattened value
// with NextToken, AsString, and AsNumber. The buffer stays stable until
// the next value begins arriving, so multiple walk passes are fine.
//
// The Encoder is the write-side counterpart: push calls emit wire bytes
// immediately through an io.ByteWriter sink. It keeps no nesting state;
// pairing StartList/StartDict with the matching end call is the caller's
// job.
//
// Dictionary handling is deliberately thin: encounter order is preserved
// and no key sorting or uniqueness checks are performed at this layer.
package bencode
