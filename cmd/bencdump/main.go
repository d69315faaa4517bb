// bencdump - Bencode token-stream inspector
//
// Usage:
//
//	bencdump [-z] [file]
//
// Reads a stream of Bencode values and prints each one's token tree with
// nesting indentation plus its flattened buffer size. Use -z when the
// input is zlib-wrapped. If no file is given, reads from stdin.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/bencwire/bencode"
	"github.com/danmuck/bencwire/internal/logging"
	"github.com/danmuck/bencwire/stream"
)

func main() {
	logging.ConfigureRuntime()

	compressed := false
	fileArg := ""
	for _, arg := range os.Args[1:] {
		switch {
		case arg == "-z" || arg == "--zlib":
			compressed = true
		case arg == "-h" || arg == "--help":
			printUsage()
			return
		case !strings.HasPrefix(arg, "-") || arg == "-":
			fileArg = arg
		default:
			fmt.Fprintf(os.Stderr, "bencdump: unknown flag %s\n", arg)
			printUsage()
			os.Exit(1)
		}
	}

	var input io.Reader = os.Stdin
	if fileArg != "" && fileArg != "-" {
		f, err := os.Open(fileArg)
		if err != nil {
			fatal("open file: %v", err)
		}
		defer f.Close()
		input = f
	}

	values, err := dumpStream(os.Stdout, input, compressed)
	if err != nil {
		fatal("%v", err)
	}
	log.Info().Int("values", values).Msg("stream complete")
}

// dumpStream prints every value in the stream and returns how many were
// completed, rejected rounds included.
func dumpStream(w io.Writer, r io.Reader, compressed bool) (int, error) {
	reader, err := openReader(r, compressed)
	if err != nil {
		return 0, fmt.Errorf("open stream: %w", err)
	}

	values := 0
	for {
		n, err := reader.Next()
		if err == io.EOF {
			return values, nil
		}
		if err == io.ErrUnexpectedEOF {
			return values, fmt.Errorf("value %d: stream truncated mid-value", values+1)
		}
		if err != nil && n == 0 {
			log.Warn().Err(err).Msg("skipping undecodable byte")
			continue
		}
		values++
		if err != nil {
			fmt.Fprintf(w, "--- value %d: rejected (%v) ---\n", values, err)
			continue
		}
		fmt.Fprintf(w, "--- value %d (flattened %d bytes) ---\n", values, n)
		printTokens(w, reader.Decoder())
	}
}

func openReader(r io.Reader, compressed bool) (*stream.Reader, error) {
	if !compressed {
		return stream.NewReader(r, bencode.MaxBufferLen), nil
	}
	cr, err := stream.NewCompressedReader(r, bencode.MaxBufferLen)
	if err != nil {
		return nil, err
	}
	return cr.Reader, nil
}

// printTokens walks one decoded value and prints its token tree.
func printTokens(w io.Writer, d *bencode.Decoder) {
	depth := 1
	for {
		tok := d.NextToken()
		switch tok {
		case bencode.TokenEnd:
			return
		case bencode.TokenPop:
			depth--
			fmt.Fprintf(w, "%send\n", indent(depth))
		case bencode.TokenDictOpen:
			fmt.Fprintf(w, "%sdict\n", indent(depth))
			depth++
		case bencode.TokenListOpen:
			fmt.Fprintf(w, "%slist\n", indent(depth))
			depth++
		case bencode.TokenNumber:
			if v, err := d.AsNumber(); err == nil {
				fmt.Fprintf(w, "%s%d\n", indent(depth), v)
			} else {
				fmt.Fprintf(w, "%snumber(%q)\n", indent(depth), d.AsString())
			}
		case bencode.TokenString:
			fmt.Fprintf(w, "%s%q\n", indent(depth), d.AsString())
		}
	}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `bencdump - Bencode token-stream inspector

Usage:
  bencdump [-z] [file]

Options:
  -z, --zlib    Treat the input as a zlib-wrapped stream

Prints each value's token tree with nesting indentation plus its
flattened buffer size. If no file is given, reads from stdin.

Examples:
  printf 'd3:foo3:bare' | bencdump
  bencdump -z capture.benz
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "bencdump: "+format+"\n", args...)
	os.Exit(1)
}
