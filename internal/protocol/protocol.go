// Package protocol implements the wire framing described in spec §4.5: a
// one-byte kind, an 8-byte big-endian length, and a payload of that many
// bytes. There is no ecosystem framing library in the retrieved pack that
// fits a bespoke length-prefixed protocol this small; encoding/binary is
// the idiomatic Go tool for exactly this job, the same way
// tetratelabs-wazero's bindgen host.go reaches for encoding/binary to
// decode fixed-width wire values.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/standardbeagle/searchd/internal/errors"
)

// Kind identifies a frame's variant. Request and Response reuse the same
// byte space; direction is inferred from the reader's role.
type Kind uint8

const (
	KindPing        Kind = 0 // request: no payload
	KindQuery       Kind = 1 // request: UTF-8 query string
	KindQueryFile   Kind = 2 // request: UTF-8 file path
	KindPong        Kind = 0 // response: no payload
	KindError       Kind = 1 // response: UTF-8 human-readable error
	KindQueryResult Kind = 2 // response: UTF-8 JSON array of {document,rank}
	KindFileResult  Kind = 3 // response: raw file bytes
)

// Frame is a decoded message: a kind plus an in-memory payload. The
// decoder never produces a streaming payload (§4.5: the server never
// receives a streaming payload), only the encoder does for FileResult.
type Frame struct {
	Kind    Kind
	Payload []byte
}

// WriteFrame encodes kind and payload onto w: one byte, an 8-byte
// big-endian length, then the payload verbatim.
func WriteFrame(w io.Writer, kind Kind, payload []byte) error {
	if err := writeHeader(w, kind, uint64(len(payload))); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return errors.NewProtocolError("write payload", err)
	}
	return nil
}

// WriteStreamingFrame encodes kind with a length taken from size, then
// copies exactly size bytes from r onto w without buffering the whole
// payload in memory. This is how FileResult is written: length equals
// the file's size at the moment it was opened.
func WriteStreamingFrame(w io.Writer, kind Kind, size int64, r io.Reader) error {
	if err := writeHeader(w, kind, uint64(size)); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	n, err := io.CopyN(w, r, size)
	if err != nil {
		return errors.NewProtocolError("stream payload", err)
	}
	if n != size {
		return errors.NewProtocolError("stream payload", fmt.Errorf("wrote %d of %d bytes", n, size))
	}
	return nil
}

func writeHeader(w io.Writer, kind Kind, length uint64) error {
	var header [9]byte
	header[0] = byte(kind)
	binary.BigEndian.PutUint64(header[1:], length)
	if _, err := w.Write(header[:]); err != nil {
		return errors.NewProtocolError("write header", err)
	}
	return nil
}

// ReadFrame reads one frame from r: a byte, an 8-byte big-endian length,
// then exactly that many payload bytes.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [9]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, errors.NewProtocolError("read header", err)
	}
	length := binary.BigEndian.Uint64(header[1:])

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, errors.NewProtocolError("read payload", err)
		}
	}
	return Frame{Kind: Kind(header[0]), Payload: payload}, nil
}

// Request is a decoded client request.
type Request struct {
	Kind    Kind
	Payload string // empty for Ping
}

// DecodeRequest reads and validates one request frame from r. String
// payloads (Query, QueryFile) are validated as UTF-8, failing with a
// ProtocolError on rejection, per §4.5's decoder contract. An unknown
// kind byte also fails with a ProtocolError (the spec's InvalidInput).
func DecodeRequest(r io.Reader) (Request, error) {
	f, err := ReadFrame(r)
	if err != nil {
		return Request{}, err
	}
	switch f.Kind {
	case KindPing:
		return Request{Kind: KindPing}, nil
	case KindQuery, KindQueryFile:
		if !utf8.Valid(f.Payload) {
			return Request{}, errors.NewProtocolError("decode request", fmt.Errorf("payload is not valid UTF-8"))
		}
		return Request{Kind: f.Kind, Payload: string(f.Payload)}, nil
	default:
		return Request{}, errors.NewProtocolError("decode request", fmt.Errorf("unknown request kind %d", f.Kind))
	}
}

// EncodeRequest writes req as a frame onto w.
func EncodeRequest(w io.Writer, req Request) error {
	switch req.Kind {
	case KindPing:
		return WriteFrame(w, KindPing, nil)
	case KindQuery, KindQueryFile:
		return WriteFrame(w, req.Kind, []byte(req.Payload))
	default:
		return errors.NewProtocolError("encode request", fmt.Errorf("unknown request kind %d", req.Kind))
	}
}

// DecodeResponse reads and validates one response frame from r, mainly
// for the client binary.
func DecodeResponse(r io.Reader) (Frame, error) {
	f, err := ReadFrame(r)
	if err != nil {
		return Frame{}, err
	}
	switch f.Kind {
	case KindPong, KindError, KindQueryResult, KindFileResult:
		return f, nil
	default:
		return Frame{}, errors.NewProtocolError("decode response", fmt.Errorf("unknown response kind %d", f.Kind))
	}
}

// WritePong writes a Pong response.
func WritePong(w io.Writer) error { return WriteFrame(w, KindPong, nil) }

// WriteError writes an Error response with a human-readable message.
func WriteError(w io.Writer, message string) error {
	return WriteFrame(w, KindError, []byte(message))
}

// WriteQueryResult writes a QueryResult response; payload is supplied
// pre-serialized (JSON) by the caller since protocol has no business
// knowing the index's Result shape.
func WriteQueryResult(w io.Writer, jsonPayload []byte) error {
	return WriteFrame(w, KindQueryResult, jsonPayload)
}

// WriteFileResult streams a FileResult response of size bytes from r.
func WriteFileResult(w io.Writer, size int64, r io.Reader) error {
	return WriteStreamingFrame(w, KindFileResult, size, r)
}
