package protocol

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property 7: round-tripping a request through Encode then Decode yields
// the original values back.
func TestRequest_RoundTrip(t *testing.T) {
	cases := []Request{
		{Kind: KindPing},
		{Kind: KindQuery, Payload: "アニャ likes peanuts"},
		{Kind: KindQueryFile, Payload: "/tmp/some/path.txt"},
	}
	for _, want := range cases {
		var buf bytes.Buffer
		require.NoError(t, EncodeRequest(&buf, want))

		got, err := DecodeRequest(&buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

// Property 8: frame discipline — the decoder reads exactly length bytes,
// no more and no less, leaving any following frame intact.
func TestReadFrame_StopsExactlyAtLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, KindQuery, []byte("hello")))
	require.NoError(t, WriteFrame(&buf, KindPing, nil))

	first, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, KindQuery, first.Kind)
	assert.Equal(t, "hello", string(first.Payload))

	second, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, KindPing, second.Kind)
	assert.Empty(t, second.Payload)
}

// S4: Ping encodes to exactly nine zero bytes, and Pong is identical on
// the wire.
func TestPing_EncodesToNineZeroBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeRequest(&buf, Request{Kind: KindPing}))
	assert.Equal(t, make([]byte, 9), buf.Bytes())

	var pongBuf bytes.Buffer
	require.NoError(t, WritePong(&pongBuf))
	assert.Equal(t, buf.Bytes(), pongBuf.Bytes())
}

func TestDecodeRequest_UnknownKindFails(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Kind(99), nil))
	_, err := DecodeRequest(&buf)
	assert.Error(t, err)
}

func TestDecodeRequest_InvalidUTF8PayloadFails(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, KindQuery, []byte{0xFF, 0xFE}))
	_, err := DecodeRequest(&buf)
	assert.Error(t, err)
}

func TestWriteStreamingFrame_CopiesExactSize(t *testing.T) {
	content := "the quick brown fox"
	var buf bytes.Buffer
	require.NoError(t, WriteFileResult(&buf, int64(len(content)), strings.NewReader(content)))

	f, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, KindFileResult, f.Kind)
	assert.Equal(t, content, string(f.Payload))
}

func TestWriteError_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteError(&buf, "file does not exist"))

	f, err := DecodeResponse(&buf)
	require.NoError(t, err)
	assert.Equal(t, KindError, f.Kind)
	assert.Equal(t, "file does not exist", string(f.Payload))
}

func TestReadFrame_TruncatedHeaderFails(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0, 0, 0}))
	assert.Error(t, err)
}

func TestReadFrame_TruncatedPayloadFails(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, KindQuery, []byte("hello world")))
	truncated := buf.Bytes()[:buf.Len()-3]
	_, err := ReadFrame(bytes.NewReader(truncated))
	assert.Error(t, err)
}
