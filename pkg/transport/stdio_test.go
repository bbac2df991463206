package transport

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipkit/imgflip-mcp/pkg/protocol"
)

func TestReadRequestSingleLine(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}` + "\n")
	tr := NewTransport(in, io.Discard)

	req, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "tools/list", req.Method)
}

func TestReadRequestPrettyPrinted(t *testing.T) {
	in := strings.NewReader(`{
	"jsonrpc": "2.0",
	"id": 7,
	"method": "tools/call",
	"params": {
		"name": "imgflip_search_memes",
		"arguments": {"query": "drake"}
	}
}`)
	tr := NewTransport(in, io.Discard)

	req, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "tools/call", req.Method)
	assert.Contains(t, string(req.Params), "imgflip_search_memes")
}

func TestReadRequestBracesInsideStrings(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc": "2.0", "id": 2, "method": "tools/call", "params": {"name": "imgflip_create_meme", "arguments": {"template_id": "1", "text_boxes": ["when you see {}", "in \"quoted\" json"]}}}`)
	tr := NewTransport(in, io.Discard)

	req, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "tools/call", req.Method)
}

func TestReadRequestSequential(t *testing.T) {
	in := strings.NewReader(
		`{"jsonrpc": "2.0", "id": 1, "method": "initialize"}` + "\n" +
			`{"jsonrpc": "2.0", "method": "notifications/initialized"}` + "\n")
	tr := NewTransport(in, io.Discard)

	first, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "initialize", first.Method)

	second, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "notifications/initialized", second.Method)

	_, err = tr.ReadRequest()
	assert.Equal(t, io.EOF, err)
}

func TestWriteResponseOnePerLine(t *testing.T) {
	var out bytes.Buffer
	tr := NewTransport(strings.NewReader(""), &out)

	resp, err := protocol.NewJsonRpcResponse(map[string]any{"ok": true}, 1)
	require.NoError(t, err)
	require.NoError(t, tr.WriteResponse(resp))

	written := out.String()
	assert.True(t, strings.HasSuffix(written, "\n"))
	assert.Contains(t, written, `"jsonrpc":"2.0"`)
	assert.Contains(t, written, `"ok":true`)
}
