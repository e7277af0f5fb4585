package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/pkg/adapters/memory"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng, err := rewind.New()
	require.NoError(t, err)
	return NewServer(rewind.NewService(eng, session.NewManager(memory.NewStore())))
}

func TestServer_DispatchUndoRedo(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	resp, err := s.handleDispatch(ctx, req, DispatchArgs{SessionID: "m", Type: "add", Payload: `{"amount": 4}`})
	require.NoError(t, err)
	assert.EqualValues(t, 4, resp.View.State["counter"])
	assert.Equal(t, 2, resp.View.Length, "session is created on first dispatch")

	resp, err = s.control(domain.ActionUndo)(ctx, req, SessionArgs{SessionID: "m"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, resp.View.State["counter"])
	assert.True(t, resp.View.CanRedo)

	resp, err = s.control(domain.ActionRedo)(ctx, req, SessionArgs{SessionID: "m"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, resp.View.State["counter"])

	resp, err = s.handleView(ctx, req, SessionArgs{SessionID: "m"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.View.Cursor)
}

func TestServer_DispatchErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Type: "add"})
	assert.ErrorIs(t, err, domain.ErrEmptySessionID)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{SessionID: "m", Type: "add", Payload: "[1]"})
	assert.ErrorContains(t, err, "payload must be a JSON object")

	_, err = s.handleView(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestServer_List(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		_, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{SessionID: id, Type: "clear"})
		require.NoError(t, err)
	}

	resp, err := s.handleList(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, resp.Sessions)
	assert.NotNil(t, s.MCPServer())
}
