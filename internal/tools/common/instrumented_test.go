package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedToolHandler(t *testing.T) {
	t.Run("passes through the handler result", func(t *testing.T) {
		handler := InstrumentedToolHandler("test_tool", nil, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("ok"), nil
		})

		result, err := handler(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.IsError)
	})

	t.Run("passes through handler errors", func(t *testing.T) {
		wantErr := errors.New("boom")
		handler := InstrumentedToolHandler("test_tool", nil, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, wantErr
		})

		_, err := handler(context.Background(), mcp.CallToolRequest{})
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("tool error results are tolerated", func(t *testing.T) {
		handler := InstrumentedToolHandler("test_tool", nil, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("bad input"), nil
		})

		result, err := handler(context.Background(), mcp.CallToolRequest{})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.IsError)
	})
}
