// Package mcpserver exposes light control as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/butterflysky/elgato-keylight/internal/control"
	"github.com/butterflysky/elgato-keylight/internal/effects"
	kerrors "github.com/butterflysky/elgato-keylight/internal/errors"
	"github.com/butterflysky/elgato-keylight/pkg/keylight"
)

const (
	// Name is the server name announced to clients.
	Name = "elgato-keylight"

	instructions = "Control Elgato Key Lights: brightness, temperature, presets, effects and moods"
)

// Server wraps an MCP server whose tools drive a control.Service.
type Server struct {
	svc    control.Service
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New creates the server and registers every tool.
func New(svc control.Service, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc: svc,
		mcp: server.NewMCPServer(Name, version,
			server.WithToolCapabilities(false),
			server.WithInstructions(instructions),
			server.WithRecovery(),
		),
		logger: logger,
	}
	for _, t := range s.tools() {
		s.mcp.AddTool(t.tool, s.logged(t.tool.Name, t.handler))
	}
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves the protocol on stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) logged(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.logger.Debug("tool call", "tool", name, "arguments", req.GetArguments())
		res, err := h(ctx, req)
		if res != nil && res.IsError {
			s.logger.Info("tool call failed", "tool", name)
		}
		return res, err
	}
}

// lightNames reads the optional light_names argument.
func lightNames(req mcp.CallToolRequest) []string {
	return req.GetStringSlice("light_names", nil)
}

// toolError renders err as a tool error result. Unknown presets, moods and
// effects list the available names.
func (s *Server) toolError(ctx context.Context, err error, name string) *mcp.CallToolResult {
	switch {
	case kerrors.IsUnknownPreset(err):
		presets, perr := s.svc.Presets(ctx)
		if perr == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Unknown preset: %q. Available: %s", name, strings.Join(presets.Names(), ", ")))
		}
	case kerrors.IsUnknownMood(err):
		return mcp.NewToolResultError(fmt.Sprintf("Unknown mood: %q. Available: %s", name, strings.Join(s.svc.Moods().Names(), ", ")))
	case kerrors.IsUnknownEffect(err):
		return mcp.NewToolResultError(fmt.Sprintf("Unknown effect: %q. Available: %s", name, strings.Join(s.svc.Effects(), ", ")))
	}
	return mcp.NewToolResultError(err.Error())
}

// lightResults reports msg, followed by one line per failed light. It is an
// error result only when every light failed.
func lightResults(results []control.LightResult, msg string) *mcp.CallToolResult {
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: error: %v", r.Light.Name, r.Err))
		}
	}
	if len(failed) == 0 {
		return mcp.NewToolResultText(msg)
	}
	if len(failed) == len(results) {
		return mcp.NewToolResultError(strings.Join(failed, "\n"))
	}
	return mcp.NewToolResultText(msg + "\n" + strings.Join(failed, "\n"))
}

// effectResult reports msg and any light that could not be restored.
func effectResult(res *effects.Result, msg string) *mcp.CallToolResult {
	if failed := res.Restore.Failed(); len(failed) > 0 {
		msg += fmt.Sprintf("\nCould not restore: %s", strings.Join(failed, ", "))
	}
	return mcp.NewToolResultText(msg)
}

func stateLine(name string, st keylight.LightState) string {
	power := "off"
	if st.On {
		power = "on"
	}
	return fmt.Sprintf("%s: %s, brightness=%d%%, temp=%d (~%dK)", name, power, st.Brightness, st.Temperature, st.Kelvin())
}
