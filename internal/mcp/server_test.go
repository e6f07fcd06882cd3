package mcp

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/aptmatch/internal/config"
	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

func setupServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.UpsertListings(context.Background(), listing.SampleListings()); err != nil {
		t.Fatalf("failed to seed listings: %v", err)
	}

	tr := tracker.New(db, cfg, zerolog.Nop())
	t.Cleanup(tr.Wait)
	return New(db, tr, cfg, zerolog.Nop())
}

func call(t *testing.T, s *Server, method string, params interface{}) *jsonRPCResponse {
	t.Helper()

	req := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	return s.handleMessage(context.Background(), string(raw))
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) callToolResult {
	t.Helper()

	resp := call(t, s, "tools/call", map[string]interface{}{"name": name, "arguments": args})
	if resp.Error != nil {
		t.Fatalf("%s returned rpc error: %+v", name, resp.Error)
	}
	res, ok := resp.Result.(callToolResult)
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	return res
}

func TestProtocol(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name     string
		method   string
		wantNil  bool
		wantCode int
	}{
		{"initialize", "initialize", false, 0},
		{"initialized notification", "notifications/initialized", true, 0},
		{"tools list", "tools/list", false, 0},
		{"resources list", "resources/list", false, 0},
		{"unknown method", "bogus", false, codeMethodNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, s, tt.method, nil)
			if tt.wantNil {
				if resp != nil {
					t.Errorf("expected no response, got %+v", resp)
				}
				return
			}
			if resp == nil {
				t.Fatal("expected a response")
			}
			if tt.wantCode != 0 {
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Errorf("error = %+v, want code %d", resp.Error, tt.wantCode)
				}
				return
			}
			if resp.Error != nil {
				t.Errorf("unexpected error: %+v", resp.Error)
			}
		})
	}

	if resp := s.handleMessage(context.Background(), "{not json"); resp.Error == nil || resp.Error.Code != codeParseError {
		t.Errorf("expected parse error, got %+v", resp)
	}
}

func TestToolsRegistered(t *testing.T) {
	s := setupServer(t)

	for _, tool := range ToolDefinitions {
		if _, ok := s.handlers[tool.Name]; !ok {
			t.Errorf("tool %s has no handler", tool.Name)
		}
	}
	if len(s.handlers) != len(ToolDefinitions) {
		t.Errorf("%d handlers for %d tools", len(s.handlers), len(ToolDefinitions))
	}
}

func TestSwipeAndFeedTools(t *testing.T) {
	s := setupServer(t)

	res := callTool(t, s, "record_swipe", map[string]interface{}{"listing_id": "1", "liked": true})
	if res.IsError {
		t.Fatalf("record_swipe failed: %s", res.Content[0].Text)
	}

	tests := []struct {
		name    string
		tool    string
		args    map[string]interface{}
		wantErr bool
		want    string
	}{
		{"missing liked", "record_swipe", map[string]interface{}{"listing_id": "2"}, true, "liked"},
		{"unknown listing", "record_swipe", map[string]interface{}{"listing_id": "nope", "liked": false}, true, "not found"},
		{"bad session", "record_swipe", map[string]interface{}{"listing_id": "2", "liked": false, "session_id": "x"}, true, "session"},
		{"feed", "get_feed", map[string]interface{}{"limit": 3}, false, `"candidates": 9`},
		{"explain", "explain_listing", map[string]interface{}{"listing_id": "3"}, false, `"passes"`},
		{"suggest without model", "suggest_weights", nil, false, "No trained model"},
		{"train without data", "train_model", nil, true, "at least 5"},
		{"stats", "get_stats", nil, false, `"unswiped": 9`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			if res.IsError != tt.wantErr {
				t.Fatalf("isError = %v, want %v: %s", res.IsError, tt.wantErr, res.Content[0].Text)
			}
			if !strings.Contains(strings.ToLower(res.Content[0].Text), strings.ToLower(tt.want)) {
				t.Errorf("result missing %q:\n%s", tt.want, res.Content[0].Text)
			}
		})
	}

	if resp := call(t, s, "tools/call", map[string]interface{}{"name": "nope"}); resp.Error == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestResources(t *testing.T) {
	s := setupServer(t)

	for _, r := range ResourceDefinitions {
		t.Run(r.URI, func(t *testing.T) {
			resp := call(t, s, "resources/read", map[string]string{"uri": r.URI})
			if resp.Error != nil {
				t.Fatalf("read failed: %+v", resp.Error)
			}
			res := resp.Result.(readResourceResult)
			if len(res.Contents) != 1 || res.Contents[0].Text == "" {
				t.Errorf("empty resource %s", r.URI)
			}
		})
	}

	if resp := call(t, s, "resources/read", map[string]string{"uri": "aptmatch://nope"}); resp.Error == nil {
		t.Error("expected error for unknown resource")
	}
}

func TestStartStream(t *testing.T) {
	s := setupServer(t)

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	var out bytes.Buffer

	if err := s.WithIO(in, &out).Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 responses, got %d:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], `"protocolVersion":"2024-11-05"`) || !strings.Contains(lines[1], "get_feed") {
		t.Errorf("unexpected responses:\n%s", out.String())
	}
}
