package rpclog

import (
	"context"
	"errors"
	"testing"
)

func TestBinderExportsPropagateErrors(t *testing.T) {
	if _, err := NewBinder(nil); !errors.Is(err, ErrConfigRequired) {
		t.Fatalf("expected config required error, got %v", err)
	}

	if _, err := NewBinderFromRouter(nil); !errors.Is(err, ErrRouterRequired) {
		t.Fatalf("expected router required error, got %v", err)
	}
}

func TestPipelineExports(t *testing.T) {
	var got []string
	cfg := &Config{
		Entries: []Entry{{
			Name:  "memory",
			Level: LevelInfo,
			Transport: func(scope, message string, fields Fields) {
				got = append(got, message)
			},
		}},
	}

	binder, err := NewBinder(cfg)
	if err != nil {
		t.Fatalf("unexpected error creating binder: %v", err)
	}

	logger, _ := binder.Bind("lib.test")
	logger.Info("hello", nil)
	logger.Error("dropped", nil)

	if len(got) != 1 || got[0] != "[INFO] [lib.test] hello" {
		t.Fatalf("expected single routed info line, got %#v", got)
	}
}

func TestMiddlewareExports(t *testing.T) {
	mw, err := CombinedMiddleware(&MiddlewareConfig{EnableLogging: true})
	if err != nil {
		t.Fatalf("unexpected error building middleware: %v", err)
	}

	handler := mw(func(ctx context.Context, call *Call) (any, error) {
		return "ok", nil
	})

	out, err := handler(context.Background(), &Call{Path: "ping", Type: CallTypeQuery})
	if err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	if out != "ok" {
		t.Fatalf("expected ok, got %v", out)
	}
}

func TestEncodingExportAliases(t *testing.T) {
	payload := map[string]string{"hello": "world"}
	if _, err := Marshal(payload); err != nil {
		t.Fatalf("marshal alias failed: %v", err)
	}
	if _, err := MarshalIndent(payload, "", "  "); err != nil {
		t.Fatalf("marshal indent alias failed: %v", err)
	}
	if err := Unmarshal([]byte(`{"hello":"world"}`), &payload); err != nil {
		t.Fatalf("unmarshal alias failed: %v", err)
	}
}

func TestErrorCategoryConstants(t *testing.T) {
	if CategoryGeneric.String() != "generic" {
		t.Fatalf("expected CategoryGeneric to be 'generic', got %q", CategoryGeneric.String())
	}
	if CategoryValidation.String() != "validation" {
		t.Fatalf("expected CategoryValidation to be 'validation', got %q", CategoryValidation.String())
	}
	if CategoryAuth.String() != "auth" {
		t.Fatalf("expected CategoryAuth to be 'auth', got %q", CategoryAuth.String())
	}
}

func TestFallbackFormatExport(t *testing.T) {
	if got := FallbackFormat(LevelWarn, "scope", "msg"); got != "[WARN] [scope] msg" {
		t.Fatalf("unexpected fallback format: %q", got)
	}
}

func TestNewRequestIDExport(t *testing.T) {
	if id := NewRequestID(); len(id) != 26 {
		t.Fatalf("expected 26-char ULID, got %q", id)
	}
}
