// Package format provides ready-made formatters for pipeline entries.
package format

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/rpclog/rpclog/internal/runtime/jsoncodec"
	"github.com/rpclog/rpclog/pipeline"
)

// JSON returns a formatter rendering each call as a single JSON object with
// scope, message, timestamp and the structured fields inlined.
func JSON() pipeline.Formatter {
	return func(scope, message string, fields pipeline.Fields) string {
		payload := make(map[string]any, len(fields)+3)
		for k, v := range fields {
			payload[k] = v
		}
		payload["scope"] = scope
		payload["message"] = message
		payload["time"] = time.Now().UTC().Format(time.RFC3339Nano)

		out, err := jsoncodec.Marshal(payload)
		if err != nil {
			return fmt.Sprintf(`{"scope":%q,"message":%q}`, scope, message)
		}
		return string(out)
	}
}

// KeyValue returns a formatter producing logfmt-style output, with fields
// sorted by key for stable lines.
func KeyValue() pipeline.Formatter {
	return func(scope, message string, fields pipeline.Fields) string {
		var b strings.Builder
		fmt.Fprintf(&b, "scope=%s msg=%q", scope, message)

		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
		return b.String()
	}
}

// Template parses a text/template and returns a formatter executing it with
// .Scope, .Message and .Fields. The helpers ToUpper, ToLower and TrimSpace
// are available inside the template.
func Template(tmpl string) (pipeline.Formatter, error) {
	funcMap := template.FuncMap{
		"ToUpper":   strings.ToUpper,
		"ToLower":   strings.ToLower,
		"TrimSpace": strings.TrimSpace,
	}

	parsed, err := template.New("entry").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	return func(scope, message string, fields pipeline.Fields) string {
		data := map[string]any{
			"Scope":   scope,
			"Message": message,
			"Fields":  fields,
		}

		var buf bytes.Buffer
		if err := parsed.Execute(&buf, data); err != nil {
			// Fall back to a basic line rather than dropping the entry.
			return fmt.Sprintf("[%s] %s", scope, message)
		}
		return buf.String()
	}, nil
}
