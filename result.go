package ocm

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// irMarker is the fixed first field of an intermediate-result line. The
// wire format is "OCMIR:<name>:<payload>", split on the first two colons
// only, so payloads may themselves contain colons.
const irMarker = "OCMIR"

// Result wraps the captured output of one completed process execution.
//
// Stdout and Stderr are always available without parsing. Intermediate
// results are parsed lazily on first structured access and cached for the
// Result's lifetime.
type Result struct {
	Stdout string
	Stderr string

	irs   map[string]string
	order []string
}

// String returns a short stdout preview.
func (r *Result) String() string {
	preview := r.Stdout
	if len(preview) > 10 {
		preview = preview[:10]
	}
	return fmt.Sprintf("<Result: %s>", preview)
}

// populate scans stdout for intermediate-result lines. Later lines with
// the same name overwrite earlier ones but keep their first-seen position;
// anything not matching the marker format is ignored.
func (r *Result) populate() {
	if r.irs != nil {
		return
	}
	r.irs = make(map[string]string)
	for _, line := range strings.Split(r.Stdout, "\n") {
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 || parts[0] != irMarker {
			continue
		}
		if _, seen := r.irs[parts[1]]; !seen {
			r.order = append(r.order, parts[1])
		}
		r.irs[parts[1]] = parts[2]
	}
}

// Names returns the intermediate-result names in first-seen order.
func (r *Result) Names() []string {
	r.populate()
	return append([]string(nil), r.order...)
}

// Get returns the intermediate result stored under name. The payload is
// decoded as JSON when possible (integers stay integral); otherwise the
// raw text is returned unchanged. An undefined name is a COMMAND_ERROR.
func (r *Result) Get(name string) (any, error) {
	r.populate()
	raw, ok := r.irs[name]
	if !ok {
		return nil, commandError("intermediate result %s not found", name)
	}
	return decodePayload(raw), nil
}

// decodePayload opportunistically parses a payload as JSON. Trailing junk
// after a valid JSON value disqualifies the parse, as does any decode
// error; the raw text wins in both cases.
func decodePayload(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	if _, err := dec.Token(); err != io.EOF {
		return raw
	}
	return normalizeJSON(v)
}

// normalizeJSON collapses json.Number values to int64 when integral and
// float64 otherwise, recursively through arrays and objects.
func normalizeJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = normalizeJSON(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalizeJSON(x[k])
		}
		return x
	default:
		return v
	}
}
