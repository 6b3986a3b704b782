package jobid

import (
	"fmt"
	"regexp"
	"strings"
)

// addrRegex parses "template" or "template[a=1,b=2]".
var addrRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[([^\]]+)\])?$`)

// Parse creates an Address by parsing its canonical string representation.
func Parse(raw string) (*Address, error) {
	if raw == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}

	matches := addrRegex.FindStringSubmatch(raw)
	if matches == nil {
		return nil, fmt.Errorf("invalid instance identifier format: %q", raw)
	}

	addr := &Address{Template: matches[1]}
	if matches[2] == "" {
		return addr, nil
	}

	for _, pair := range strings.Split(matches[2], ",") {
		axis, value, ok := strings.Cut(pair, "=")
		if !ok || axis == "" {
			return nil, fmt.Errorf("invalid binding segment %q in %q", pair, raw)
		}
		addr.Binding = append(addr.Binding, AxisValue{Axis: axis, Value: value})
	}
	return addr, nil
}
