package app

import (
	"fmt"
	"strings"

	"linefb/hal"
)

// logf writes msg followed by key=value pairs as one line.
func logf(l hal.Logger, msg string, kv ...any) {
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	if len(kv)%2 == 1 {
		fmt.Fprintf(&b, " %v", kv[len(kv)-1])
	}
	l.WriteLineString(b.String())
}
