package id

import (
	"fmt"
	"time"

	"github.com/fox-one/pkg/uuid"
	gouuid "github.com/gofrs/uuid"
)

// Namespace root of every derived trace id
const Namespace = "5c0d7bb1-3a38-4c4f-9a43-7b7f4b1f6b0e"

// TraceID deterministic id of the seq-th operation named op, run at block time at
func TraceID(op string, at time.Time, seq uint64) string {
	return uuid.Modify(Namespace, fmt.Sprintf("%s:%d:%d", op, at.UnixNano(), seq))
}

// GenTraceID new random trace id
func GenTraceID() string {
	return uuid.New()
}

// Valid reports whether s is a well formed, non nil uuid
func Valid(s string) bool {
	u, err := gouuid.FromString(s)
	return err == nil && u != gouuid.Nil
}
