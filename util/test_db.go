package util

import (
	"fmt"
	"strings"
	"time"
)

// MemoryDSN returns a shared-cache in-memory SQLite DSN unique to name
func MemoryDSN(name string) string {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
}
