package datasource

import (
	"time"

	"github.com/google/uuid"
)

// barNamespace scopes the deterministic bar IDs written to parquet files.
var barNamespace = uuid.MustParse("6f1c1f0e-4b53-4c1e-9a55-1d7d9e3b2a10")

// barID derives a stable ID from symbol and bar time.
func barID(symbol string, t time.Time) string {
	return uuid.NewSHA1(barNamespace, []byte(symbol+"@"+t.UTC().Format(time.RFC3339Nano))).String()
}
