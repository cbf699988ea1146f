package postgres

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uuidArray encodes ids for a `$n::uuid[]` parameter.
func uuidArray(ids []uuid.UUID) interface{} {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.Array(out)
}
