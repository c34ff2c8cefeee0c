// Package redisstore is the document-backed metadata store. It implements
// the same repository interfaces as the postgres package; the backend is
// chosen once at startup and never branched on per call.
//
// Key patterns:
//   - token:{id}            hash, one field per column (hash so the upload
//     counter can be incremented atomically with HINCRBY)
//   - token:value:{value}   -> token id, the admission-time lookup index
//   - user:{id}:tokens      sorted set of token ids scored by created_at
//   - photo:{id}            JSON document
//   - photos:state:{state}  sorted set of photo ids scored by created_at
//   - token:{id}:photos     sorted set of photo ids scored by created_at
//   - sub:{user_id}         JSON document, the user's current subscription
//   - usage:{user_id}       hash {file_count, storage_bytes_used}
//   - user:{id}             JSON document
//   - user:email:{email}    -> user id
package redisstore

import (
	"time"

	goredis "github.com/redis/go-redis/v9"

	"lumo/internal/repository"
)

// New assembles a full repository.Store backed by one redis client.
func New(client *goredis.Client) repository.Store {
	return repository.Store{
		Tokens: &TokenRepository{client: client},
		Photos: &PhotoRepository{client: client},
		Plans:  &PlanRepository{client: client},
		Users:  &UserRepository{client: client},
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
