package abtest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SentinelUserID identifies callers that have no persistent storage.
const SentinelUserID = "server"

// Keys of the persisted state.
const (
	KeyUserID   = "ab_user_id"
	KeyVariants = "ab_variants"
	KeyEvents   = "ab_events"
)

// NewUserID returns a fresh opaque identifier of the form
// user_<unixMillis>_<9 random characters>.
func NewUserID(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("user_%d_%s", now.UnixMilli(), token[:9])
}
