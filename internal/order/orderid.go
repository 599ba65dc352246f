package order

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewOrderID builds an order identifier from the commit timestamp, the user
// id and a random suffix. Timestamp plus user id alone collides when one
// user commits twice within a second or the clock steps backwards, so the
// suffix carries 48 random bits. Insert-time collisions are still treated as
// retryable by the engine.
func NewOrderID(now time.Time, userID int64) string {
	u := uuid.New()
	return now.Format("20060102150405") + strconv.FormatInt(userID, 10) + hex.EncodeToString(u[:6])
}
