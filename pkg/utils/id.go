package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// GenerateUUID returns a random UUID string, used as the database id of every
// entity.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateOrderID builds the human-facing order number: the last six digits of
// the current unix-millis timestamp plus three random digits. Collisions are
// possible in theory; the orders table carries a unique constraint as backstop.
func GenerateOrderID() string {
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	base := millis[len(millis)-6:]
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		return base + "000"
	}
	return fmt.Sprintf("%s%03d", base, 100+n.Int64())
}

// GenerateBillNumber returns a random nine-digit bill number. Uniqueness is
// checked against the store by the caller.
func GenerateBillNumber() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(900000000))
	if err != nil {
		return time.Now().UnixNano()%900000000 + 100000000
	}
	return 100000000 + n.Int64()
}
