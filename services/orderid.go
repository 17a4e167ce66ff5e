package services

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	orderIDPrefix       = "RES-"
	orderIDSuffixLength = 9
)

// OrderIDGenerator mints reservation order ids.
type OrderIDGenerator func() string

// NewOrderID returns RES-<unix millis>-<9 upper-case base36 chars>. Uniqueness is
// probabilistic; the unique index on order_id catches the rare collision.
func NewOrderID() string {
	u := uuid.New()
	suffix := strings.ToUpper(new(big.Int).SetBytes(u[:]).Text(36))
	if len(suffix) < orderIDSuffixLength {
		suffix = strings.Repeat("0", orderIDSuffixLength-len(suffix)) + suffix
	}
	return fmt.Sprintf("%s%d-%s", orderIDPrefix, time.Now().UnixMilli(), suffix[len(suffix)-orderIDSuffixLength:])
}
