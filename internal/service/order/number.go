package order

import (
	"crypto/rand"
	"fmt"
	"time"
)

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newOrderNumber builds the public identifier ORD-YYYYMMDD-XXXXX with a
// 5-character uppercase base36 suffix. ~60M combinations per day; the unique
// index on orders.order_number catches the rare collision and checkout
// regenerates.
func newOrderNumber(now time.Time) string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), buf)
}
