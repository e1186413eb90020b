package bus

import (
	"crypto/rand"
	"fmt"
)

const digits = "0123456789"

// newCorrelationID produces a correlation id of the form
// "<mtype>-<10 random digits>", matching the original bus adapter's
// id scheme.
func newCorrelationID(mtype string) (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = digits[int(b)%len(digits)]
	}
	return fmt.Sprintf("%s-%s", mtype, buf), nil
}
