package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newOrderNumber builds a public order reference. The customer prefix makes
// numbers traceable in support tooling, the millisecond clock plus random
// suffix keeps collisions rare; the unique DB index catches the rest.
func newOrderNumber(customerID uuid.UUID) string {
	prefix := strings.ToUpper(strings.ReplaceAll(customerID.String(), "-", "")[:8])
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("ORD-%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}
