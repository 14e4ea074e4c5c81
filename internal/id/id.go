package id

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// NewTransactionID returns a client-side transaction id like
// "TX-2025-01-15-1736946000123456789-0042". No concurrent multi-writer
// scenario exists per branch scope, so time plus a random suffix is enough
// to keep ids unique within a batch committed in one tick.
func NewTransactionID(d model.Date) string {
	return fmt.Sprintf("TX-%s-%d-%04d", d, time.Now().UnixNano(), rand.Intn(10000))
}

// NewReportID returns the deterministic natural-key id for a branch's
// monthly report, like "RPT-2025-01-anexo-norte".
func NewReportID(branchID string, p model.Period) string {
	return fmt.Sprintf("RPT-%s-%s", p.Key(), branchID)
}

// ParseReportID parses "RPT-2025-01-anexo-norte" back into its period and
// branch id.
func ParseReportID(s string) (model.Period, string, error) {
	rest, ok := strings.CutPrefix(s, "RPT-")
	if !ok {
		return model.Period{}, "", fmt.Errorf("invalid report ID format: %q", s)
	}

	parts := strings.SplitN(rest, "-", 3)
	if len(parts) != 3 {
		return model.Period{}, "", fmt.Errorf("invalid report ID format: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.Period{}, "", fmt.Errorf("invalid year in report ID %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.Period{}, "", fmt.Errorf("invalid month in report ID %q: %w", s, err)
	}

	return model.Period{Year: year, Month: month}, parts[2], nil
}
