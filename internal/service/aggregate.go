package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/google/uuid"
)

// aggregate sums the unit set with exact decimal arithmetic and produces one
// item draft per unit, snapshotting its monetary fields at this instant.
// Later changes to the source booking or payment never touch the items.
func aggregate(units []models.BillingUnit) (total int64, items []models.InvoiceItem) {
	amounts := make([]int64, 0, len(units))
	items = make([]models.InvoiceItem, 0, len(units))

	for _, u := range units {
		amounts = append(amounts, u.Amount)
		item := models.InvoiceItem{
			ID:         uuid.New(),
			Amount:     u.Amount,
			Commission: u.Commission,
			NetRevenue: u.NetRevenue,
		}
		unitID := u.ID
		switch u.Kind {
		case domain.UnitKindPayment:
			item.PaymentID = &unitID
		default:
			item.BookingID = &unitID
		}
		items = append(items, item)
	}

	return domain.SumMicros(amounts), items
}

// Suffix alphabet excludes ambiguous characters (I, L, O, U).
const numberSuffixAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
const numberSuffixLen = 6

// NumberGenerator produces invoice numbers of the form
// INV-{TENANT}-{YYYYMMDD}-{suffix}. The suffix only needs to be
// collision-resistant; a duplicate is rejected by the unique
// (tenant_id, invoice_number) constraint and the caller retries.
type NumberGenerator struct {
	now  func() time.Time
	intn func(n int) int
}

// NewNumberGenerator builds a generator on the real clock and math/rand.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{now: time.Now, intn: rand.Intn}
}

// WithClock overrides the clock, for tests.
func (g *NumberGenerator) WithClock(now func() time.Time) *NumberGenerator {
	if now != nil {
		g.now = now
	}
	return g
}

// WithRand overrides the random source, for tests.
func (g *NumberGenerator) WithRand(intn func(n int) int) *NumberGenerator {
	if intn != nil {
		g.intn = intn
	}
	return g
}

// Generate returns a fresh invoice number for the tenant slug.
func (g *NumberGenerator) Generate(tenantSlug string) string {
	suffix := make([]byte, numberSuffixLen)
	for i := range suffix {
		suffix[i] = numberSuffixAlphabet[g.intn(len(numberSuffixAlphabet))]
	}
	return fmt.Sprintf("INV-%s-%s-%s",
		strings.ToUpper(tenantSlug),
		g.now().UTC().Format("20060102"),
		string(suffix))
}
