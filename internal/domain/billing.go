package domain

// BillingType tags how a booking's money was collected. An invoice is
// homogeneous: every unit on it carries the same billing type.
type BillingType string

const (
	BillingTypeHotelCollect BillingType = "HOTEL_COLLECT"
	BillingTypeOTACollect   BillingType = "OTA_COLLECT"
)

// Valid reports whether the billing type is one of the known values.
func (b BillingType) Valid() bool {
	switch b {
	case BillingTypeHotelCollect, BillingTypeOTACollect:
		return true
	}
	return false
}

// UnitKind distinguishes the two billable record types.
type UnitKind string

const (
	UnitKindBooking UnitKind = "booking"
	UnitKindPayment UnitKind = "payment"
)

func (k UnitKind) Valid() bool {
	return k == UnitKindBooking || k == UnitKindPayment
}

// Settlement statuses for payment units.
const (
	SettlementPaid   = "PAID"
	SettlementUnpaid = "UNPAID"
)

// Actor roles. Partner is the most restrictive role: a partner may only bill
// units whose owning property belongs to them.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RolePartner = "partner"
)

// InvoiceReadRoles are the roles permitted to call list/get.
var InvoiceReadRoles = map[string]struct{}{
	RoleAdmin:   {},
	RoleManager: {},
	RolePartner: {},
}
