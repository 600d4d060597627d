package models

// EntityKind selects the starter configuration template
type EntityKind string

const (
	EntityKindPersonal EntityKind = "personal"
	EntityKindBusiness EntityKind = "business"
)

// PayFrequency controls how budget items are spread across the two
// half-month periods of a ledger
type PayFrequency string

const (
	PayMonthly   PayFrequency = "monthly"
	PayBiweekly  PayFrequency = "biweekly"
	PayWeekly    PayFrequency = "weekly"
	PayIrregular PayFrequency = "irregular"
)

// EmploymentType is descriptive metadata on the entity configuration
type EmploymentType string

const (
	EmploymentEmployee    EmploymentType = "employee"
	EmploymentIndependent EmploymentType = "independent"
	EmploymentBusiness    EmploymentType = "business"
)

// Entity is a tenant: a household, business or shared fund. All documents
// (config, monthly ledgers, history) hang off an entity. Entities never
// reference each other's data.
type Entity struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	Name      string     `json:"name"`
	Kind      EntityKind `json:"kind"`
	CreatedAt string     `json:"created_at"`
}

// ValidKind reports whether k is a known template kind
func ValidKind(k EntityKind) bool {
	return k == EntityKindPersonal || k == EntityKindBusiness
}

// ValidFrequency reports whether f is a known pay frequency
func ValidFrequency(f PayFrequency) bool {
	switch f {
	case PayMonthly, PayBiweekly, PayWeekly, PayIrregular:
		return true
	}
	return false
}
