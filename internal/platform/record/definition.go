package record

// ListScope selects which rows a list endpoint returns.
type ListScope int

const (
	// ListTenant returns every row of the tenant.
	ListTenant ListScope = iota
	// ListOwned returns only rows created by the caller.
	ListOwned
)

// ItemScope selects the access rule for single-record operations.
type ItemScope int

const (
	// ItemOwnerGated allows tenant admins and the creator.
	ItemOwnerGated ItemScope = iota
	// ItemTenantWide allows every member of the tenant.
	ItemTenantWide
)

// Reference is a payload field holding the id of another kind's record in
// the same tenant. The field is nulled when the referenced record is deleted.
type Reference[T any] struct {
	Field  string
	Target string
	Value  func(T) *int64
}

// Definition describes one resource kind.
type Definition[T any] struct {
	// Kind is the URL segment and the registry key.
	Kind  string
	Table string
	// Title is used in response messages, e.g. "Patient added successfully!".
	Title string

	List ListScope
	Item ItemScope
	// AllPath, when set, serves a tenant-wide listing regardless of List.
	AllPath string

	// Unique payload fields, enforced per tenant. Blank values are exempt.
	Unique []string
	// Filters maps list query parameters to payload fields.
	Filters    map[string]string
	References []Reference[T]

	// Defaults seeds a new payload before client input is applied.
	Defaults func(*T)
	// Derive fills computed fields that are blank after client input is
	// merged, on create and update alike.
	Derive func(*T)
	// Derived names the payload fields Derive computes. An update drops
	// their stored values unless the patch sets them, so totals follow
	// their inputs.
	Derived []string
}

// Ref builds a reference accessor for a pointer id field.
func Ref[T any](field, target string, get func(T) *int64) Reference[T] {
	return Reference[T]{Field: field, Target: target, Value: get}
}
