package bank

// =============================================================================
// CUSTOMER - Flattened tagged variant (individual / business / admin)
// =============================================================================

// Customer is a bank customer or administrator. The original deep
// User -> Customer -> Individual/Business hierarchy is flattened into
// one struct with a Role tag and role-specific payload fields; shared
// behavior lives here, role checks are a switch on Role.
type Customer struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, supplied at construction
	Role         CustomerRole
	LegalName    string
	Email        string
	Phone        string
	LockedOut    bool

	// Individual payload
	TaxID string

	// Business payload
	BusinessName string
	VATNumber    string
}

// NewIndividual creates an individual customer. The password hash is a
// plain parameter: hashing happens at the API boundary, and persistence
// deserializes through this constructor rather than through any
// privileged field access.
func NewIndividual(id, username, passwordHash, legalName, email, phone, taxID string) *Customer {
	return &Customer{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleIndividual,
		LegalName:    legalName,
		Email:        email,
		Phone:        phone,
		TaxID:        taxID,
	}
}

// NewBusiness creates a business customer.
func NewBusiness(id, username, passwordHash, businessName, email, phone, vatNumber string) *Customer {
	return &Customer{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleBusiness,
		LegalName:    businessName,
		Email:        email,
		Phone:        phone,
		BusinessName: businessName,
		VATNumber:    vatNumber,
	}
}

// NewAdmin creates an administrator. Admins own no accounts, bills or
// standing orders.
func NewAdmin(id, username, passwordHash, phone string) *Customer {
	return &Customer{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
		Phone:        phone,
	}
}

// IsCustomer reports whether c can own accounts and payment
// instruments (admins cannot).
func (c *Customer) IsCustomer() bool {
	return c.Role == RoleIndividual || c.Role == RoleBusiness
}
