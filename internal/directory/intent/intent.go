// Package intent defines the queue message describing a single desired
// mutation of the directory. An intent is immutable once published: it
// carries the full target state needed to apply the change, so the consumer
// never re-reads the original request and redelivery reproduces the exact
// same store state.
package intent

// Op is the closed set of mutation kinds. The consumer dispatches on it
// exhaustively, with unknown values handled by an explicit catch-all.
type Op string

const (
	OpCreateOrganization Op = "createOrganization"
	OpUpdateOrganization Op = "updateOrganization"
	OpCreateUser         Op = "createUser"
	OpUpdateUser         Op = "updateUser"
)

// Intent is the queue payload. Optional fields are pointers so update
// intents carry only the fields to change; create intents carry everything.
// Timestamps are RFC 3339 strings stamped by the producer — the consumer
// writes them as-is and never consults its own clock.
type Intent struct {
	Op          Op      `json:"operation"`
	OrgID       string  `json:"orgId"`
	UserID      string  `json:"userId,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Email       *string `json:"email,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt"`
}

// CreateOrganization builds the intent for a brand new organization.
func CreateOrganization(orgID, name, description, now string) Intent {
	return Intent{
		Op:          OpCreateOrganization,
		OrgID:       orgID,
		Name:        &name,
		Description: &description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateOrganization builds a partial update intent. Nil fields are left
// untouched at apply time.
func UpdateOrganization(orgID string, name, description *string, updatedAt string) Intent {
	return Intent{
		Op:          OpUpdateOrganization,
		OrgID:       orgID,
		Name:        name,
		Description: description,
		UpdatedAt:   updatedAt,
	}
}

// CreateUser builds the intent for a new user within an organization.
func CreateUser(orgID, userID, name, email, now string) Intent {
	return Intent{
		Op:        OpCreateUser,
		OrgID:     orgID,
		UserID:    userID,
		Name:      &name,
		Email:     &email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateUser builds a partial update intent for an existing user.
func UpdateUser(orgID, userID string, name, email *string, updatedAt string) Intent {
	return Intent{
		Op:        OpUpdateUser,
		OrgID:     orgID,
		UserID:    userID,
		Name:      name,
		Email:     email,
		UpdatedAt: updatedAt,
	}
}

// EntityID returns the identity key the intent is applied under.
func (in Intent) EntityID() string {
	switch in.Op {
	case OpCreateUser, OpUpdateUser:
		return in.UserID
	default:
		return in.OrgID
	}
}
