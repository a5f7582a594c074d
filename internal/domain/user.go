package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Role is the platform role a user holds.
type Role string

const (
	RoleUnset   Role = ""
	RoleMember  Role = "member"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

// Status tracks the trainer-application lifecycle.
type Status string

const (
	StatusUnset     Status = ""
	StatusRequested Status = "Requested"
	StatusVerified  Status = "Verified"
)

// Reserved user document keys.
const (
	FieldID        = "_id"
	FieldEmail     = "email"
	FieldRole      = "role"
	FieldStatus    = "status"
	FieldTimestamp = "timestamp"
)

// User is a platform user identified by email.
type User struct {
	ID        string
	Email     string
	Role      Role
	Status    Status
	Timestamp int64
	// Profile holds caller supplied fields that are stored untouched.
	Profile map[string]any
}

// Document flattens the user into the stored shape, profile fields first so
// that the typed fields win on key collisions.
func (u User) Document() Document {
	doc := make(Document, len(u.Profile)+5)
	for k, v := range u.Profile {
		doc[k] = v
	}
	if u.ID != "" {
		doc[FieldID] = u.ID
	}
	doc[FieldEmail] = u.Email
	if u.Role != RoleUnset {
		doc[FieldRole] = string(u.Role)
	}
	if u.Status != StatusUnset {
		doc[FieldStatus] = string(u.Status)
	}
	if u.Timestamp != 0 {
		doc[FieldTimestamp] = u.Timestamp
	}
	return doc
}

// MarshalJSON renders the flattened document.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Document())
}

// UserFromDocument reads a stored document back into a User.
func UserFromDocument(doc Document) (User, error) {
	email, _ := doc[FieldEmail].(string)
	if strings.TrimSpace(email) == "" {
		return User{}, fmt.Errorf("user document missing email")
	}

	user := User{
		ID:      idString(doc[FieldID]),
		Email:   email,
		Profile: make(map[string]any),
	}
	if role, ok := doc[FieldRole].(string); ok {
		user.Role = Role(role)
	}
	if status, ok := doc[FieldStatus].(string); ok {
		user.Status = Status(status)
	}
	user.Timestamp = toInt64(doc[FieldTimestamp])

	for k, v := range doc {
		switch k {
		case FieldID, FieldEmail, FieldRole, FieldStatus, FieldTimestamp:
			continue
		}
		user.Profile[k] = v
	}
	return user, nil
}

// Apply merges a $set style patch into the user.
func (u User) Apply(set Document) User {
	next := u
	next.Profile = make(map[string]any, len(u.Profile)+len(set))
	for k, v := range u.Profile {
		next.Profile[k] = v
	}
	for k, v := range set {
		switch k {
		case FieldID, FieldEmail:
		case FieldRole:
			role, _ := v.(string)
			next.Role = Role(role)
		case FieldStatus:
			status, _ := v.(string)
			next.Status = Status(status)
		case FieldTimestamp:
			next.Timestamp = toInt64(v)
		default:
			next.Profile[k] = v
		}
	}
	return next
}

// UserFilter narrows user listings.
type UserFilter struct {
	Status Status
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int64(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, _ := n.Float64()
			return int64(f)
		}
		return i
	default:
		return 0
	}
}
