package lifecycle

import "github.com/Ahammedsa/server-site-fitenss/internal/domain"

// Intent is the declared purpose of a lifecycle call.
type Intent int

const (
	// Register creates the user if absent and otherwise leaves it alone.
	Register Intent = iota + 1
	// RequestStatusChange writes the payload status onto a pending record.
	RequestStatusChange
	// PromoteToTrainer verifies a pending trainer application.
	PromoteToTrainer
)

func (i Intent) String() string {
	switch i {
	case Register:
		return "register"
	case RequestStatusChange:
		return "request_status_change"
	case PromoteToTrainer:
		return "promote_to_trainer"
	default:
		return "unknown"
	}
}

func (i Intent) valid() bool {
	return i >= Register && i <= PromoteToTrainer
}

// Outcome describes what Apply did to the stored record.
type Outcome string

const (
	Created   Outcome = "created"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
)

// Change names the transition taken on the Updated path.
type Change string

const (
	ChangeNone      Change = ""
	ChangePromoted  Change = "promoted"
	ChangeStatusSet Change = "status-set"
)

// StatusPolicy decides whether RequestStatusChange may overwrite a status
// that is no longer Requested.
type StatusPolicy int

const (
	// StatusOneDirectional never rewrites a settled status.
	StatusOneDirectional StatusPolicy = iota
	// StatusOverwrite writes the payload status whatever the stored value.
	StatusOverwrite
)

type options struct {
	createRole   domain.Role
	createStatus domain.Status
	policy       StatusPolicy
}

// Option tunes a single Apply call.
type Option func(*options)

// CreateAs forces role and status on the create path. Unset values leave
// the payload fields as supplied.
func CreateAs(role domain.Role, status domain.Status) Option {
	return func(o *options) {
		o.createRole = role
		o.createStatus = status
	}
}

// WithStatusPolicy selects how RequestStatusChange treats settled records.
func WithStatusPolicy(p StatusPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// Result is the outcome of one Apply call.
type Result struct {
	Outcome Outcome
	Change  Change
	// User is the record after the transition.
	User domain.User
	// Write is nil when nothing was written.
	Write *domain.WriteResult
}
