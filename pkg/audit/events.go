package audit

import (
	"fmt"
	"strconv"
)

// AuthenticateEvent records a login attempt.
type AuthenticateEvent struct {
	Email        string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated", e.Email)
	}
	msg := fmt.Sprintf("%s failed to authenticate", e.Email)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.Email,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
	return sd
}

// SecretEvent records a gated operation on a single secret.
type SecretEvent struct {
	UserID       int64
	ClientIP     string
	SecretID     int64
	Operation    string // "fetch", "update", "delete"
	Success      bool
	ErrorMessage string
}

func (e SecretEvent) MessageID() string {
	return e.Operation
}

func (e SecretEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("user %d %sed secret %d", e.UserID, e.Operation, e.SecretID)
	}
	msg := fmt.Sprintf("user %d tried to %s secret %d", e.UserID, e.Operation, e.SecretID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e SecretEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e SecretEvent) Facility() int {
	return FacilityAuthPriv
}

func (e SecretEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": strconv.FormatInt(e.UserID, 10),
		},
		SDIDSubject: {
			"secret": strconv.FormatInt(e.SecretID, 10),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
		},
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}

// GrantEvent records a grant ledger mutation.
type GrantEvent struct {
	OwnerID      int64
	ClientIP     string
	SecretID     int64
	TargetType   string // "user" or "group"
	TargetID     int64
	Level        string
	Operation    string // "grant", "revoke", "update"
	Success      bool
	ErrorMessage string
}

func (e GrantEvent) MessageID() string {
	return "grant"
}

func (e GrantEvent) Message() string {
	target := fmt.Sprintf("%s %d", e.TargetType, e.TargetID)
	if e.Success {
		switch e.Operation {
		case "revoke":
			return fmt.Sprintf("user %d revoked access to secret %d from %s", e.OwnerID, e.SecretID, target)
		case "update":
			return fmt.Sprintf("user %d changed access to secret %d for %s to %s", e.OwnerID, e.SecretID, target, e.Level)
		default:
			return fmt.Sprintf("user %d granted %s on secret %d to %s", e.OwnerID, e.Level, e.SecretID, target)
		}
	}
	msg := fmt.Sprintf("user %d failed to %s access to secret %d for %s", e.OwnerID, e.Operation, e.SecretID, target)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e GrantEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e GrantEvent) Facility() int {
	return FacilityAuthPriv
}

func (e GrantEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": strconv.FormatInt(e.OwnerID, 10),
		},
		SDIDSubject: {
			"secret": strconv.FormatInt(e.SecretID, 10),
			"target": fmt.Sprintf("%s:%d", e.TargetType, e.TargetID),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
		},
	}
	if e.Level != "" {
		sd[SDIDSubject]["level"] = e.Level
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}

// MemberEvent records a group membership mutation.
type MemberEvent struct {
	ManagerID    int64
	ClientIP     string
	GroupID      int64
	UserID       int64
	Level        string
	Operation    string // "add", "update", "remove"
	Success      bool
	ErrorMessage string
}

func (e MemberEvent) MessageID() string {
	return "member"
}

func (e MemberEvent) Message() string {
	if e.Success {
		switch e.Operation {
		case "remove":
			return fmt.Sprintf("user %d removed user %d from group %d", e.ManagerID, e.UserID, e.GroupID)
		case "update":
			return fmt.Sprintf("user %d set user %d in group %d to %s", e.ManagerID, e.UserID, e.GroupID, e.Level)
		default:
			return fmt.Sprintf("user %d added user %d to group %d at %s", e.ManagerID, e.UserID, e.GroupID, e.Level)
		}
	}
	msg := fmt.Sprintf("user %d failed to %s user %d in group %d", e.ManagerID, e.Operation, e.UserID, e.GroupID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e MemberEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e MemberEvent) Facility() int {
	return FacilityAuth
}

func (e MemberEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": strconv.FormatInt(e.ManagerID, 10),
		},
		SDIDSubject: {
			"group":  strconv.FormatInt(e.GroupID, 10),
			"member": strconv.FormatInt(e.UserID, 10),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
		},
	}
	if e.Level != "" {
		sd[SDIDSubject]["level"] = e.Level
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}
