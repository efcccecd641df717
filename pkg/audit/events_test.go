package audit

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLogFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	logger.Log(AuthenticateEvent{
		Email:    "alice@example.com",
		ClientIP: "10.0.0.1",
		Success:  true,
	})

	line := buf.String()

	// PRI = facility*8 + severity = 10*8 + 6
	if !strings.HasPrefix(line, "<86>1 ") {
		t.Errorf("unexpected PRI/version prefix: %q", line)
	}
	if !strings.Contains(line, " lanbitou ") {
		t.Errorf("app name missing from log line: %q", line)
	}
	if !strings.Contains(line, " authn ") {
		t.Errorf("message id missing from log line: %q", line)
	}
	if !strings.Contains(line, `user="alice@example.com"`) {
		t.Errorf("structured data missing from log line: %q", line)
	}
	if !strings.Contains(line, "alice@example.com successfully authenticated") {
		t.Errorf("message missing from log line: %q", line)
	}
}

func TestAuthenticateEventSeverity(t *testing.T) {
	success := AuthenticateEvent{Email: "alice@example.com", Success: true}
	if success.Severity() != SeverityInfo {
		t.Errorf("Severity() = %v, want %v", success.Severity(), SeverityInfo)
	}

	failure := AuthenticateEvent{Email: "alice@example.com", Success: false, ErrorMessage: "bad password"}
	if failure.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", failure.Severity(), SeverityWarning)
	}
	if !strings.Contains(failure.Message(), "bad password") {
		t.Errorf("Message() should carry the error: %q", failure.Message())
	}
}

func TestSecretEventStructuredData(t *testing.T) {
	event := SecretEvent{
		UserID:    7,
		ClientIP:  "192.168.1.1",
		SecretID:  12,
		Operation: "fetch",
		Success:   true,
	}

	if event.MessageID() != "fetch" {
		t.Errorf("MessageID() = %q, want %q", event.MessageID(), "fetch")
	}

	sd := event.StructuredData()
	if sd[SDIDAuth]["user"] != "7" {
		t.Errorf("auth user = %q, want %q", sd[SDIDAuth]["user"], "7")
	}
	if sd[SDIDSubject]["secret"] != "12" {
		t.Errorf("subject secret = %q, want %q", sd[SDIDSubject]["secret"], "12")
	}
	if sd[SDIDAction]["result"] != "success" {
		t.Errorf("action result = %q, want %q", sd[SDIDAction]["result"], "success")
	}
}

func TestGrantEventMessages(t *testing.T) {
	base := GrantEvent{
		OwnerID:    1,
		SecretID:   12,
		TargetType: "group",
		TargetID:   3,
		Level:      "WRITE",
		Success:    true,
	}

	grant := base
	grant.Operation = "grant"
	if !strings.Contains(grant.Message(), "granted WRITE on secret 12 to group 3") {
		t.Errorf("unexpected grant message: %q", grant.Message())
	}

	revoke := base
	revoke.Operation = "revoke"
	if !strings.Contains(revoke.Message(), "revoked access to secret 12 from group 3") {
		t.Errorf("unexpected revoke message: %q", revoke.Message())
	}

	update := base
	update.Operation = "update"
	if !strings.Contains(update.Message(), "changed access to secret 12 for group 3 to WRITE") {
		t.Errorf("unexpected update message: %q", update.Message())
	}

	if base.Severity() != SeverityNotice {
		t.Errorf("Severity() = %v, want %v", base.Severity(), SeverityNotice)
	}
}

func TestMemberEventStructuredData(t *testing.T) {
	event := MemberEvent{
		ManagerID: 1,
		GroupID:   3,
		UserID:    2,
		Level:     "READ",
		Operation: "add",
		Success:   true,
	}

	sd := event.StructuredData()
	if sd[SDIDSubject]["group"] != "3" {
		t.Errorf("subject group = %q, want %q", sd[SDIDSubject]["group"], "3")
	}
	if sd[SDIDSubject]["member"] != "2" {
		t.Errorf("subject member = %q, want %q", sd[SDIDSubject]["member"], "2")
	}
	if sd[SDIDSubject]["level"] != "READ" {
		t.Errorf("subject level = %q, want %q", sd[SDIDSubject]["level"], "READ")
	}
	if event.Facility() != FacilityAuth {
		t.Errorf("Facility() = %d, want %d", event.Facility(), FacilityAuth)
	}
}

func TestEscapeSDValue(t *testing.T) {
	escaped := escapeSDValue(`va"lue\with]specials`)
	want := `"va\"lue\\with\]specials"`
	if escaped != want {
		t.Errorf("escapeSDValue() = %q, want %q", escaped, want)
	}
}
