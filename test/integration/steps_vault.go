package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cucumber/godog"
)

// testUser is a registered account with its session token
type testUser struct {
	ID    int64
	Token string
}

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte

	users   map[string]*testUser
	secrets map[string]int64
	groups  map[string]int64
	grants  map[string]int64
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:      tc,
		users:   make(map[string]*testUser),
		secrets: make(map[string]int64),
		groups:  make(map[string]int64),
		grants:  make(map[string]int64),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background
	sc.Step(`^the vault server is running$`, s.theVaultServerIsRunning)
	sc.Step(`^a user "([^"]*)" exists$`, s.aUserExists)

	// Secrets
	sc.Step(`^"([^"]*)" stores a secret "([^"]*)" for site "([^"]*)"$`, s.storesASecret)
	sc.Step(`^"([^"]*)" fetches "([^"]*)"$`, s.fetchesSecret)
	sc.Step(`^"([^"]*)" updates "([^"]*)" with notes "([^"]*)"$`, s.updatesSecret)
	sc.Step(`^"([^"]*)" deletes "([^"]*)"$`, s.deletesSecret)
	sc.Step(`^"([^"]*)" lists their passwords$`, s.listsPasswords)

	// Grants
	sc.Step(`^"([^"]*)" grants "([^"]*)" (READ|WRITE|DELETE) on "([^"]*)"$`, s.grantsUser)
	sc.Step(`^"([^"]*)" grants group "([^"]*)" (READ|WRITE|DELETE) on "([^"]*)"$`, s.grantsGroup)
	sc.Step(`^"([^"]*)" changes the grant for "([^"]*)" on "([^"]*)" to (READ|WRITE|DELETE)$`, s.changesGrant)
	sc.Step(`^"([^"]*)" revokes "([^"]*)"'s access to "([^"]*)"$`, s.revokesAccess)
	sc.Step(`^"([^"]*)" lists the grants on "([^"]*)"$`, s.listsGrants)

	// Groups
	sc.Step(`^"([^"]*)" creates a group "([^"]*)"$`, s.createsGroup)
	sc.Step(`^"([^"]*)" adds "([^"]*)" to "([^"]*)" with (READ|WRITE|DELETE)$`, s.addsMember)

	// Assertions
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response message should be "([^"]*)"$`, s.theResponseMessageShouldBe)
	sc.Step(`^the listing should include "([^"]*)"$`, s.theListingShouldInclude)
	sc.Step(`^the listing should omit "([^"]*)"$`, s.theListingShouldOmit)
	sc.Step(`^no grant rows should reference "([^"]*)"$`, s.noGrantRowsShouldReference)
}

func (s *StepsContext) theVaultServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func email(name string) string {
	return name + "@example.com"
}

func (s *StepsContext) aUserExists(name string) error {
	creds := map[string]string{
		"email":    email(name),
		"password": "correct horse battery staple",
	}

	// Registration may 400 when the user is left over from an earlier
	// scenario; login decides whether the account is usable.
	resp, _, err := s.request("POST", "/register", "", creds)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("unexpected register status %d", resp.StatusCode)
	}

	resp, body, err := s.request("POST", "/login", "", creds)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d: %s", resp.StatusCode, body)
	}

	var loginBody struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
	}
	if err := json.Unmarshal(body, &loginBody); err != nil {
		return err
	}

	s.users[name] = &testUser{ID: loginBody.UserID, Token: loginBody.Token}
	return nil
}

func (s *StepsContext) storesASecret(name, alias, site string) error {
	user, err := s.user(name)
	if err != nil {
		return err
	}

	resp, body, err := s.request("POST", "/storage", user.Token, map[string]string{
		"site":           site,
		"encrypted_data": "ciphertext-" + alias,
		"iv":             "0123456789abcdef",
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("store failed with status %d: %s", resp.StatusCode, body)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return err
	}
	s.secrets[alias] = created.ID
	return nil
}

func (s *StepsContext) fetchesSecret(name, alias string) error {
	user, err := s.user(name)
	if err != nil {
		return err
	}
	secretID, ok := s.secrets[alias]
	if !ok {
		return fmt.Errorf("unknown secret %q", alias)
	}

	_, _, err = s.request("GET", fmt.Sprintf("/api/storage/%d", secretID), user.Token, nil)
	return err
}

func (s *StepsContext) updatesSecret(name, alias, notes string) error {
	user, err := s.user(name)
	if err != nil {
		return err
	}
	secretID, ok := s.secrets[alias]
	if !ok {
		return fmt.Errorf("unknown secret %q", alias)
	}

	_, _, err = s.request("PUT", fmt.Sprintf("/api/storage/%d", secretID), user.Token, map[string]string{
		"notes": notes,
	})
	return err
}

func (s *StepsContext) deletesSecret(name, alias string) error {
	user, err := s.user(name)
	if err != nil {
		return err
	}
	secretID, ok := s.secrets[alias]
	if !ok {
		return fmt.Errorf("unknown secret %q", alias)
	}

	_, _, err = s.request("DELETE", fmt.Sprintf("/api/storage/%d", secretID), user.Token, nil)
	return err
}

func (s *StepsContext) listsPasswords(name string) error {
	user, err := s.user(name)
	if err != nil {
		return err
	}

	_, _, err = s.request("GET", "/passwords", user.Token, nil)
	return err
}

func (s *StepsContext) grantsUser(granter, grantee, level, alias string) error {
	granterUser, err := s.user(granter)
	if err != nil {
		return err
	}
	granteeUser, err := s.user(grantee)
	if err != nil {
		return err
	}
	secretID, ok := s.secrets[alias]
	if !ok {
		return fmt.Errorf("unknown secret %q", alias)
	}

	resp, body, err := s.request("POST", "/permission/grant", granterUser.Token, map[string]interface{}{
		"password_id": secretID,
		"user_id":     granteeUser.ID,
		"permission":  level,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("grant failed with status %d: %s", resp.StatusCode, body)
	}

	var created struct {
		AccessID int64 `json:"access_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return err
	}
	s.grants[alias+"/"+grantee] = created.AccessID
	return nil
}

func (s *StepsContext) grantsGroup(granter, groupName, level, alias string) error {
	granterUser, err := s.user(granter)
	if err != nil {
		return err
	}
	groupID, ok := s.groups[groupName]
	if !ok {
		return fmt.Errorf("unknown group %q", groupName)
	}
	secretID, ok := s.secrets[alias]
	if !ok {
		return fmt.Errorf("unknown secret %q", alias)
	}

	resp, body, err := s.request("POST", "/permission/grant", granterUser.Token, map[string]interface{}{
		"password_id": secretID,
		"group_id":    groupID,
		"permission":  level,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("group grant failed with status %d: %s", resp.StatusCode, body)
	}

	var created struct {
		AccessID int64 `json:"access_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return err
	}
	s.grants[alias+"/"+groupName] = created.AccessID
	return nil
}

func (s *StepsContext) changesGrant(granter, grantee, alias, level string) error {
	granterUser, err := s.user(granter)
	if err != nil {
		return err
	}
	accessID, ok := s.grants[alias+"/"+grantee]
	if !ok {
		return fmt.Errorf("no recorded grant for %q on %q", grantee, alias)
	}

	_, _, err = s.request("PATCH", fmt.Sprintf("/permission/update/%d", accessID), granterUser.Token,
		map[string]string{"permission": level})
	return err
}

func (s *StepsContext) revokesAccess(granter, grantee, alias string) error {
	granterUser, err := s.user(granter)
	if err != nil {
		return err
	}
	granteeUser, err := s.user(grantee)
	if err != nil {
		return err
	}
	secretID, ok := s.secrets[alias]
	if !ok {
		return fmt.Errorf("unknown secret %q", alias)
	}

	_, _, err = s.request("DELETE", "/permission/revoke", granterUser.Token, map[string]interface{}{
		"password_id": secretID,
		"user_id":     granteeUser.ID,
	})
	return err
}

func (s *StepsContext) listsGrants(name, alias string) error {
	user, err := s.user(name)
	if err != nil {
		return err
	}
	secretID, ok := s.secrets[alias]
	if !ok {
		return fmt.Errorf("unknown secret %q", alias)
	}

	_, _, err = s.request("GET", fmt.Sprintf("/permission/password/%d", secretID), user.Token, nil)
	return err
}

func (s *StepsContext) createsGroup(name, groupName string) error {
	user, err := s.user(name)
	if err != nil {
		return err
	}

	resp, body, err := s.request("POST", "/groups", user.Token, map[string]string{
		"name": groupName,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create group failed with status %d: %s", resp.StatusCode, body)
	}

	var created struct {
		GroupID int64 `json:"group_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return err
	}
	s.groups[groupName] = created.GroupID
	return nil
}

func (s *StepsContext) addsMember(manager, member, groupName, level string) error {
	managerUser, err := s.user(manager)
	if err != nil {
		return err
	}
	memberUser, err := s.user(member)
	if err != nil {
		return err
	}
	groupID, ok := s.groups[groupName]
	if !ok {
		return fmt.Errorf("unknown group %q", groupName)
	}

	resp, body, err := s.request("POST", fmt.Sprintf("/groups/%d/members", groupID), managerUser.Token,
		map[string]interface{}{
			"user_id":    memberUser.ID,
			"permission": level,
		})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("add member failed with status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseMessageShouldBe(msg string) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}

	var body struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("response is not a message body: %s", s.responseBody)
	}
	if body.Msg != msg {
		return fmt.Errorf("expected message %q, got %q", msg, body.Msg)
	}
	return nil
}

func (s *StepsContext) theListingShouldInclude(alias string) error {
	found, err := s.listingContains(alias)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("listing does not include %q", alias)
	}
	return nil
}

func (s *StepsContext) theListingShouldOmit(alias string) error {
	found, err := s.listingContains(alias)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("listing unexpectedly includes %q", alias)
	}
	return nil
}

func (s *StepsContext) listingContains(alias string) (bool, error) {
	secretID, ok := s.secrets[alias]
	if !ok {
		return false, fmt.Errorf("unknown secret %q", alias)
	}

	var listing []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(s.responseBody, &listing); err != nil {
		return false, fmt.Errorf("response is not a listing: %s", s.responseBody)
	}

	for _, entry := range listing {
		if entry.ID == secretID {
			return true, nil
		}
	}
	return false, nil
}

func (s *StepsContext) noGrantRowsShouldReference(alias string) error {
	secretID, ok := s.secrets[alias]
	if !ok {
		return fmt.Errorf("unknown secret %q", alias)
	}

	var count int64
	if err := s.tc.DB.Raw(`SELECT COUNT(*) FROM access_grants WHERE secret_id = ?`, secretID).
		Scan(&count).Error; err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("expected no grant rows for secret %d, found %d", secretID, count)
	}
	return nil
}

func (s *StepsContext) user(name string) (*testUser, error) {
	user, ok := s.users[name]
	if !ok {
		return nil, fmt.Errorf("unknown user %q", name)
	}
	return user, nil
}

// request performs an HTTP request against the server, recording the response
// for later assertion steps.
func (s *StepsContext) request(method, path, token string, body interface{}) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	s.response = resp
	s.responseBody = respBody
	return resp, respBody, nil
}
