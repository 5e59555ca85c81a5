package identity

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ServiceAccount is the server-side credential required for administrative
// provider calls.
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// DecodeServiceAccount parses the credential from its environment form. The
// value is accepted as raw JSON, base64-encoded JSON, and either of those
// wrapped in one layer of quotes; escaped newlines inside private_key are
// repaired. Deployment tooling mangles the value in all of these ways.
func DecodeServiceAccount(raw string) (ServiceAccount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ServiceAccount{}, errors.New("identity: service account credential is empty")
	}
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		raw = raw[1 : len(raw)-1]
	}

	sa, jsonErr := parseServiceAccountJSON(raw)
	if jsonErr == nil {
		return sa, nil
	}

	decoded, b64Err := base64.StdEncoding.DecodeString(raw)
	if b64Err != nil {
		return ServiceAccount{}, fmt.Errorf("identity: parse service account: %w", jsonErr)
	}
	sa, err := parseServiceAccountJSON(string(decoded))
	if err != nil {
		return ServiceAccount{}, fmt.Errorf("identity: parse base64 service account: %w", err)
	}
	return sa, nil
}

func parseServiceAccountJSON(raw string) (ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal([]byte(raw), &sa); err != nil {
		return ServiceAccount{}, err
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return ServiceAccount{}, errors.New("client_email and private_key are required")
	}
	sa.PrivateKey = strings.NewReplacer(`\\`, `\`, `\n`, "\n").Replace(sa.PrivateKey)
	return sa, nil
}
