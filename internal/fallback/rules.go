package fallback

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

type rulesFile struct {
	Rules []string `json:"rules"`
}

// ParseRules reads a {"rules": [...]} document and joins the rules with
// spaces into one system prompt.
func ParseRules(r io.Reader) (string, error) {
	var f rulesFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return "", fmt.Errorf("decode rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return "", fmt.Errorf("decode rules: no rules")
	}
	return strings.Join(f.Rules, " "), nil
}

func LoadRules(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	return ParseRules(f)
}
