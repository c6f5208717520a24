package sign

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// identityPattern matches lines from `security find-identity -v -p codesigning`.
// Format: "  N) <hex hash> "<identity string>""
var identityPattern = regexp.MustCompile(`^\s*\d+\)\s+[0-9A-Fa-f]+\s+"(.+)"`)

// ParseIdentityOutput returns the quoted identity names of a
// `security find-identity` listing.
func ParseIdentityOutput(output string) []string {
	var identities []string

	for _, line := range strings.Split(output, "\n") {
		matches := identityPattern.FindStringSubmatch(line)
		if len(matches) == 2 {
			identities = append(identities, matches[1])
		}
	}

	return identities
}

// MatchIdentity reports whether configured selects one of the available
// identities. Like xcodebuild, a bare common name prefix such as
// "iPhone Distribution" matches "iPhone Distribution: Team (ID)".
func MatchIdentity(configured string, available []string) bool {
	for _, id := range available {
		if id == configured || strings.HasPrefix(id, configured+":") {
			return true
		}
	}
	return false
}

// ValidateIdentity returns an error listing the available identities when
// configured matches none of them.
func ValidateIdentity(configured string, available []string) error {
	if MatchIdentity(configured, available) {
		return nil
	}

	if len(available) == 0 {
		return fmt.Errorf("signing identity %q not found in keychain, no valid signing identities are installed", configured)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "signing identity %q not found in keychain\navailable identities:", configured)
	for _, id := range available {
		fmt.Fprintf(&b, "\n  - %s", id)
	}
	return fmt.Errorf("%s", b.String())
}

// Keychain queries installed code signing identities.
type Keychain struct {
	Output OutputFunc
}

// NewKeychain creates a Keychain backed by the security tool.
func NewKeychain() *Keychain {
	return &Keychain{Output: ExecOutput}
}

// Identities lists valid code signing identities.
func (k *Keychain) Identities(ctx context.Context) ([]string, error) {
	out, err := k.Output(ctx, nil, "security", "find-identity", "-v", "-p", "codesigning")
	if err != nil {
		return nil, fmt.Errorf("failed to list signing identities: %w", err)
	}
	return ParseIdentityOutput(string(out)), nil
}

// Check validates that configured is installed.
func (k *Keychain) Check(ctx context.Context, configured string) error {
	identities, err := k.Identities(ctx)
	if err != nil {
		return err
	}
	return ValidateIdentity(configured, identities)
}
