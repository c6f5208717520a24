// Package env resolves env(VAR) references in configuration values.
package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/xctask/xctask/pkg/validate"
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// OS is the LookupFunc of the process environment.
var OS LookupFunc = os.LookupEnv

// Map returns a LookupFunc over a fixed set of variables.
func Map(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

// Get returns the value of key, or "" when unset.
func (l LookupFunc) Get(key string) string {
	v, _ := l(key)
	return v
}

// envVarPattern matches env(VAR_NAME) patterns
var envVarPattern = regexp.MustCompile(`env\(([^)]+)\)`)

// disallowedControlChars contains control characters that are not safe to inject
// into configuration values. Newlines and tabs are allowed for multiline secrets.
var disallowedControlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// SubstituteEnvVarsNode replaces env(VAR_NAME) patterns in YAML value nodes
// only, reading variables through lookup (the process environment when nil).
// Map keys are not modified.
func SubstituteEnvVarsNode(node ast.Node, lookup LookupFunc) error {
	if node == nil {
		return nil
	}
	if lookup == nil {
		lookup = OS
	}
	s := substituter{lookup: lookup}
	return s.node(node, true)
}

type substituter struct {
	lookup LookupFunc
}

func (s substituter) node(node ast.Node, inValue bool) error {
	switch n := node.(type) {
	case *ast.DocumentNode:
		if n.Body == nil {
			return nil
		}
		return s.node(n.Body, true)
	case *ast.MappingNode:
		for _, value := range n.Values {
			if err := s.node(value, inValue); err != nil {
				return err
			}
		}
		return nil
	case *ast.MappingValueNode:
		if n.Value == nil {
			return nil
		}
		return s.node(n.Value, true)
	case *ast.SequenceNode:
		for _, value := range n.Values {
			if err := s.node(value, true); err != nil {
				return err
			}
		}
		return nil
	case *ast.TagNode:
		if n.Value == nil {
			return nil
		}
		return s.node(n.Value, inValue)
	case *ast.AnchorNode:
		if n.Value == nil {
			return nil
		}
		return s.node(n.Value, inValue)
	case *ast.LiteralNode:
		if !inValue || n.Value == nil {
			return nil
		}
		replaced, err := s.replace(n.Value.Value)
		if err != nil {
			return err
		}
		n.Value.Value = replaced
		return nil
	case *ast.StringNode:
		if !inValue {
			return nil
		}
		replaced, err := s.replace(n.Value)
		if err != nil {
			return err
		}
		n.Value = replaced
		return nil
	default:
		return nil
	}
}

func (s substituter) replace(input string) (string, error) {
	var err error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(match, "env("), ")")
		value, ok := s.lookup(key)
		if !ok {
			// left for CheckResolved
			return match
		}

		if disallowedControlChars.MatchString(value) {
			err = fmt.Errorf("environment variable %s contains disallowed control characters", key)
			return ""
		}

		return value
	})

	if err != nil {
		return "", err
	}
	return result, nil
}

// CheckResolved verifies that a config value contains no unresolved env(...)
// references, e.g. "coverage.repo_token: environment variable COVERALLS_REPO_TOKEN is not set".
func CheckResolved(value, field string) error {
	if m := envVarPattern.FindStringSubmatch(value); m != nil {
		return validate.Errorf(field, "environment variable %s is not set", m[1])
	}
	return nil
}
