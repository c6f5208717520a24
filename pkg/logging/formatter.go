// Package logging holds the console formatter used outside debug mode.
package logging

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields with their own place in the output instead of key=value pairs.
const (
	actionField = "action"
	taskField   = "task"
	cmdField    = "cmd"
)

// BulletFormatter formats log entries as hierarchical bullets. Entries with
// an "action" field are top-level bullets, other entries are sub-bullets
// marked by level, and errors are marked with x. A "task" field prefixes the
// message with the task name and a "cmd" field is printed below the entry:
//
//	$ xctask check
//	  * loading configuration  path=.xctask.yaml
//	    * [UnitTests] Valid
//	      $ xcodebuild test -scheme MyApp
//	    ! no build_dir set
//	  x [Release] Invalid: archive action requires specifying a scheme
//
// Remaining fields are appended as sorted key=value pairs.
type BulletFormatter struct{}

func (f *BulletFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer

	if action, ok := entry.Data[actionField]; ok {
		fmt.Fprintf(&buf, "  * %v", action)
	} else {
		buf.WriteString(bullet(entry.Level))
		if name, ok := entry.Data[taskField]; ok {
			fmt.Fprintf(&buf, "[%v] ", name)
		}
		buf.WriteString(entry.Message)
	}
	buf.WriteString(formatFields(entry.Data, actionField, taskField, cmdField))

	if cmd, ok := entry.Data[cmdField]; ok {
		fmt.Fprintf(&buf, "\n      $ %v", cmd)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func bullet(level logrus.Level) string {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return "  x "
	case logrus.WarnLevel:
		return "    ! "
	case logrus.InfoLevel:
		return "    * "
	default:
		return "      "
	}
}

// formatFields returns the sorted key=value pairs of fields not in skip,
// or "" when none remain.
func formatFields(fields logrus.Fields, skip ...string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !contains(skip, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return "  " + strings.Join(parts, " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
