package sign

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// ProfilesDir is where Xcode installs provisioning profiles, relative to $HOME.
const ProfilesDir = "Library/MobileDevice/Provisioning Profiles"

// Profile is a resolved provisioning profile reference. UUID and Name are
// either both read from the profile or, when resolution fails, UUID is empty
// and Name holds the raw reference.
type Profile struct {
	Ref  string
	Path string
	UUID string
	Name string
}

// Resolved reports whether the profile was read successfully.
func (p Profile) Resolved() bool {
	return p.UUID != ""
}

// ProfileResolver turns a profile reference into a Profile. Resolution never
// fails; an unreadable profile keeps the raw reference as its name.
type ProfileResolver interface {
	Resolve(ctx context.Context, ref string) Profile
}

// PlistResolver reads profiles with `security cms` and PlistBuddy.
type PlistResolver struct {
	Dir    string // installed profiles directory
	Output OutputFunc
	Logger logrus.FieldLogger
}

// Ensure PlistResolver implements ProfileResolver
var _ ProfileResolver = (*PlistResolver)(nil)

// NewPlistResolver creates a resolver looking in the user's installed profiles.
func NewPlistResolver(logger logrus.FieldLogger) *PlistResolver {
	dir := ""
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ProfilesDir)
	}
	return &PlistResolver{Dir: dir, Output: ExecOutput, Logger: logger}
}

// Resolve looks ref up as a file path, then as a name in Dir.
func (r *PlistResolver) Resolve(ctx context.Context, ref string) Profile {
	unresolved := Profile{Ref: ref, Name: ref}
	if ref == "" {
		return unresolved
	}

	path := r.locate(ref)
	if path == "" {
		return unresolved
	}

	plist, err := r.Output(ctx, nil, "security", "cms", "-D", "-i", path)
	if err != nil {
		r.warn(ref, err)
		return unresolved
	}

	uuid, err := r.print(ctx, plist, "UUID")
	if err != nil {
		r.warn(ref, err)
		return unresolved
	}
	name, err := r.print(ctx, plist, "Name")
	if err != nil {
		r.warn(ref, err)
		return unresolved
	}
	if uuid == "" || name == "" {
		return unresolved
	}

	return Profile{Ref: ref, Path: path, UUID: uuid, Name: name}
}

func (r *PlistResolver) locate(ref string) string {
	if isFile(ref) {
		return ref
	}
	if r.Dir == "" {
		return ""
	}
	if path := filepath.Join(r.Dir, ref); isFile(path) {
		return path
	}
	return ""
}

func (r *PlistResolver) print(ctx context.Context, plist []byte, key string) (string, error) {
	out, err := r.Output(ctx, plist, "/usr/libexec/PlistBuddy", "-c", "Print:"+key, "/dev/stdin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *PlistResolver) warn(ref string, err error) {
	if r.Logger != nil {
		r.Logger.WithField("profile", ref).Warnf("could not read provisioning profile: %v", err)
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
