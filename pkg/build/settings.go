package build

// Settings is an ordered set of xcodebuild build settings rendered as
// KEY=VALUE arguments. Setting an existing key replaces its value and keeps
// its original position. The zero value is ready to use.
type Settings struct {
	keys   []string
	values map[string]string
}

// Set adds or replaces a build setting.
func (s *Settings) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the value of a build setting.
func (s *Settings) Get(key string) (string, bool) {
	if s == nil || s.values == nil {
		return "", false
	}
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in insertion order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Clone returns an independent copy.
func (s *Settings) Clone() *Settings {
	c := &Settings{}
	if s == nil {
		return c
	}
	for _, k := range s.keys {
		c.Set(k, s.values[k])
	}
	return c
}

// Args renders the settings as KEY=VALUE arguments.
func (s *Settings) Args() []string {
	if s == nil {
		return nil
	}
	args := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		args = append(args, k+"="+s.values[k])
	}
	return args
}
