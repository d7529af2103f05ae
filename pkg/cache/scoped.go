package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each tenant of a shared
// cache its own namespace:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "team:infra:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key of inner.
// A nil inner uses the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ScheduleKey generates a prefixed schedule key.
func (k *ScopedKeyer) ScheduleKey(projectHash string, opts ScheduleKeyOpts) string {
	return k.prefix + k.inner.ScheduleKey(projectHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(scheduleHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(scheduleHash, opts)
}
