package cache

// SchemaVersion is mixed into every key. Bump it whenever the cached
// encoding of a schedule or artifact changes.
const SchemaVersion = "1"

// Keyer builds cache keys.
type Keyer interface {
	// ScheduleKey identifies the leveled schedule of the project whose
	// canonical encoding hashes to projectHash.
	ScheduleKey(projectHash string, opts ScheduleKeyOpts) string

	// ArtifactKey identifies a rendering of the schedule whose canonical
	// encoding hashes to scheduleHash.
	ArtifactKey(scheduleHash string, opts ArtifactKeyOpts) string
}

// ScheduleKeyOpts are the options that change a scheduling result for the
// same project.
type ScheduleKeyOpts struct {
	StrictResources bool `json:"strict_resources"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ScheduleKey implements Keyer.
func (DefaultKeyer) ScheduleKey(projectHash string, opts ScheduleKeyOpts) string {
	return hashKey("schedule", SchemaVersion, projectHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(scheduleHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", SchemaVersion, scheduleHash, opts)
}
