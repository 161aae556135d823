package table

// Config carries the enumerated configuration knobs from spec.md §6. It
// is a plain struct, not a functional-options builder — the teacher
// repository (Felmond13-novusdb) never reaches for functional options,
// consistently using struct literals plus a Default/Validate pair
// instead (see storage.Pager's construction style).
type Config struct {
	// PageSize is the row-count granularity of each page. Must be
	// positive and <= 65535.
	PageSize int
	// MaxPages bounds capacity = PageSize * MaxPages, which must itself
	// fit in a non-negative int32 (spec.md §3).
	MaxPages int
	// InitialPages is advisory: implementations may eagerly allocate
	// this many pages instead of relying purely on lazy allocation.
	// Must be in [1, MaxPages] when set; 0 means "no eager allocation".
	InitialPages int
	// SpecializationEnabled is carried with the configuration but is not
	// read by any package in this module: memriscore.Table always uses
	// its exec.Cache, whatever this field says.
	SpecializationEnabled bool
}

// DefaultConfig returns a reasonable default geometry: 1024-row pages, up
// to 1024 pages (so ~1,048,576 rows of capacity), specialization on.
func DefaultConfig() Config {
	return Config{
		PageSize:              1024,
		MaxPages:              1024,
		InitialPages:          0,
		SpecializationEnabled: true,
	}
}

// Validate checks the configuration against spec.md §6's constraints.
func (c Config) Validate() error {
	if c.PageSize <= 0 || c.PageSize > 65535 {
		return errArgumentShape("pageSize must be in (0, 65535]")
	}
	if c.MaxPages <= 0 {
		return errArgumentShape("maxPages must be positive")
	}
	capacity := c.PageSize * c.MaxPages
	if capacity <= 0 || capacity > (1<<31)-1 {
		return errArgumentShape("pageSize * maxPages must fit in 2^31-1")
	}
	if c.InitialPages < 0 || c.InitialPages > c.MaxPages {
		return errArgumentShape("initialPages must be in [0, maxPages]")
	}
	return nil
}

// Capacity returns PageSize * MaxPages.
func (c Config) Capacity() int {
	return c.PageSize * c.MaxPages
}
