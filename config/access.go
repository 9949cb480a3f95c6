package config

// Access holds configuration for the access control feature.
type Access struct {
	// ExperimentalAccessControl enables rule/policy evaluation on query;
	// when false every lookup is allowed, matching the spec's non-goal
	// scoping out access control by default.
	ExperimentalAccessControl bool
	// DefaultAllow is the decision used when no access policy applies to
	// a collection.
	DefaultAllow bool
	// FilterPlugins names external filter plugins available to queries.
	// Nothing in the server reads this field: no plugin is loaded from it,
	// and query filters are not checked against it.
	FilterPlugins []string
}

// DefaultAccess returns the default access-control configuration.
func DefaultAccess() *Access {
	return &Access{
		ExperimentalAccessControl: false,
		DefaultAllow:              true,
	}
}

// Validate returns an error if the Access configuration is invalid. There
// are no invalid combinations today.
func (cfg *Access) Validate() error {
	return nil
}

// Copy returns a deep copy of the Access struct.
func (cfg *Access) Copy() *Access {
	res := *cfg
	res.FilterPlugins = append([]string(nil), cfg.FilterPlugins...)
	return &res
}
