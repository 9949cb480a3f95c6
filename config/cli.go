package config

// CLI defines configuration details for the cdxserver command line client.
type CLI struct {
	ColorizeOutput bool
}

// DefaultCLI returns a new default CLI configuration.
func DefaultCLI() *CLI {
	return &CLI{
		ColorizeOutput: true,
	}
}

// Validate returns an error if the CLI configuration is invalid. The CLI
// section has no invalid states today.
func (cfg *CLI) Validate() error {
	return nil
}

// Copy returns a deep copy of the CLI struct.
func (cfg *CLI) Copy() *CLI {
	res := *cfg
	return &res
}
