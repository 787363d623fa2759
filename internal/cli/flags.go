package cli

import "time"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DB      string `long:"db" description:"Override the database path"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Log queries to stderr"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// MigrateCommand applies the schema.
type MigrateCommand struct {
	globals *GlobalFlags
}

// SeedCommand loads a samples file.
type SeedCommand struct {
	File  string `long:"file" short:"f" description:"Samples JSON file" required:"true"`
	Reset bool   `long:"reset" description:"Delete every detection before loading"`

	globals *GlobalFlags
}

// CleanupCommand removes detections without an image.
type CleanupCommand struct {
	globals *GlobalFlags
}

// RetimeCommand spreads detections over past periods.
type RetimeCommand struct {
	globals *GlobalFlags
	now     func() time.Time // nil means time.Now
}

// StatsCommand prints the dashboard cards for a range.
type StatsCommand struct {
	Range string `long:"range" short:"r" description:"today | month | year | lifetime" default:"today"`

	globals *GlobalFlags
}

// UserAddCommand creates an operator profile.
type UserAddCommand struct {
	Name  string `long:"name" description:"Display name" required:"true"`
	Email string `long:"email" description:"Email address" required:"true"`

	globals *GlobalFlags
}
