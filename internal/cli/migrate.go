package cli

import (
	"context"
	"fmt"
)

// Execute implements the go-flags Commander interface for MigrateCommand.
func (c *MigrateCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := db.SchemaVersion(context.Background())
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return printJSON(map[string]interface{}{"database": cfg.Database.Path, "schema_version": version})
	}
	fmt.Printf("Database %s is at schema version %d\n", cfg.Database.Path, version)
	return nil
}
