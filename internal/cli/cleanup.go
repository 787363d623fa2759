package cli

import (
	"context"
	"fmt"

	"ecocare/internal/repository/sqlite"
)

// Execute implements the go-flags Commander interface for CleanupCommand.
func (c *CleanupCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	repo := sqlite.NewDetectionRepository(db)

	deleted, err := repo.DeleteWithoutImage(ctx)
	if err != nil {
		return err
	}
	remaining, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d items without images\n", deleted)
	fmt.Printf("Remaining %d items:\n", len(remaining))
	for _, d := range remaining {
		fmt.Printf("  - %s %s (%s) - Image: %s\n", d.Brand, d.ModelOrSeries, d.ProductType, d.Image)
	}
	return nil
}
