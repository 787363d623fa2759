package cli

import (
	"context"
	"fmt"
	"time"

	"ecocare/internal/repository/sqlite"
)

// retimeSchedule returns the timestamp for the i-th record in brand order.
// Records past the end of the schedule stay on today.
func retimeSchedule(now time.Time, i int) time.Time {
	schedule := []time.Time{
		now,
		now,
		now.AddDate(0, 0, -1),
		now.AddDate(0, 0, -7),
		now.AddDate(0, 0, -7),
		now.AddDate(0, -1, 0),
		now.AddDate(0, -1, 0),
		now.AddDate(-1, 0, 0),
		now.AddDate(-1, 0, 0),
		now.AddDate(-1, 0, 0),
	}
	if i < len(schedule) {
		return schedule[i]
	}
	return now
}

// Execute implements the go-flags Commander interface for RetimeCommand.
func (c *RetimeCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now()
	if c.now != nil {
		now = c.now()
	}

	ctx := context.Background()
	repo := sqlite.NewDetectionRepository(db)

	items, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}

	for i, d := range items {
		at := retimeSchedule(now, i)
		if err := repo.UpdateCreatedAt(ctx, d.ID, at); err != nil {
			return fmt.Errorf("retime %d: %w", d.ID, err)
		}
		fmt.Printf("Updated %s %s -> %s\n", d.Brand, d.ModelOrSeries, at.Format("2006-01-02"))
	}
	fmt.Printf("Retimed %d detections\n", len(items))
	return nil
}
