package cli

import (
	"context"
	"fmt"
	"strings"

	"ecocare/internal/model"
	"ecocare/internal/repository/sqlite"
	"ecocare/internal/validation"
)

type newUser struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
}

// Execute implements the go-flags Commander interface for UserAddCommand.
func (c *UserAddCommand) Execute(args []string) error {
	in := newUser{Name: strings.TrimSpace(c.Name), Email: strings.TrimSpace(c.Email)}
	if err := validation.Struct(in); err != nil {
		return err
	}

	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	user := &model.User{Name: in.Name, Email: in.Email}
	if _, err := sqlite.NewUserRepository(db).Insert(context.Background(), user); err != nil {
		return err
	}

	if c.globals.JSON {
		return printJSON(user)
	}
	fmt.Printf("Created user %d (%s <%s>)\n", user.ID, user.Name, user.Email)
	return nil
}
