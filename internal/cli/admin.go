package cli

import (
	"fmt"

	"github.com/hourlog/internal/db"
)

// EnsureAdminCmd 在账号不存在时创建管理员
type EnsureAdminCmd struct {
	Email    string `help:"Admin email." required:"" env:"SUPER_ROOT_EMAIL"`
	Password string `help:"Admin password." required:"" env:"SUPER_ROOT_PASSWORD"`
	Name     string `help:"Display name."`
}

func (c *EnsureAdminCmd) Run(ctx *Context) error {
	if err := db.EnsureAdmin(ctx.DB, c.Email, c.Password, c.Name); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	fmt.Fprintf(ctx.Out, "✓ Admin %s is ready\n", c.Email)
	return nil
}
