// Package migrations embeds the generation-run schema. Every up script is
// idempotent and is applied in file-name order when the DB pool opens.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/repositories"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

//go:embed *.up.sql
var files embed.FS

// Apply runs every *.up.sql script against db.
func Apply(ctx context.Context, db repositories.DB) error {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return err
	}
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		utils.Logger.Debugf("Applied migration %s", name)
	}
	return nil
}
