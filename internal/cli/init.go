package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/archmap-dev/archmap/internal/fileutil"
	"github.com/archmap-dev/archmap/internal/store"
)

var defaultIgnoreFile = `# Paths excluded from archmap analysis (gitignore syntax).
# Defaults already exclude .git/, node_modules/, dist/, build/, vendor/.
`

func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRootPath(args)
	if err != nil {
		return err
	}

	for _, sub := range []string{"clusters", "features", "groups"} {
		dir := filepath.Join(rootPath, store.Dir, sub)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	ignorePath := filepath.Join(rootPath, IgnoreFile)
	if err := fileutil.WriteIfMissing(ignorePath, []byte(defaultIgnoreFile), 0644); err != nil {
		return fmt.Errorf("failed to seed %s: %w", IgnoreFile, err)
	}

	fmt.Printf("initialized %s\n", filepath.Join(rootPath, store.Dir))
	fmt.Println("run 'archmap analyze' to build cluster records")
	return nil
}
