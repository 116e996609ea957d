package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trielab/go-hamt4/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <root-hash>",
	Short: "Verify a persisted snapshot",
	Long: `Walk the snapshot rooted at the given hash and check that every
reachable node is present, parses, and hashes to its own identity.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := store.ParseHash(args[0])
		if err != nil {
			return err
		}
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		var (
			nodes  int
			leaves int
			depth  int
		)
		var walk func(id store.Hash256, level int) error
		walk = func(id store.Hash256, level int) error {
			raw, err := db.Fetch(ctx, id)
			if err != nil {
				return err
			}
			if raw == nil {
				return fmt.Errorf("node %s: reachable but missing", id)
			}
			if store.HashData(raw.Data) != id {
				return fmt.Errorf("node %s: bytes hash to a different identity", id)
			}
			node, err := store.ParseArchivedNode(raw.Data)
			if err != nil {
				return fmt.Errorf("node %s: %w", id, err)
			}
			nodes++
			if level > depth {
				depth = level
			}
			for i := 0; i < 4; i++ {
				switch {
				case node.IsLeaf(i):
					leaves++
				case node.IsLink(i):
					if err := walk(node.LinkID(i), level+1); err != nil {
						return err
					}
				}
			}
			return nil
		}
		if err := walk(root, 1); err != nil {
			return err
		}

		fmt.Printf("root:   %s\n", root)
		fmt.Printf("nodes:  %d\n", nodes)
		fmt.Printf("leaves: %d\n", leaves)
		fmt.Printf("depth:  %d\n", depth)
		if verbose {
			fmt.Println(db.Stats())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
