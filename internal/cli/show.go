package cli

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trielab/go-hamt4/store"
)

var showCmd = &cobra.Command{
	Use:   "show <hash>",
	Short: "Print one archived node",
	Long:  `Fetch a single node by hash and print its bucket layout.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := store.ParseHash(args[0])
		if err != nil {
			return err
		}
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		raw, err := db.Fetch(context.Background(), id)
		if err != nil {
			return err
		}
		if raw == nil {
			return fmt.Errorf("node %s not found", id)
		}
		node, err := store.ParseArchivedNode(raw.Data)
		if err != nil {
			return err
		}

		fmt.Printf("node: %s (%d bytes)\n", id, raw.Size())
		for i := 0; i < 4; i++ {
			switch {
			case node.IsEmpty(i):
				fmt.Printf("  [%d] empty\n", i)
			case node.IsLeaf(i):
				fmt.Printf("  [%d] leaf  %d bytes", i, len(node.LeafBytes(i)))
				if verbose {
					fmt.Printf("  %s", hex.EncodeToString(node.LeafBytes(i)))
				}
				fmt.Println()
			case node.IsLink(i):
				fmt.Printf("  [%d] link  %s", i, node.LinkID(i))
				if anno := node.AnnoBytes(i); verbose && len(anno) > 0 {
					fmt.Printf("  anno %s", hex.EncodeToString(anno))
				}
				fmt.Println()
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
