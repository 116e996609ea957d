package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trielab/go-hamt4/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the contents of a store",
	Long:  `Scan every node in the store and report counts and sizes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStoreConfig()
		if err != nil {
			return err
		}
		backend, err := store.NewBackend(cfg)
		if err != nil {
			return err
		}
		if err := backend.Open(false); err != nil {
			return err
		}
		defer backend.Close()

		var (
			nodes    int
			bytes    int
			smallest = -1
			largest  int
		)
		err = backend.ForEach(func(node *store.Node) error {
			nodes++
			bytes += node.Size()
			if smallest < 0 || node.Size() < smallest {
				smallest = node.Size()
			}
			if node.Size() > largest {
				largest = node.Size()
			}
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Printf("backend:  %s\n", backend.Name())
		fmt.Printf("nodes:    %d\n", nodes)
		fmt.Printf("bytes:    %d\n", bytes)
		if nodes > 0 {
			fmt.Printf("smallest: %d\n", smallest)
			fmt.Printf("largest:  %d\n", largest)
			fmt.Printf("average:  %d\n", bytes/nodes)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
