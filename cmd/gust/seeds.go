package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seeds",
		Short: "List the titles of the seed table",
	}
	Root.AddCommand(cmd)
	fJSON := cmd.Flags().Bool("json", false, "dump the table as JSON")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		t, err := loadSeeds()
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		list := t.List()
		if *fJSON {
			data, err := json.MarshalIndent(map[string]interface{}{"seeds": list}, "", "\t")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		for _, s := range list {
			fmt.Printf("%s\t%s\t%s\n", s.ID, s.Version, s.Name)
		}
		return nil
	}
}
