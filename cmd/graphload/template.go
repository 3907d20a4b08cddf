package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pharmakb/graphload/internal/mapping"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Inspect mapping templates",
}

var templateShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Load a mapping template and print its contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := mapping.LoadTemplate(args[0])
		if err != nil {
			return err
		}
		if spec.Name != "" {
			fmt.Printf("Template: %s\n", spec.Name)
		}
		printSpec(spec)
		if spec.IsEmpty() {
			return fmt.Errorf("template defines no entities")
		}
		return nil
	},
}

func init() {
	templateCmd.AddCommand(templateShowCmd)
}
