package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Print the warehouse of each location code",
		ArgsUsage: "CODE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "contact", Usage: "Contact id whose suffix may override the warehouse"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("at least one location code is required")
			}
			for _, code := range c.Args().Slice() {
				label := warehouse.Known(warehouse.Classify(code))
				if contact := c.String("contact"); contact != "" {
					label = warehouse.ApplySuffixOverride(contact, label)
				}
				fmt.Fprintf(c.App.Writer, "%s\t%s\n", code, label)
			}
			return nil
		},
	}
}
