package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a strategy, proposal, or idea record as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	var v any
	switch {
	case strings.HasPrefix(id, "STRAT-"):
		v, err = a.store.GetStrategy(id)
	case strings.HasPrefix(id, "PROP-"):
		v, err = a.store.GetProposal(id)
	case strings.HasPrefix(id, "IDEA-"):
		v, err = a.store.GetIdea(id)
	default:
		return fmt.Errorf("unrecognized id %q: expected a STRAT-, PROP-, or IDEA- prefixed id", id)
	}
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
