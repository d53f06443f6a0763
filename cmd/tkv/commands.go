package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Giulio2002/tkv"
)

// newRootCmd builds the command tree around its own configuration.
func newRootCmd() *cobra.Command {
	v := newConfig()
	var store *stringStore

	root := &cobra.Command{
		Use:   "tkv",
		Short: "typed key-value store",
		Long: fmt.Sprintf(`%s

Read and write string keys and values of a tkv database. Every flag can
also be set through a TKV_ environment variable or a .env file.`, tkv.Version()),
		SilenceUsage: true,
	}
	setupStoreFlags(root)

	// dataCmd opens the store around the command's RunE
	dataCmd := func(c *cobra.Command) *cobra.Command {
		run := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) (err error) {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			store, err = openStore(v)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := store.Close(); err == nil {
					err = cerr
				}
				store = nil
			}()
			return run(cmd, args)
		}
		root.AddCommand(c)
		return c
	}

	dataCmd(&cobra.Command{
		Use:   "get [key]",
		Short: "Prints the value of a key, or every value in duplicate mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := store.Values(args[0])
			store.Abort()
			if err != nil {
				return err
			}
			for _, val := range vals {
				fmt.Fprintln(cmd.OutOrStdout(), val)
			}
			return nil
		},
	})

	putCmd := dataCmd(&cobra.Command{
		Use:   "put [key] [value]",
		Short: "Stores a value under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noOverwrite, _ := cmd.Flags().GetBool("no-overwrite"); noOverwrite {
				flags := tkv.NoOverwrite
				if v.GetBool("dups") {
					flags = tkv.NoDupData
				}
				if err := store.SetPutFlags(flags); err != nil {
					return err
				}
			}
			return store.Put(args[0], args[1])
		},
	})
	putCmd.Flags().Bool("no-overwrite", false, wrapString("Fail if the key (or key/value pair in duplicate mode) exists"))

	dataCmd(&cobra.Command{
		Use:   "del [key] [value]",
		Short: "Deletes a key, or one of its values in duplicate mode",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return store.DeleteValue(args[0], args[1], true)
			}
			return store.Delete(args[0], true)
		},
	})

	listCmd := dataCmd(&cobra.Command{
		Use:   "list",
		Short: "Prints every key and value in key order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reverse, _ := cmd.Flags().GetBool("reverse")
			limit, _ := cmd.Flags().GetInt("limit")
			defer store.Abort()
			return listEntries(cmd, store, reverse, limit)
		},
	})
	listCmd.Flags().Bool("reverse", false, wrapString("List in descending key order"))
	listCmd.Flags().Int("limit", 0, wrapString("Stop after this many entries, 0 for all"))

	statCmd := dataCmd(&cobra.Command{
		Use:   "stat",
		Short: "Prints the entry count of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := store.Len()
			store.Abort()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			name := store.Name()
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Fprintf(out, "path:     %s\n", store.Env().Path())
			fmt.Fprintf(out, "backend:  %s\n", store.Env().Backend())
			fmt.Fprintf(out, "database: %s\n", name)
			fmt.Fprintf(out, "entries:  %d\n", n)
			if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics {
				tkv.WriteMetrics(out)
			}
			return nil
		},
	})
	statCmd.Flags().Bool("metrics", false, wrapString("Also print the operation counters in Prometheus text format"))

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of tkv",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tkv.Version())
		},
	})
	return root
}

func listEntries(cmd *cobra.Command, s *stringStore, reverse bool, limit int) error {
	first, step := s.Begin, (*tkv.Cursor[string, string]).Next
	if reverse {
		first, step = s.End, (*tkv.Cursor[string, string]).Prev
	}
	c, err := first()
	if tkv.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer c.Close()

	for n := 0; limit == 0 || n < limit; n++ {
		k, err := c.Key()
		if err != nil {
			return err
		}
		val, err := c.Value()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, val)
		ok, err := step(c)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}
