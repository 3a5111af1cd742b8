package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/brettbedarf/treestore/internal/util"
	"github.com/brettbedarf/treestore/tree"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type repoFunc func() *tree.Repository

// eventPrinter renders change events the way a list view would apply them
type eventPrinter struct {
	out io.Writer
}

func (p *eventPrinter) OnChange(ev tree.ChangeEvent) {
	parent := "<none>"
	if ev.Parent != nil {
		parent = displayName(ev.Parent)
	}
	switch ev.Reason {
	case tree.Added:
		fmt.Fprintf(p.out, "added %q at row %d of %s\n", ev.Subject.Name(), util.Deref(ev.CurrentIndex, -1), parent)
	case tree.Removed:
		fmt.Fprintf(p.out, "removed %q from row %d of %s\n", ev.Subject.Name(), util.Deref(ev.PreviousIndex, -1), parent)
	case tree.Renamed:
		fmt.Fprintf(p.out, "renamed %q: row %d -> %d of %s\n", ev.Subject.Name(),
			util.Deref(ev.PreviousIndex, -1), util.Deref(ev.CurrentIndex, -1), parent)
	}
}

// displayName shows the unnamed root as "/"
func displayName(it tree.Item) string {
	if it.Parent() == nil && it.Repository() != nil && it.Repository().Root() == it {
		return "/"
	}
	return it.Name()
}

func kindTag(it tree.Item) string {
	if it.IsContainer() {
		return "d"
	}
	return "f"
}

func formatIDPath(path []uuid.UUID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = id.String()
	}
	return strings.Join(parts, "/")
}

// resolveArg finds the item named by a "/"-joined id path starting at the
// root. An empty path or "/" is the root; a single id is looked up directly.
func resolveArg(repo *tree.Repository, arg string) (tree.Item, error) {
	arg = strings.Trim(arg, "/")
	if arg == "" {
		return repo.Root(), nil
	}
	segs := strings.Split(arg, "/")
	path := make([]uuid.UUID, len(segs))
	for i, s := range segs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", s, err)
		}
		path[i] = id
	}

	var (
		it tree.Item
		ok bool
	)
	if len(path) == 1 && path[0] != repo.Root().ID() {
		it, ok = repo.Lookup(path[0])
	} else {
		it, ok = repo.Resolve(path)
	}
	if !ok {
		return nil, fmt.Errorf("no item at %s", arg)
	}
	return it, nil
}

func resolveFolderArg(repo *tree.Repository, args []string, i int) (*tree.Folder, error) {
	if len(args) <= i {
		return repo.Root(), nil
	}
	it, err := resolveArg(repo, args[i])
	if err != nil {
		return nil, err
	}
	f, ok := tree.AsFolder(it)
	if !ok {
		return nil, fmt.Errorf("%s is a file, not a folder", args[i])
	}
	return f, nil
}

func newTreeCmd(repo repoFunc) *cobra.Command {
	var showIDs bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the whole tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			repo().Walk(func(it tree.Item, depth int) bool {
				line := strings.Repeat("  ", depth) + displayName(it)
				if it.IsContainer() && depth > 0 {
					line += "/"
				}
				if showIDs {
					line += "  " + it.ID().String()
				}
				fmt.Fprintln(out, line)
				return true
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show item ids")
	return cmd
}

func newLsCmd(repo repoFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [id-path]",
		Short: "List a folder's contents in order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveFolderArg(repo(), args, 0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, c := range f.Contents() {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", i, kindTag(c), c.Name(), formatIDPath(c.IDPath()))
			}
			return nil
		},
	}
}

func newCreateCmd(repo repoFunc, use, short string, create func(name string) tree.Item) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name> [parent-id-path]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := resolveFolderArg(repo(), args, 1)
			if err != nil {
				return err
			}
			it := create(args[0])
			if err := parent.Add(it); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatIDPath(it.IDPath()))
			return nil
		},
	}
}

func newMkdirCmd(repo repoFunc) *cobra.Command {
	return newCreateCmd(repo, "mkdir", "Create a folder", func(name string) tree.Item {
		return tree.NewFolder(name, uuid.New())
	})
}

func newTouchCmd(repo repoFunc) *cobra.Command {
	return newCreateCmd(repo, "touch", "Create a file", func(name string) tree.Item {
		return tree.NewFile(name, uuid.New())
	})
}

func newRmCmd(repo repoFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id-path>",
		Short: "Remove an item and everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := resolveArg(repo(), args[0])
			if err != nil {
				return err
			}
			parent := it.Parent()
			if parent == nil {
				return fmt.Errorf("cannot remove the root folder")
			}
			return parent.Remove(it)
		},
	}
}

func newMvCmd(repo repoFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "mv <id-path> <new-name>",
		Aliases: []string{"rename"},
		Short:   "Rename an item",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := resolveArg(repo(), args[0])
			if err != nil {
				return err
			}
			if it.Parent() == nil {
				if err := it.Rename(args[1]); err != nil {
					return err
				}
				// the root has no parent to emit through
				return repo().Save()
			}
			return it.Rename(args[1])
		},
	}
}

func newResolveCmd(repo repoFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id-path>",
		Short: "Show the item at an id path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := resolveArg(repo(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", kindTag(it), displayName(it), formatIDPath(it.IDPath()))
			return nil
		},
	}
}
