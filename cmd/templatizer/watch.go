package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/templatizer/internal/watch"
)

var watchBuild buildFlags

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Rebuild a local template whenever its files change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			return fmt.Errorf("%s is not a directory", args[0])
		}
		j, err := watchBuild.resolve(cmd, []string{root})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if err := watchBuild.run(ctx, out, j); err != nil {
			logger.Error("build failed", "error", err)
		}

		patterns := append([]string{}, watch.DefaultPatterns...)
		if tpl, err := newLoader().Load(ctx, root); err == nil {
			for _, g := range tpl.Manifest.Files {
				for _, entry := range g.Files {
					patterns = append(patterns, path.Join(g.Source, strings.TrimSpace(entry)))
				}
			}
		}

		w := watch.New(root, patterns, watch.DefaultWindow, func(changed []string) {
			logger.Info("rebuilding", "changed", changed)
			if err := watchBuild.run(ctx, out, j); err != nil {
				logger.Error("build failed", "error", err)
			}
		}, logger)
		for _, dest := range []string{watchBuild.outDir, watchBuild.output} {
			if dest == "" {
				continue
			}
			abs, err := filepath.Abs(dest)
			if err != nil {
				continue
			}
			if rel, err := filepath.Rel(root, abs); err == nil && !strings.HasPrefix(rel, "..") {
				w.Exclude(rel)
			}
		}

		return w.Run(ctx)
	},
}

func init() {
	watchBuild.register(watchCmd)
}
