package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/app"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/config"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/tree"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config, creates an ImaginApp, and restores the
// persisted library state. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "AddRoot", "Rate").
func newApp(cmd *cobra.Command, operation string) (*app.ImaginApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewImaginApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	issues, err := a.RestoreState(cmd.Context())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("restoring library state: %w", err)
	}
	for _, issue := range issues {
		fmt.Printf("Root not restored: %s (%v)\n", issue.Path, issue.Err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "imagin",
	Short: "Photo library browser",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Create config with defaults
		cfg := config.NewConfig(defaults["base_dir"])

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Settings:   %s\n", cfg.Settings.Type)
		fmt.Printf("Sealing:    %s\n", cfg.Sealing.Type)
		fmt.Printf("Thumbnails: %dpx, %s cache\n", cfg.Thumbnails.Size, cfg.Thumbnails.Cache.Type)
		return nil
	},
}

// root command
var rootsCmd = &cobra.Command{
	Use:   "root",
	Short: "Manage library roots",
}

var rootAddCmd = &cobra.Command{
	Use:   "add PATH",
	Short: "Add a folder as a library root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "AddRoot")
		if err != nil {
			return err
		}
		defer a.Close()

		node, err := a.AddRoot(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("adding root: %w", err)
		}

		fmt.Printf("Added root: %s (%d subfolder(s))\n", node.Path(), len(node.Children()))
		return nil
	},
}

var rootRemoveCmd = &cobra.Command{
	Use:   "remove PATH",
	Short: "Remove a library root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "RemoveRoot")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveRoot(args[0]); err != nil {
			return fmt.Errorf("removing root: %w", err)
		}

		fmt.Printf("Removed root: %s\n", args[0])
		return nil
	},
}

var rootListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library roots",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListRoots")
		if err != nil {
			return err
		}
		defer a.Close()

		roots := a.Roots()
		if len(roots) == 0 {
			fmt.Println("No roots configured.")
			return nil
		}

		for _, r := range roots {
			fmt.Printf("%s (%d subfolder(s))\n", r.Path(), len(r.Children()))
		}
		return nil
	},
}

// tree command
var treeCmd = &cobra.Command{
	Use:   "tree [PATH]",
	Short: "Show the folder tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Tree")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) > 0 {
			node, err := a.Expand(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTree(node, 0)
			return nil
		}

		roots := a.Roots()
		if len(roots) == 0 {
			fmt.Println("No roots configured.")
			return nil
		}
		for _, r := range roots {
			printTree(r, 0)
		}
		return nil
	},
}

// printTree writes one folder per line, indented by depth. Folders
// whose subfolders have not been scanned yet are marked.
func printTree(node *tree.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	name := node.Name()
	if depth == 0 {
		name = node.Path()
	}
	if node.State() == tree.Unloaded {
		fmt.Printf("%s%s/ (unscanned)\n", indent, name)
		return
	}
	fmt.Printf("%s%s/\n", indent, name)
	for _, child := range node.Children() {
		printTree(child, depth+1)
	}
}

// photos command
var photosCmd = &cobra.Command{
	Use:   "photos PATH",
	Short: "List the photos in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "SelectFolder")
		if err != nil {
			return err
		}
		defer a.Close()

		photos, err := a.SelectFolder(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if len(photos) == 0 {
			fmt.Println("No photos found.")
			return nil
		}

		for _, p := range photos {
			stars := strings.Repeat("*", p.Rating())
			fmt.Printf("%s  %-5s  %-10s  %s\n",
				p.DateCreated.Format("2006-01-02 15:04"),
				stars,
				p.Label(),
				p.Name(),
			)
		}
		return nil
	},
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Show a photo's metadata and capture fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Info")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.Info(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		p := info.Record
		fmt.Printf("Name:     %s\n", p.Name())
		fmt.Printf("Created:  %s\n", p.DateCreated.Format("2006-01-02 15:04:05"))
		fmt.Printf("Rating:   %d\n", p.Rating())
		if label := p.Label(); label != "" {
			fmt.Printf("Label:    %s\n", label)
		}
		if e := info.EXIF; e != nil {
			printField("Camera", e.CameraModel)
			printField("Lens", e.Lens)
			printField("Focal", e.FocalLength)
			printField("Aperture", e.Aperture)
			printField("Shutter", e.ShutterSpeed)
			printField("ISO", e.ISO)
			printField("Exp. bias", e.ExposureBias)
			if !e.CaptureDate.IsZero() {
				fmt.Printf("Captured: %s\n", e.CaptureDate.Format("2006-01-02 15:04:05"))
			}
		}
		return nil
	},
}

// printField writes one labeled value, skipping fields the camera did
// not record.
func printField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-9s %s\n", label+":", value)
}

// rate command
var rateCmd = &cobra.Command{
	Use:   "rate RATING FILE...",
	Short: "Apply a star rating (0-5) to photos",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid rating %q: %w", args[0], err)
		}

		a, err := newApp(cmd, "Rate")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Rate(cmd.Context(), rating, args[1:]...)
		if err != nil {
			return fmt.Errorf("rating failed: %w", err)
		}

		fmt.Printf("Rated %d photo(s)\n", count)
		return nil
	},
}

// label command
var labelCmd = &cobra.Command{
	Use:   "label LABEL FILE...",
	Short: "Apply a color label to photos (empty label clears it)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Label")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Label(cmd.Context(), args[0], args[1:]...)
		if err != nil {
			return fmt.Errorf("labeling failed: %w", err)
		}

		fmt.Printf("Labeled %d photo(s)\n", count)
		return nil
	},
}

// thumbs command
var thumbsCmd = &cobra.Command{
	Use:   "thumbs PATH",
	Short: "Build thumbnails for every photo in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Thumbs")
		if err != nil {
			return err
		}
		defer a.Close()

		built, err := a.Thumbs(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("building thumbnails: %w", err)
		}

		fmt.Printf("Built %d thumbnail(s)\n", built)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root subcommands
	rootsCmd.AddCommand(rootAddCmd)
	rootsCmd.AddCommand(rootRemoveCmd)
	rootsCmd.AddCommand(rootListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(rootsCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(photosCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(thumbsCmd)
}
