package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pfoca/internal/app"
	"pfoca/internal/card"
	"pfoca/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a PfocaApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "SaveProject").
func newApp(ctx context.Context, operation string) (*app.PfocaApp, error) {
	paths, err := app.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("resolving default paths: %w", err)
	}

	cfg, err := config.ReadFromFile(paths.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewPfocaApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts on the terminal without echo. confirm asks twice.
func readPassphrase(prompt string, confirm bool) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("a terminal is required to enter a passphrase")
	}
	fmt.Fprint(os.Stderr, prompt)
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if len(first) == 0 {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	if confirm {
		fmt.Fprint(os.Stderr, "Confirm passphrase: ")
		second, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		if string(first) != string(second) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}
	return string(first), nil
}

func printReport(r *card.LoadReport) {
	fmt.Printf("Loaded %s (saved %s)\n", r.Name, r.SavedAt.Local().Format("2006-01-02 15:04"))
	for _, f := range r.Failures {
		fmt.Printf("  %s could not be loaded: %v\n", f.Slot, f.Err)
	}
}

var rootCmd = &cobra.Command{
	Use:          "pfoca",
	Short:        "Photo card projects",
	SilenceUsage: true,
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
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to resolve default paths: %w", err)
		}

		cfg := config.NewConfig(paths.BaseDir)
		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Base Dir: %s\n", paths.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to resolve default paths: %w", err)
		}

		cfg, err := config.ReadFromFile(paths.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", paths.ConfigPath)
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Projects Dir:  %s\n", cfg.DocumentsDir)
		fmt.Printf("Autosave Dir:  %s\n", cfg.AutosaveDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Store:         %s\n", cfg.Store.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:         %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

var configVaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage vault",
}

var configVaultCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the vault is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ValidateVault")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ValidateVault(); err != nil {
			return fmt.Errorf("vault check failed: %w", err)
		}
		fmt.Println("Vault OK")
		return nil
	},
}

// project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage saved projects",
}

var projectNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a project from two photos",
	RunE: func(cmd *cobra.Command, args []string) error {
		photo1, _ := cmd.Flags().GetString("photo1")
		photo2, _ := cmd.Flags().GetString("photo2")
		name, _ := cmd.Flags().GetString("name")

		a, err := newApp(cmd.Context(), "SaveProject")
		if err != nil {
			return err
		}
		defer a.Close()

		file, err := a.NewProject(photo1, photo2, name)
		if err != nil {
			return fmt.Errorf("saving project: %w", err)
		}
		fmt.Printf("Saved %s (%d bytes)\n", file.Name, file.SizeBytes)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("remote")

		a, err := newApp(cmd.Context(), "ListProjects")
		if err != nil {
			return err
		}
		defer a.Close()

		if remote {
			names, err := a.RemoteProjects()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("No projects in vault.")
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		}

		files, err := a.ListProjects()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No saved projects.")
			return nil
		}
		for _, f := range files {
			fmt.Printf("%-32s  %s  %d\n", f.DisplayName(), f.ModifiedAt.Local().Format("2006-01-02 15:04:05"), f.SizeBytes)
		}
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Load a project and describe it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "LoadProject")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.OpenProject(args[0])
		if err != nil {
			return err
		}
		printReport(report)
		snap := a.Workspace().Snapshot()
		for _, s := range card.Slots {
			p := snap.Photos[s]
			if !p.HasImage() {
				continue
			}
			b := p.Image.Bounds()
			fmt.Printf("  %s  %dx%d  offset=(%.1f, %.1f)  scale=%.3f  cover=%.3f\n",
				s, b.Dx(), b.Dy(), p.Offset.Width, p.Offset.Height, p.Scale, p.CoverScale)
		}
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete NAME...",
	Short: "Delete saved projects",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "DeleteProjects")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteProjects(args...); err != nil {
			return err
		}
		fmt.Printf("Deleted %d project(s)\n", len(args))
		return nil
	},
}

var projectRenderCmd = &cobra.Command{
	Use:   "render NAME",
	Short: "Render a project to a PNG card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp(cmd.Context(), "RenderProject")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.RenderProject(args[0], out)
		if err != nil {
			return err
		}
		printReport(report)
		fmt.Printf("Rendered to %s\n", out)
		return nil
	},
}

var projectExportCmd = &cobra.Command{
	Use:   "export NAME",
	Short: "Export a project for sharing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		passphrase := ""
		if encrypt {
			var err error
			if passphrase, err = readPassphrase("Passphrase: ", true); err != nil {
				return err
			}
		}

		a, err := newApp(cmd.Context(), "ExportProject")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ExportProject(args[0], out, passphrase); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", out)
		return nil
	},
}

var projectImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a project archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		open, _ := cmd.Flags().GetBool("open")

		a, err := newApp(cmd.Context(), "ImportProject")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := ""
		sealed, err := a.IsSealedFile(args[0])
		if err != nil {
			return err
		}
		if sealed {
			if passphrase, err = readPassphrase("Passphrase: ", false); err != nil {
				return err
			}
		}

		if open {
			report, err := a.OpenExternal(args[0], passphrase)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		}

		file, err := a.ImportProject(args[0], name, passphrase)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s\n", file.Name)
		return nil
	},
}

var projectBackupCmd = &cobra.Command{
	Use:   "backup NAME...",
	Short: "Upload projects to the vault",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "BackupProject")
		if err != nil {
			return err
		}
		defer a.Close()

		for _, name := range args {
			if err := a.BackupProject(name); err != nil {
				return err
			}
		}
		fmt.Printf("Backed up %d project(s)\n", len(args))
		return nil
	},
}

var projectFetchCmd = &cobra.Command{
	Use:   "fetch NAME",
	Short: "Download a project from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "FetchProject")
		if err != nil {
			return err
		}
		defer a.Close()

		file, err := a.FetchProject(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Fetched %s (%d bytes)\n", file.Name, file.SizeBytes)
		return nil
	},
}

// layers command
var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Manage saved decoration layers",
}

var layersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved decoration layers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "NamedLayers")
		if err != nil {
			return err
		}
		defer a.Close()

		layers := a.NamedLayers()
		if len(layers) == 0 {
			fmt.Println("No saved layers.")
			return nil
		}
		for _, l := range layers {
			fmt.Printf("%s  %-24s  %s  %d sticker(s), %d text(s)\n",
				l.ID, l.Name, l.CreatedAt.Local().Format("2006-01-02 15:04"), len(l.Stickers), len(l.Texts))
		}
		return nil
	},
}

var layersSaveCmd = &cobra.Command{
	Use:   "save PROJECT",
	Short: "Save a project's decoration layer to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slotNum, _ := cmd.Flags().GetInt("slot")
		name, _ := cmd.Flags().GetString("name")
		if slotNum != 1 && slotNum != 2 {
			return fmt.Errorf("--slot must be 1 or 2")
		}

		a, err := newApp(cmd.Context(), "SaveNamedLayer")
		if err != nil {
			return err
		}
		defer a.Close()

		layer, err := a.SaveLayer(args[0], card.Slot(slotNum-1), name)
		if err != nil {
			return err
		}
		fmt.Printf("Saved layer %s (%s)\n", layer.Name, layer.ID)
		return nil
	},
}

var layersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a saved decoration layer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "DeleteNamedLayer")
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.DeleteLayer(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no layer with id %s", args[0])
		}
		fmt.Println("Layer deleted")
		return nil
	},
}

// fonts command
var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "Manage downloaded fonts",
}

var fontsGetCmd = &cobra.Command{
	Use:   "get NAME FILE",
	Short: "Download a font into the cache",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		display, _ := cmd.Flags().GetString("display-name")
		if display == "" {
			display = args[0]
		}

		a, err := newApp(cmd.Context(), "EnsureFont")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.EnsureFont(cmd.Context(), card.FontInfo{Name: args[0], DisplayName: display, File: args[1]})
		if err != nil {
			return err
		}
		fmt.Printf("Font cached at %s\n", path)
		return nil
	},
}

var fontsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently used fonts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "RecentFonts")
		if err != nil {
			return err
		}
		defer a.Close()

		fonts := a.RecentFonts()
		if len(fonts) == 0 {
			fmt.Println("No recently used fonts.")
			return nil
		}
		for _, f := range fonts {
			fmt.Printf("%-24s  %s\n", f.DisplayName, f.File)
		}
		return nil
	},
}

// autosave command
var autosaveCmd = &cobra.Command{
	Use:   "autosave",
	Short: "Inspect the autosaved workspace",
}

var autosaveRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the autosaved workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		saveAs, _ := cmd.Flags().GetString("save-as")

		a, err := newApp(cmd.Context(), "TryRestore")
		if err != nil {
			return err
		}
		defer a.Close()

		restored, file, err := a.RestoreAutosave(saveAs)
		if err != nil {
			return err
		}
		if !restored {
			fmt.Println("Nothing to restore.")
			return nil
		}
		snap := a.Workspace().Snapshot()
		var parts []string
		for _, s := range card.Slots {
			state := "empty"
			if snap.Photos[s].HasImage() {
				state = "photo"
			}
			if l := snap.Layers[s]; l.Attached {
				state += fmt.Sprintf(" + layer (%d items)", len(l.Stickers)+len(l.Texts))
			}
			parts = append(parts, fmt.Sprintf("%s: %s", s, state))
		}
		fmt.Printf("Restored %s\n", strings.Join(parts, ", "))
		if file != nil {
			fmt.Printf("Saved as %s\n", file.Name)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configVaultCmd)
	configVaultCmd.AddCommand(configVaultCheckCmd)

	// project subcommands
	projectCmd.AddCommand(projectNewCmd)
	projectNewCmd.Flags().String("photo1", "", "Image for the left slot")
	projectNewCmd.Flags().String("photo2", "", "Image for the right slot")
	projectNewCmd.Flags().StringP("name", "n", "", "Project name (default: timestamp)")
	projectNewCmd.MarkFlagRequired("photo1")
	projectNewCmd.MarkFlagRequired("photo2")
	projectCmd.AddCommand(projectListCmd)
	projectListCmd.Flags().Bool("remote", false, "List projects in the vault instead")
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectRenderCmd)
	projectRenderCmd.Flags().StringP("out", "o", "card.png", "Output PNG path")
	projectCmd.AddCommand(projectExportCmd)
	projectExportCmd.Flags().StringP("out", "o", "", "Output archive path")
	projectExportCmd.Flags().BoolP("encrypt", "e", false, "Seal the export with a passphrase")
	projectExportCmd.MarkFlagRequired("out")
	projectCmd.AddCommand(projectImportCmd)
	projectImportCmd.Flags().StringP("name", "n", "", "Project name (default: file name)")
	projectImportCmd.Flags().Bool("open", false, "Load the project after importing")
	projectCmd.AddCommand(projectBackupCmd)
	projectCmd.AddCommand(projectFetchCmd)

	// layers subcommands
	layersCmd.AddCommand(layersListCmd)
	layersCmd.AddCommand(layersSaveCmd)
	layersSaveCmd.Flags().Int("slot", 1, "Photo slot (1 or 2)")
	layersSaveCmd.Flags().StringP("name", "n", "", "Layer name (default: save time)")
	layersCmd.AddCommand(layersDeleteCmd)

	// fonts subcommands
	fontsCmd.AddCommand(fontsGetCmd)
	fontsGetCmd.Flags().String("display-name", "", "Name shown in font pickers")
	fontsCmd.AddCommand(fontsRecentCmd)

	// autosave subcommands
	autosaveCmd.AddCommand(autosaveRestoreCmd)
	autosaveRestoreCmd.Flags().String("save-as", "", "Save the restored workspace as a project")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(layersCmd)
	rootCmd.AddCommand(fontsCmd)
	rootCmd.AddCommand(autosaveCmd)
}
