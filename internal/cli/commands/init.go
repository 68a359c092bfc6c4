package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/esgraph/internal/cli/config"
	"github.com/conduit-lang/esgraph/internal/cli/ui"
	"github.com/conduit-lang/esgraph/internal/compiler"
	strutil "github.com/conduit-lang/esgraph/internal/util/strings"
)

var (
	initYes   bool
	initForce bool
)

// askConfig fills cfg interactively; replaced in tests
var askConfig = surveyConfig

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an esgraph.yml configuration file",
		Long: `Create esgraph.yml in the project directory.

Without --yes you are asked for the source format, the source directory,
the generated-name prefix, the output file and the compilation policies.`,
		Example: `  # Answer the prompts
  esgraph init

  # Write the defaults
  esgraph init --yes

  # Replace an existing file
  esgraph init --force`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Write the default configuration without prompting")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if config.InProject(projectDir) && !initForce {
		return fmt.Errorf("%s already exists in %s (use --force to overwrite)", config.FileName, projectDir)
	}

	cfg := config.Default()
	cfg.Output.File = "esgraph.json"
	if !initYes {
		if err := askConfig(cfg); err != nil {
			return err
		}
	}

	path := filepath.Join(projectDir, config.FileName)
	if err := config.Write(path, cfg); err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigInvalid(err, noColor))
		return reportedError{err}
	}

	ui.WriteSuccess(cmd.OutOrStdout(), "Created "+path, noColor)
	return nil
}

func surveyConfig(cfg *config.Config) error {
	if err := survey.AskOne(&survey.Select{
		Message: "Declaration format:",
		Options: []string{config.FormatGo, config.FormatHCL},
		Default: cfg.Source.Format,
		Description: func(value string, index int) string {
			if value == config.FormatHCL {
				return "schema files (*.hcl)"
			}
			return "annotated Go structs"
		},
	}, &cfg.Source.Format); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Source directory:",
		Default: cfg.Source.Dir,
	}, &cfg.Source.Dir, survey.WithValidator(survey.Required), survey.WithValidator(directoryExists)); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Generated name prefix:",
		Default: cfg.Output.Prefix,
	}, &cfg.Output.Prefix, survey.WithValidator(identifierPrefix)); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Graph output file (empty to skip):",
		Default: cfg.Output.File,
	}, &cfg.Output.File); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Select{
		Message: "Invalid name overrides:",
		Options: []string{compiler.OverrideFallback.String(), compiler.OverrideStrict.String()},
		Default: cfg.Policy.Overrides,
	}, &cfg.Policy.Overrides); err != nil {
		return err
	}

	return survey.AskOne(&survey.Select{
		Message: "Duplicate property names:",
		Options: []string{compiler.FirstWins.String(), compiler.LastWins.String()},
		Default: cfg.Policy.Duplicates,
	}, &cfg.Policy.Duplicates)
}

func directoryExists(ans interface{}) error {
	dir, _ := ans.(string)
	info, err := os.Stat(filepath.Join(projectDir, dir))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func identifierPrefix(ans interface{}) error {
	prefix, _ := ans.(string)
	if prefix != "" && !strutil.IsIdentifier(prefix+"X") {
		return fmt.Errorf("%q cannot start a Go identifier", prefix)
	}
	return nil
}
