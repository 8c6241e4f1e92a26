package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/xwlm/internal/config"
	"github.com/1broseidon/xwlm/internal/fsops"
	"github.com/1broseidon/xwlm/internal/tui"
)

// needsSetup reports whether nothing tells xwlm where the compositor
// config is yet.
func needsSetup(res *config.LoadResult) bool {
	return !res.Exists && compositorConfig == "" && res.Config.ResolvedConfigPath() == ""
}

// runSetup shows the setup form and saves the answers to the settings file.
func runSetup(cmd *cobra.Command, res *config.LoadResult) (*config.Config, error) {
	logger, closer, err := fileLogger(res.Config)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	cfg, err := tui.RunSetup(cmd.Context(), res.Config, deps.env, tui.Options{Logger: logger})
	if err != nil {
		return nil, err
	}
	if err := cfg.Save(fsops.NewRealFS(), res.File); err != nil {
		return nil, err
	}
	printSuccess(cmd.ErrOrStderr(), "settings saved to "+res.File)
	return cfg, nil
}

// runEditor opens the interactive editor, running setup first when no
// settings exist.
func runEditor(cmd *cobra.Command, args []string) error {
	res, err := loadSettings()
	if err != nil {
		return err
	}
	cfg := res.Config
	if needsSetup(res) {
		cfg, err = runSetup(cmd, res)
		if errors.Is(err, tui.ErrSetupAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	logger, closer, err := fileLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	sess, err := openSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("editor starting", "dialect", string(sess.Dialect().Kind()), "config", sess.ConfigPath())
	if err := tui.Run(cmd.Context(), sess, tui.Options{Logger: logger}); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose the compositor and config file to edit",
	Long: `Ask which compositor and config file xwlm should edit and save the answers
to the settings file. Runs automatically the first time xwlm starts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadSettings()
		if err != nil {
			return err
		}
		_, err = runSetup(cmd, res)
		if errors.Is(err, tui.ErrSetupAborted) {
			printWarning(cmd.ErrOrStderr(), "setup cancelled, nothing saved")
			return nil
		}
		return err
	},
}
