package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# Azure Speech credentials. TTSGATE_KEY and TTSGATE_REGION override these.
key: ""
region: "eastus"
# endpoint: "https://eastus.tts.speech.microsoft.com"

voice:
  name: "en-US-JennyNeural"
  language: "en-US"
  # a multiplier such as 1.2, or a percentage such as "+20%"
  rate: "0%"
  pitch: "default"
  volume: "default"
  # style: "cheerful"
  # style_degree: "1"
  # role: "YoungAdultFemale"
  output_format: "audio-24khz-96kbitrate-mono-mp3"

# speak sentence by sentence as text arrives
streaming: true
# synthesis calls allowed in flight per session
lookahead: 1
# remove markdown syntax before speaking
strip_markdown: false

sentence:
  min_length: 3
  max_length: 1000
  lead_window: 64

http:
  timeout: "30s"
  requests_per_minute: 600

# voice catalog cache
cache:
  # dir: "~/.cache/ttsgate"
  memory_mb: 8
  disk_mb: 64
  ttl: "24h"

server:
  addr: "127.0.0.1:8080"

log:
  level: "info"
`

var configCmd = &cobra.Command{
	Use:               "config",
	Hidden:            false,
	Short:             "Edit the ttsgate config file",
	Long:              paragraph(fmt.Sprintf("\n%s the ttsgate config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example:           paragraph("ttsgate config\nttsgate config --config path/to/config.yml"),
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("ttsgate", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file. It will hold a key, so keep it private.
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.OpenFile(configFile, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
