// Package main provides the entry point for the ttsgate CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/ttsgate/internal/cache"
	"github.com/dgnsrekt/ttsgate/internal/ssml"
	"github.com/dgnsrekt/ttsgate/internal/tts"
	"github.com/dgnsrekt/ttsgate/internal/tts/engines"
)

const appName = "ttsgate"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	cfg        tts.Config

	// Flags shared by every command. They win over the config file and
	// the environment, but only when given on the command line.
	flagRegion    string
	flagEndpoint  string
	flagLogLevel  string
	flagVoice     string
	flagLanguage  string
	flagRate      string
	flagPitch     string
	flagVolume    string
	flagStyle     string
	flagFormat    string
	flagLookahead int
	flagMarkdown  bool

	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "Stream text to Azure neural voices, sentence by sentence",
		Long: paragraph(
			fmt.Sprintf("\n%s turns streamed text into audio as soon as each sentence is complete, using the Azure speech service.", keyword("ttsgate")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}
)

// loadConfig resolves the effective configuration: defaults, then the
// config file, then TTSGATE_* variables, then explicit flags.
func loadConfig(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		path, err := homedir.Expand(configFile)
		if err != nil {
			return fmt.Errorf("unable to expand config path: %w", err)
		}
		configFile = path
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	c, err := tts.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	applyFlags(cmd, &c)
	cfg = c

	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.Warn("Unknown log level", "level", cfg.Log.Level)
	}
	log.Debug("Effective configuration", "config", cfg.Describe())
	return nil
}

// applyFlags copies flags that were set on the command line into c. Voice
// and language are resolved against the catalog by resolveVoice instead.
func applyFlags(cmd *cobra.Command, c *tts.Config) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("region") {
		c.Region = flagRegion
	}
	if changed("endpoint") {
		c.Endpoint = flagEndpoint
	}
	if changed("log-level") {
		c.Log.Level = flagLogLevel
	}
	if changed("rate") {
		c.Voice.Rate = ssml.NormalizeRate(flagRate)
	}
	if changed("pitch") {
		c.Voice.Pitch = flagPitch
	}
	if changed("volume") {
		c.Voice.Volume = flagVolume
	}
	if changed("style") {
		c.Voice.Style = flagStyle
	}
	if changed("format") {
		c.Voice.OutputFormat = flagFormat
	}
	if changed("lookahead") {
		c.Lookahead = flagLookahead
	}
	if changed("markdown") {
		c.StripMarkdown = flagMarkdown
	}
}

// requestedVoice returns the voice and language given on the command line.
func requestedVoice(cmd *cobra.Command) tts.VoiceParameters {
	var p tts.VoiceParameters
	if cmd.Flags().Changed("voice") {
		p.Voice = flagVoice
	}
	if cmd.Flags().Changed("language") {
		p.Language = flagLanguage
	}
	return p
}

// resolveVoice merges requested onto configured. A requested language
// without a voice picks a matching voice from the catalog.
func resolveVoice(ctx context.Context, catalog tts.VoiceCatalog, configured, requested tts.VoiceParameters) tts.VoiceParameters {
	if requested.Language == "" || catalog == nil {
		return configured.Merge(requested)
	}
	voices, err := catalog.Voices(ctx)
	if err != nil {
		log.Warn("Voice catalog unavailable, keeping the configured voice", "err", err)
	}
	return tts.ResolveParameters(voices, configured, requested)
}

// newEngine builds the Azure engine and the voice catalog cache described
// by c. The returned cleanup closes the cache.
func newEngine(c tts.Config) (*engines.AzureEngine, func(), error) {
	if err := c.Validate(); err != nil {
		return nil, func() {}, err
	}

	store, err := newCacheStore(c.Cache)
	if err != nil {
		log.Warn("Voice cache disabled", "err", err)
		store = nil
	}

	ac := engines.AzureConfigFrom(c)
	ac.Cache = store
	ac.Logger = log.Default().WithPrefix("azure")

	engine, err := engines.NewAzureEngine(ac)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, func() {}, err
	}

	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}
	return engine, cleanup, nil
}

func newCacheStore(c tts.CacheConfig) (*cache.Store, error) {
	dir := c.Dir
	if dir == "" {
		d, err := gap.NewScope(gap.User, appName).CacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, err
	}

	cc := cache.DefaultConfig()
	cc.MemoryCapacity = int64(c.MemoryMB) << 20
	cc.DiskCapacity = int64(c.DiskMB) << 20
	cc.TTL = c.TTL
	if c.DiskMB > 0 {
		cc.DiskPath = filepath.Join(dir, "voices")
	} else {
		cc.DiskPath = ""
	}
	store, err := cache.NewStore(cc, log.Default().WithPrefix("cache"))
	if err != nil {
		return nil, err
	}
	store.StartCleanup(time.Hour)
	return store, nil
}

// newOrchestrator wires the engine into an orchestrator configured by c.
func newOrchestrator(c tts.Config, synth tts.Synthesizer, observers ...tts.Observer) *tts.Orchestrator {
	opts := c.OrchestratorOptions()
	opts = append(opts, tts.WithLogger(log.Default().WithPrefix("tts")))
	for _, o := range observers {
		opts = append(opts, tts.WithObserver(o))
	}
	return tts.NewOrchestrator(synth, opts...)
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if g := guidance(err); g != "" {
			fmt.Fprintln(os.Stderr, paragraph(g))
		}
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

// guidance returns setup help attached to a configuration error.
func guidance(err error) string {
	var te *tts.TTSError
	if errors.As(err, &te) {
		if g, ok := te.Context["guidance"].(string); ok {
			return g
		}
	}
	return ""
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	pf.StringVar(&flagRegion, "region", "", "Azure region, such as eastus")
	pf.StringVar(&flagEndpoint, "endpoint", "", "custom endpoint overriding the region host")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&flagVoice, "voice", "v", "", "voice short name, such as en-US-JennyNeural")
	pf.StringVarP(&flagLanguage, "language", "l", "", "language tag; picks a matching voice unless --voice is given")
	pf.StringVarP(&flagRate, "rate", "r", "", `speaking rate: a multiplier such as 1.2, or a percentage such as "+20%"`)
	pf.StringVar(&flagPitch, "pitch", "", "prosody pitch, such as high or +5%")
	pf.StringVar(&flagVolume, "volume", "", "prosody volume, such as loud or +10%")
	pf.StringVar(&flagStyle, "style", "", "speaking style, such as cheerful")
	pf.StringVarP(&flagFormat, "format", "f", "", "Azure output format, such as "+tts.DefaultOutputFormat)
	pf.IntVar(&flagLookahead, "lookahead", 1, "synthesis calls allowed in flight per session")
	pf.BoolVar(&flagMarkdown, "markdown", false, "strip markdown syntax before speaking")

	rootCmd.AddCommand(speakCmd, voicesCmd, serveCmd, validateCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("TTSGATE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], appName+".yml")
}

// joinArgs turns command arguments into one text, or "" when there are none.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
