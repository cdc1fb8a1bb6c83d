package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"stager/internal/domain/presets"
	"stager/internal/infra"
	"stager/internal/metrics"
	"stager/internal/providers/image"
	"stager/internal/session"
	"stager/internal/storage"
	"stager/internal/upload"
	"stager/pkg/zip"
)

var (
	presetsFlag  string
	providerFlag string
	verboseFlag  bool

	imageFlag    string
	promptFlag   string
	exampleFlag  int
	styleFlag    string
	keepItemFlag bool
	outFlag      string
	bundleFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "stagectl",
	Short: "Stage product photos in AI-generated scenes from the terminal",
	Long: `stagectl runs the same staging session as the API in-process: it loads a
product photo, applies a scene description and optional style, asks the
configured image provider for a composite and writes the result to disk.

Examples:
  stagectl styles
  stagectl generate -i mug.png -p "on a marble counter" -s modern -o staged.png
  stagectl generate -i mug.png --example 1 --keep-item --bundle scene.zip
  IMAGE_PROVIDER=synthetic stagectl generate -i mug.png -p "floating in space"`,
	SilenceUsage: true,
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the style presets and example prompts",
	RunE:  runStyles,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one staged composite",
	RunE:  runGenerate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&presetsFlag, "presets", "", "YAML style catalogue (defaults to STYLE_PRESETS_FILE or the built-in set)")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "image provider: gemini, gemini-sdk or synthetic (defaults to IMAGE_PROVIDER)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log provider activity to stderr")

	generateCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "product photo to stage")
	generateCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "scene description")
	generateCmd.Flags().IntVar(&exampleFlag, "example", -1, "use the example prompt at this index instead of --prompt")
	generateCmd.Flags().StringVarP(&styleFlag, "style", "s", "", "style preset name")
	generateCmd.Flags().BoolVar(&keepItemFlag, "keep-item", false, "keep the product exactly as photographed")
	generateCmd.Flags().StringVarP(&outFlag, "out", "o", "", "output file (defaults to <image>-staged.<ext>)")
	generateCmd.Flags().StringVar(&bundleFlag, "bundle", "", "also write a zip holding the source and the composite")
	_ = generateCmd.MarkFlagRequired("image")

	rootCmd.AddCommand(stylesCmd, generateCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCatalog(cfg *infra.Config) (presets.Catalog, error) {
	path := presetsFlag
	if path == "" {
		path = cfg.StylePresetsFile
	}
	return presets.Load(path)
}

func loadConfig() (*infra.Config, error) {
	if providerFlag != "" {
		os.Setenv("IMAGE_PROVIDER", providerFlag)
	}
	return infra.LoadConfig()
}

func runStyles(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Styles:")
	for _, s := range catalog.Styles {
		fmt.Fprintf(out, "  %-12s %s\n", s.Name, s.Description)
	}
	fmt.Fprintln(out, "Examples:")
	for i, e := range catalog.Examples {
		fmt.Fprintf(out, "  [%d] %s\n", i, e)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	if verboseFlag {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generator, err := image.FromConfig(ctx, cfg, &logger)
	if err != nil {
		return err
	}

	blobs := storage.NewMemoryStore()
	m := metrics.New()
	defer m.Stop()
	sessions := session.NewManager(session.Config{
		Generator:         generator,
		Blobs:             blobs,
		Catalog:           catalog,
		Gate:              semaphore.NewWeighted(1),
		Metrics:           m,
		Logger:            &logger,
		GenerationTimeout: cfg.GenerationTimeout,
	}, 1, time.Hour)
	defer sessions.Close()
	sess := sessions.Create()

	f, err := os.Open(imageFlag)
	if err != nil {
		return err
	}
	defer f.Close()
	ref, err := upload.New(blobs, cfg.MaxUploadBytes).FromReader(ctx, sess.ID(), filepath.Base(imageFlag), f)
	if err != nil {
		return err
	}

	steps := []func() (session.View, error){
		func() (session.View, error) { return sess.SetImage(ref) },
		func() (session.View, error) { return sess.SetShouldModifyItem(!keepItemFlag) },
		func() (session.View, error) { return sess.SelectStyle(styleFlag) },
	}
	if exampleFlag >= 0 {
		steps = append(steps, func() (session.View, error) { return sess.SelectExample(exampleFlag) })
	} else {
		steps = append(steps, func() (session.View, error) { return sess.SetPrompt(promptFlag) })
	}
	for _, step := range steps {
		if _, err := step(); err != nil {
			return err
		}
	}

	view, err := sess.Generate(ctx)
	if err != nil {
		if view.Error != "" {
			return errors.New(view.Error)
		}
		return err
	}

	staged, err := base64.StdEncoding.DecodeString(view.Result.Base64)
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	out := outFlag
	if out == "" {
		base := imageFlag[:len(imageFlag)-len(filepath.Ext(imageFlag))]
		out = base + "-staged" + zip.Extension(view.Result.MIMEType)
	}
	if err := os.WriteFile(out, staged, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", out, view.Result.Prompt)

	if bundleFlag == "" {
		return nil
	}
	source, err := blobs.Read(ctx, ref.StorageKey)
	if err != nil {
		return err
	}
	archive, err := zip.ArchiveAssets([]zip.Asset{
		{Filename: "source" + zip.Extension(ref.MIMEType), MIME: ref.MIMEType, Data: source, Modified: ref.UploadedAt},
		{Filename: "staged" + zip.Extension(view.Result.MIMEType), MIME: view.Result.MIMEType, Data: staged, Modified: view.Result.GeneratedAt},
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(bundleFlag, archive, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", bundleFlag)
	return nil
}
