package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/manimation/manimation/codegen"
	"github.com/manimation/manimation/config"
	"github.com/manimation/manimation/core"
	"github.com/manimation/manimation/llm"
	"github.com/manimation/manimation/logger"
	"github.com/manimation/manimation/memory"
	"github.com/manimation/manimation/provider"
	"github.com/manimation/manimation/render"
	"github.com/manimation/manimation/scenario"
	"github.com/manimation/manimation/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "manimation",
	Short: "Manimation is a CLI tool for generating math and physics animations",
	Long:  `Manimation is a CLI tool that uses AI to generate Manim animations of math and physics concepts from a plain language description.`,
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate an animation from a description",
	Run: func(cmd *cobra.Command, args []string) {
		flags, err := parseGenFlags(cmd)
		if err != nil {
			fmt.Printf("Error parsing flags: %v\n", err)
			os.Exit(1)
		}

		model, err := newGenerateModel(flags)
		if err != nil {
			fmt.Printf("Error initializing model: %v\n", err)
			os.Exit(1)
		}

		p := tea.NewProgram(model)
		if _, err := p.Run(); err != nil {
			fmt.Printf("Error running program: %v\n", err)
			os.Exit(1)
		}

		model.Shutdown()
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render an existing Manim script to video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags, err := parseRenderFlags(cmd)
		if err != nil {
			fmt.Printf("Error parsing flags: %v\n", err)
			os.Exit(1)
		}
		runRender(flags, args[0])
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <file>",
	Short: "Review a Manim script for syntax and layout problems",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags, err := parseEvaluateFlags(cmd)
		if err != nil {
			fmt.Printf("Error parsing flags: %v\n", err)
			os.Exit(1)
		}
		runEvaluate(flags, args[0])
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available for generation",
	Run: func(cmd *cobra.Command, args []string) {
		flags, err := parseModelsFlags(cmd)
		if err != nil {
			fmt.Printf("Error parsing flags: %v\n", err)
			os.Exit(1)
		}
		runModels(flags)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the animation HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		flags, err := parseServeFlags(cmd)
		if err != nil {
			fmt.Printf("Error parsing flags: %v\n", err)
			os.Exit(1)
		}
		runServe(flags)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <video>",
	Short: "Download a rendered video from a manimation server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags, err := parseGetFlags(cmd)
		if err != nil {
			fmt.Printf("Error parsing flags: %v\n", err)
			os.Exit(1)
		}
		var p *tea.Program
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBA08"))
		url := fmt.Sprintf("%s/videos/%s", strings.TrimRight(flags.server, "/"), args[0])
		resp, err := downloadFile(url)
		if err != nil {
			fmt.Printf("Error downloading video: %v\n", errorStyle.Render(err.Error()))
			os.Exit(1)
		}
		defer resp.Body.Close()

		if resp.ContentLength <= 0 {
			fmt.Println("can't parse content length, aborting download")
			os.Exit(1)
		}

		filename := filepath.Base(resp.Request.URL.Path)
		path := filepath.Join(os.TempDir(), filename)
		file, err := os.Create(path)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("could not create file: %v", err)))
			os.Exit(1)
		}
		defer file.Close() // nolint:errcheck

		pw := &progressWriter{
			total:  int(resp.ContentLength),
			file:   file,
			reader: resp.Body,
			onProgress: func(ratio float64) {
				p.Send(progressMsg(ratio))
			},
		}

		m := newGetCmdModel(pw, path, filename)

		p = tea.NewProgram(m)

		go pw.Start(p)

		if _, err := p.Run(); err != nil {
			fmt.Println("error running program:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(getCmd)

	genCmd.Flags().StringP("quality", "q", "", "Video quality for the rendered animation (low, medium or high)")
	genCmd.Flags().String("complexity", "", "Animation complexity (simple, medium or complex)")
	genCmd.Flags().StringP("provider", "p", "", "LLM provider to use (openai, anthropic or gemini)")
	genCmd.Flags().StringP("model", "m", "", "Model to use for generation")
	genCmd.Flags().StringP("config", "c", "", "Path to custom configuration file")

	renderCmd.Flags().StringP("quality", "q", "", "Video quality for the rendered animation (low, medium or high)")
	renderCmd.Flags().StringP("config", "c", "", "Path to custom configuration file")

	evaluateCmd.Flags().String("prompt", "", "The description the script was generated from")
	evaluateCmd.Flags().String("complexity", "", "Animation complexity (simple, medium or complex)")
	evaluateCmd.Flags().StringP("config", "c", "", "Path to custom configuration file")

	modelsCmd.Flags().StringP("provider", "p", "", "Only list models for this provider")
	modelsCmd.Flags().StringP("config", "c", "", "Path to custom configuration file")

	serveCmd.Flags().Int("port", 0, "Port to listen on, overriding the configured value")
	serveCmd.Flags().StringP("config", "c", "", "Path to custom configuration file")

	getCmd.Flags().StringP("server", "s", "http://localhost:8080", "Base URL of the manimation server")
}

type renderFlags struct {
	quality string
	config  string
}

type evaluateFlags struct {
	prompt     string
	complexity string
	config     string
}

type modelsFlags struct {
	provider string
	config   string
}

type serveFlags struct {
	port   int
	config string
}

func parseGenFlags(cmd *cobra.Command) (genFlags, error) {
	quality, err := cmd.Flags().GetString("quality")
	if err != nil {
		return genFlags{}, err
	}

	complexity, err := cmd.Flags().GetString("complexity")
	if err != nil {
		return genFlags{}, err
	}

	provider, err := cmd.Flags().GetString("provider")
	if err != nil {
		return genFlags{}, err
	}

	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return genFlags{}, err
	}

	config, err := cmd.Flags().GetString("config")
	if err != nil {
		return genFlags{}, err
	}

	return genFlags{
		quality:    quality,
		complexity: complexity,
		provider:   provider,
		model:      model,
		config:     config,
	}, nil
}

func parseRenderFlags(cmd *cobra.Command) (renderFlags, error) {
	quality, err := cmd.Flags().GetString("quality")
	if err != nil {
		return renderFlags{}, err
	}

	config, err := cmd.Flags().GetString("config")
	if err != nil {
		return renderFlags{}, err
	}

	return renderFlags{
		quality: quality,
		config:  config,
	}, nil
}

func parseEvaluateFlags(cmd *cobra.Command) (evaluateFlags, error) {
	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return evaluateFlags{}, err
	}

	complexity, err := cmd.Flags().GetString("complexity")
	if err != nil {
		return evaluateFlags{}, err
	}

	config, err := cmd.Flags().GetString("config")
	if err != nil {
		return evaluateFlags{}, err
	}

	return evaluateFlags{
		prompt:     prompt,
		complexity: complexity,
		config:     config,
	}, nil
}

func parseModelsFlags(cmd *cobra.Command) (modelsFlags, error) {
	provider, err := cmd.Flags().GetString("provider")
	if err != nil {
		return modelsFlags{}, err
	}

	config, err := cmd.Flags().GetString("config")
	if err != nil {
		return modelsFlags{}, err
	}

	return modelsFlags{
		provider: provider,
		config:   config,
	}, nil
}

func parseServeFlags(cmd *cobra.Command) (serveFlags, error) {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return serveFlags{}, err
	}

	config, err := cmd.Flags().GetString("config")
	if err != nil {
		return serveFlags{}, err
	}

	return serveFlags{
		port:   port,
		config: config,
	}, nil
}

func parseGetFlags(cmd *cobra.Command) (getFlags, error) {
	server, err := cmd.Flags().GetString("server")
	if err != nil {
		return getFlags{}, err
	}

	return getFlags{
		server: server,
	}, nil
}

func runRender(f renderFlags, path string) {
	logger.InitLogger()
	app, err := buildApp(f.config, logger.GetLogger())
	if err != nil {
		fail(err)
	}

	quality := f.quality
	if quality == "" {
		quality = app.cfg.Quality
	}
	q, err := render.ParseQuality(quality)
	if err != nil {
		fail(err)
	}

	code, err := os.ReadFile(path)
	if err != nil {
		fail(fmt.Errorf("could not read script: %w", err))
	}

	res, err := app.service.Rerender(context.Background(), string(code), q)
	if err != nil {
		fail(err)
	}

	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	fmt.Printf("Animation rendered to: %s\n", pathStyle.Render(res.VideoPath))
}

func runEvaluate(f evaluateFlags, path string) {
	logger.InitLogger()
	app, err := buildApp(f.config, logger.GetLogger())
	if err != nil {
		fail(err)
	}

	code, err := os.ReadFile(path)
	if err != nil {
		fail(fmt.Errorf("could not read script: %w", err))
	}

	complexity := f.complexity
	if complexity == "" {
		complexity = app.cfg.Complexity
	}

	report, err := app.service.Evaluate(context.Background(), string(code), f.prompt, complexity)
	if err != nil {
		fail(err)
	}

	fmt.Println(report.Report)
}

func runModels(f modelsFlags) {
	logger.InitLogger()
	app, err := buildApp(f.config, logger.GetLogger())
	if err != nil {
		fail(err)
	}

	models, err := app.gateway.Models(context.Background(), f.provider)
	if err != nil {
		fail(err)
	}

	headerStyle := lipgloss.NewStyle().Bold(true)
	fmt.Println(headerStyle.Render(fmt.Sprintf("%-12s %-28s %-32s %s", "PROVIDER", "MODEL", "LABEL", "MAX TOKENS")))
	for _, m := range models {
		fmt.Printf("%-12s %-28s %-32s %d\n", m.Provider, m.Name, m.Label, m.MaxTokens)
	}
}

func runServe(f serveFlags) {
	log := logger.NewConsoleLogger()
	app, err := buildApp(f.config, log)
	if err != nil {
		fail(err)
	}

	port := app.cfg.Server.Port
	if f.port != 0 {
		port = f.port
	}

	srv := server.New(server.Config{
		Addr:     fmt.Sprintf("%s:%d", app.cfg.Server.Host, port),
		VideoDir: app.cfg.OutputDir,
		Service:  app.service,
		Catalog:  app.gateway,
		Logger:   log,
	})
	if err := srv.Start(); err != nil {
		log.Fatal(fmt.Sprintf("Server failed: %v", err))
	}
}

func fail(err error) {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBA08"))
	fmt.Println(errorStyle.Render(err.Error()))
	os.Exit(1)
}

type app struct {
	cfg     *config.Config
	gateway *llm.Gateway
	service *core.Service
}

// buildApp wires the full generation stack from a configuration file.
func buildApp(configPath string, log logger.Logger) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	creds := provider.Credentials{Configured: map[string]string{}}
	baseURLs := map[string]string{}
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			creds.Configured[name] = pc.APIKey
		}
		if pc.BaseURL != "" {
			baseURLs[name] = pc.BaseURL
		}
	}

	gateway := llm.NewGateway(llm.GatewayConfig{
		Registry:          provider.NewRegistry(log),
		Credentials:       creds,
		DefaultProvider:   cfg.DefaultProvider,
		BaseURLs:          baseURLs,
		RequestsPerMinute: cfg.RequestsPerMinute,
		TellmURL:          cfg.TellmURL,
		Logger:            log,
	})

	renderer := render.NewRenderer(render.Config{
		ToolPath:  cfg.ManimPath,
		TempDir:   cfg.TempDir,
		OutputDir: cfg.OutputDir,
		Timeout:   time.Duration(cfg.RenderTimeoutSeconds) * time.Second,
		Logger:    log,
	})

	service := core.NewService(core.ServiceConfig{
		Extractor:    scenario.NewExtractor(gateway, log),
		Generator:    codegen.NewGenerator(gateway, log),
		Layout:       codegen.NewLayoutRefiner(gateway, log),
		Evaluator:    codegen.NewEvaluator(gateway, log),
		Renderer:     renderer,
		Conversation: memory.NewConversation(),
		Logger:       log,
	})

	return &app{cfg: cfg, gateway: gateway, service: service}, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
