package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/internal/app"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/internal/config"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/client"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/client/bedrock"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/conversation"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/llm"
	pkgLogger "github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/logger"
)

// resolveStringFlag returns the non-empty value, preferring short flag over long flag
func resolveStringFlag(shortVal, longVal string) string {
	if shortVal != "" {
		return shortVal
	}
	return longVal
}

func printUsage() {
	fmt.Println("ezbedrock - simple conversations with AWS Bedrock models")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ezbedrock                                  # Interactive chat")
	fmt.Println("  ezbedrock \"Tell me a joke\"                 # One-shot prompt")
	fmt.Println("  ezbedrock --stream \"Tell me a joke\"        # One-shot with streaming output")
	fmt.Println("  ezbedrock -m anthropic.claude-3-haiku-20240307-v1:0 \"Hi\"")
	fmt.Println("  ezbedrock -b anthropic \"Hi\"               # Direct Anthropic API backend")
	fmt.Println("  ezbedrock -s \"You are a pirate\"           # Chat with a system prompt")
	fmt.Println()
}

func main() {
	ctx := context.Background()

	var backend = flag.String("b", "", "Inference backend (bedrock or anthropic)")
	var backendLong = flag.String("backend", "", "Inference backend (bedrock or anthropic)")
	var model = flag.String("m", "", "Model ID to use")
	var modelLong = flag.String("model", "", "Model ID to use")
	var region = flag.String("r", "", "AWS region")
	var regionLong = flag.String("region", "", "AWS region")
	var systemPrompt = flag.String("s", "", "System prompt for the conversation")
	var systemPromptLong = flag.String("system", "", "System prompt for the conversation")
	var settingsPath = flag.String("settings", "", "Path to settings file (JSON or YAML)")
	var stream = flag.Bool("stream", false, "Stream the response of a one-shot prompt")
	var verbose = flag.Bool("v", false, "Enable verbose logging (debug level)")
	var verboseLong = flag.Bool("verbose", false, "Enable verbose logging (debug level)")
	var help = flag.Bool("h", false, "Show this help message")
	var helpLong = flag.Bool("help", false, "Show this help message")

	flag.Usage = func() {
		printUsage()
		fmt.Println("Flags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *help || *helpLong {
		flag.Usage()
		return
	}

	resolvedBackend := resolveStringFlag(*backend, *backendLong)
	resolvedModel := resolveStringFlag(*model, *modelLong)
	resolvedRegion := resolveStringFlag(*region, *regionLong)
	resolvedSystem := resolveStringFlag(*systemPrompt, *systemPromptLong)
	resolvedVerbose := *verbose || *verboseLong

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fmt.Printf("⚠️  Warning: failed to load settings: %v\n", err)
		settings = config.GetDefaultSettings()
	}

	logLevel := settings.LogLevel
	if resolvedVerbose {
		logLevel = "debug"
	}
	pkgLogger.SetGlobalLogLevel(pkgLogger.LogLevel(logLevel))
	logger := pkgLogger.NewLogger(pkgLogger.LogLevel(logLevel))

	// Flags override file settings
	if resolvedBackend != "" {
		settings.Backend.Name = resolvedBackend
	}
	if resolvedModel != "" {
		settings.Backend.ModelID = resolvedModel
	}
	if resolvedRegion != "" {
		settings.Backend.Region = resolvedRegion
	}
	if resolvedSystem != "" {
		settings.Conversation.SystemPrompt = resolvedSystem
	}

	if err := config.ValidateSettings(settings); err != nil {
		logger.ErrorWithIcon("❌", "Settings validation failed", "error", err)
		os.Exit(1)
	}

	inferenceClient, err := client.New(ctx, client.BackendConfig{
		Backend:   settings.Backend.Name,
		Region:    settings.Backend.Region,
		ModelID:   settings.Backend.ModelID,
		Profile:   settings.Backend.Profile,
		MaxTokens: settings.Backend.MaxTokens,
	})
	if err != nil {
		logger.ErrorWithIcon("❌", "Failed to create inference client", "error", err)
		os.Exit(1)
	}

	modelID := settings.Backend.ModelID
	if mi, ok := inferenceClient.(llm.ModelIdentifier); ok {
		modelID = mi.ModelID()
	}

	defaults := &llm.Options{
		Temperature: settings.Backend.Temperature,
		TopP:        settings.Backend.TopP,
	}

	args := flag.Args()
	if len(args) > 0 {
		// One-shot mode
		prompt := strings.Join(args, " ")
		runOneShot(ctx, inferenceClient, prompt, defaults, *stream)
		return
	}

	// Interactive chat mode
	conv, err := conversation.New(inferenceClient, conversation.Config{
		ModelID:       modelID,
		SystemPrompt:  settings.Conversation.SystemPrompt,
		MaxTokenLimit: settings.Conversation.MaxTokenLimit,
		Budget:        budgetOverride(settings),
		DefaultOptions: defaults,
	})
	if err != nil {
		logger.ErrorWithIcon("❌", "Failed to start conversation", "error", err)
		os.Exit(1)
	}
	app.StartChat(ctx, conv, modelID)
}

// budgetOverride builds a full budget only when the settings customize the
// keep/batch knobs; otherwise the conversation derives its own defaults.
func budgetOverride(settings *config.Settings) *conversation.BudgetConfig {
	cc := settings.Conversation
	if cc.RecentKeepCount == 0 && cc.MinSummarizeBatch == 0 {
		return nil
	}
	budget := conversation.DefaultBudgetConfig(cc.MaxTokenLimit)
	if cc.RecentKeepCount > 0 {
		budget.RecentKeepCount = cc.RecentKeepCount
	}
	if cc.MinSummarizeBatch > 0 {
		budget.MinSummarizeBatch = cc.MinSummarizeBatch
	}
	return &budget
}

func runOneShot(ctx context.Context, inferenceClient llm.InferenceClient, prompt string, opts *llm.Options, stream bool) {
	if stream {
		streamer, ok := inferenceClient.(llm.StreamingInferenceClient)
		if !ok {
			fmt.Println("⚠️  This backend does not support streaming; falling back to a blocking call.")
		} else {
			_, err := streamer.GenerateStream(ctx, []llm.Message{{Role: llm.RoleUser, Text: prompt}}, opts,
				func(chunk string) { fmt.Print(chunk) })
			if err != nil {
				fmt.Printf("\n❌ Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println()
			return
		}
	}

	var text string
	var err error
	if bc, ok := inferenceClient.(*bedrock.Client); ok {
		text, err = bc.Invoke(ctx, prompt, opts)
	} else {
		text, err = inferenceClient.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Text: prompt}}, opts)
	}
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(text)
}
