package main

import (
	"cmp"
	"fmt"
	"io"

	"github.com/picatz/foundry"
	"github.com/picatz/foundry/credential"
	"github.com/spf13/cobra"
)

var responsesFlags struct {
	apiKey          bool
	model           string
	reasoningModel  string
	apiVersion      string
	prompt          string
	maxOutputTokens int64
	markdown        bool
}

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Run the Responses API examples",
	Long: `Run the Responses API examples against a Foundry project.

By default the client authenticates with Entra ID against
AZURE_AI_PROJECT_ENDPOINT and asks an OpenAI model and a non-OpenAI
reasoning model one question each. With --api-key it authenticates with
AZURE_AI_API_KEY against AZURE_AI_FOUNDRY_ENDPOINT and asks only the
OpenAI model.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := credential.ModeEntraID
		if responsesFlags.apiKey {
			mode = credential.ModeAPIKey
		}

		if err := cfg.Validate(mode); err != nil {
			return err
		}

		var (
			src  credential.Source
			err  error
			opts = []foundry.ClientOption{foundry.WithLogger(logger)}
		)
		switch mode {
		case credential.ModeAPIKey:
			src, err = credential.NewStatic(cfg.APIKey)
		default:
			src, err = credential.NewDefaultEntraID()
		}
		if err != nil {
			return err
		}

		if version, ok := apiVersion(mode, responsesFlags.apiVersion, cfg.APIVersion); ok {
			opts = append(opts, foundry.WithAPIVersion(version))
		}

		client, err := foundry.NewClient(cmd.Context(), cfg.Endpoint(mode), src, opts...)
		if err != nil {
			return err
		}

		model, reasoningModel := cfg.Models()
		examples := foundry.Examples(
			cmp.Or(responsesFlags.model, model),
			cmp.Or(responsesFlags.reasoningModel, reasoningModel),
		)
		if mode == credential.ModeAPIKey {
			examples = examples[:1]
		}
		for i := range examples {
			if responsesFlags.prompt != "" {
				examples[i].Input = responsesFlags.prompt
			}
			if responsesFlags.maxOutputTokens > 0 {
				examples[i].MaxOutputTokens = responsesFlags.maxOutputTokens
			}
		}

		out := cmd.OutOrStdout()
		width, tty := terminalWidth(out)
		markdown := responsesFlags.markdown || tty
		if width == 0 {
			width = 80
		}

		fmt.Fprintln(out, styleBold.Render(title(mode)))
		fmt.Fprintln(out)

		for i, p := range examples {
			fmt.Fprintln(out, styleBold.Render(exampleHeader(mode, i, p.Model)))
			fmt.Fprintln(out)
			fmt.Fprintln(out, styleFaint.Render(waitingMessage(i)))

			res, err := client.Ask(cmd.Context(), p)
			if err != nil {
				return err
			}

			if err := printResult(out, res, markdown, width); err != nil {
				return err
			}
			if i < len(examples)-1 {
				fmt.Fprintln(out)
			}
		}

		return nil
	},
}

func init() {
	flags := responsesCmd.Flags()
	flags.BoolVar(&responsesFlags.apiKey, "api-key", false, "authenticate with AZURE_AI_API_KEY instead of Entra ID")
	flags.StringVar(&responsesFlags.model, "model", "", "OpenAI model deployment (default $AZURE_MODEL_2_DEPLOYMENT_NAME or "+foundry.DefaultModel+")")
	flags.StringVar(&responsesFlags.reasoningModel, "reasoning-model", "", "non-OpenAI model deployment (default $AZURE_MODEL_DEPLOYMENT_NAME or "+foundry.DefaultReasoningModel+")")
	flags.StringVar(&responsesFlags.apiVersion, "api-version", "", "api-version query parameter (Entra ID default $FOUNDRY_API_VERSION or "+foundry.DefaultAPIVersion+"; with --api-key, sent only when given)")
	flags.StringVarP(&responsesFlags.prompt, "prompt", "p", "", "ask this instead of the example questions")
	flags.Int64Var(&responsesFlags.maxOutputTokens, "max-output-tokens", foundry.DefaultMaxOutputTokens, "maximum output tokens per response")
	flags.BoolVar(&responsesFlags.markdown, "markdown", false, "render responses as markdown even when stdout is not a terminal")

	rootCmd.AddCommand(responsesCmd)
}

// apiVersion returns the api-version to send for mode, and whether to send
// one at all. Entra ID requests always carry a version; API key requests
// carry one only when it is given on the command line.
func apiVersion(mode credential.Mode, flagValue, configured string) (string, bool) {
	if mode == credential.ModeAPIKey {
		return flagValue, flagValue != ""
	}
	return cmp.Or(flagValue, configured), true
}

func title(mode credential.Mode) string {
	if mode == credential.ModeAPIKey {
		return "Microsoft Foundry Models - Responses API (API Key Auth)"
	}
	return "Microsoft Foundry Models - Responses API (Entra ID)"
}

func exampleHeader(mode credential.Mode, i int, model string) string {
	switch {
	case mode == credential.ModeAPIKey:
		return fmt.Sprintf("Model: %s", model)
	case i == 0:
		return fmt.Sprintf("Example 1: OpenAI model (%s)", model)
	default:
		return fmt.Sprintf("Example %d: Non-OpenAI model (%s)", i+1, model)
	}
}

func waitingMessage(i int) string {
	if i > 0 {
		return "Waiting for response (reasoning models can take 30-60s)..."
	}
	return "Waiting for response..."
}

func printResult(w io.Writer, res *foundry.Result, markdown bool, width int) error {
	text := res.Text
	if markdown && text != "" {
		rendered, err := renderMarkdown(text, width)
		if err != nil {
			return err
		}
		text = "\n" + rendered
	}

	fmt.Fprintf(w, "%s %s\n", styleBold.Render("Response:"), text)

	status := res.Status
	if status != "completed" {
		status = styleWarning.Render(status)
	}
	fmt.Fprintf(w, "%s   %s\n", styleBold.Render("Status:"), status)
	fmt.Fprintf(w, "%s %s\n", styleBold.Render("Output tokens:"), styleNumber.Render(fmt.Sprint(res.OutputTokens)))

	return nil
}
