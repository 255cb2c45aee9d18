// Package foundry calls the Responses API of a Microsoft Foundry project
// using the standard OpenAI Go SDK, authenticated with either a Microsoft
// Entra ID token or an API key.
//
// # Example
//
//	src, err := credential.NewDefaultEntraID()
//	if err != nil {
//		...
//	}
//
//	client, err := foundry.NewClient(ctx, os.Getenv("AZURE_AI_PROJECT_ENDPOINT"), src)
//	if err != nil {
//		...
//	}
//
//	result, err := client.Ask(ctx, foundry.Prompt{
//		Model: foundry.DefaultModel,
//		Input: "Explain quantum computing in 3 sentences.",
//	})
//
// With Entra ID the client targets the project's /openai path and appends
// api-version to every request (see [querypolicy]). With an API key it
// targets /openai/v1, which needs no version parameter.
//
// https://learn.microsoft.com/azure/ai-foundry/openai/how-to/responses
package foundry
