package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Client wraps the Gemini API for the two LLM capabilities the backend
// needs: vision-based item descriptions and search-grounded comp lookup.
//
// The API key is an explicit constructor argument; it is never written
// into the process environment.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client. An empty API key is a configuration
// error and is rejected immediately.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// DescribeItem generates a marketing description for an auction item from
// an uploaded photo plus whatever metadata the caller has.
func (c *Client) DescribeItem(ctx context.Context, image []byte, mimeType, title, model, year, notes string) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are writing a listing description for an auction house. ")
	sb.WriteString("Write a concise, factual marketing description (2-4 sentences) of the item in the photo. ")
	sb.WriteString("Mention visible condition. Do not invent provenance or measurements.\n")
	fmt.Fprintf(&sb, "Item title: %s\n", title)
	if model != "" {
		fmt.Fprintf(&sb, "Model: %s\n", model)
	}
	if year != "" {
		fmt.Fprintf(&sb, "Year: %s\n", year)
	}
	if notes != "" {
		fmt.Fprintf(&sb, "Seller notes: %s\n", notes)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(sb.String()),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini describe: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini describe: empty response")
	}
	return text, nil
}

// FindComps runs a search-grounded generation and returns the raw reply
// text. The Gemini API cannot combine the Google Search tool with a
// response schema, so the caller is responsible for extracting the JSON
// object from the text.
func (c *Client) FindComps(ctx context.Context, instructions string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(instructions, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
		Temperature: genai.Ptr[float32](0.2),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini comp search: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini comp search: empty response")
	}
	return text, nil
}
