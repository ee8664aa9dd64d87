// Package gemini parses chat messages into transaction intents using the
// Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"celengan/internal/chat"
	"celengan/internal/core"
)

const DefaultModel = "gemini-1.5-flash-latest"

type Parser struct {
	client *genai.Client
	model  string
}

// New builds the Gemini-backed parser. The API key comes from the
// GEMINI_API_KEY environment variable via the client config.
func New(ctx context.Context, apiKey string) (*Parser, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Parser{client: client, model: DefaultModel}, nil
}

// intentJSON is the wire shape the prompt asks the model to emit.
type intentJSON struct {
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	AccountName string `json:"account_name"`
	QueryType   string `json:"query_type"`
	Language    string `json:"language"`
}

// Parse sends the message with the user's account list and decodes the
// model's JSON answer. Anything the model cannot express as a valid intent
// comes back as unclear rather than an error.
func (p *Parser) Parse(ctx context.Context, message string, accounts []core.Account) (chat.Intent, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildPrompt(message, accounts)}},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return chat.Intent{}, fmt.Errorf("generate content: %w", err)
	}

	raw := cleanModelJSON(resp.Text())
	if raw == "" {
		return unclear(message), nil
	}

	var decoded intentJSON
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return unclear(message), nil
	}
	return toIntent(decoded, message), nil
}

func buildPrompt(message string, accounts []core.Account) string {
	var list strings.Builder
	for _, a := range accounts {
		fmt.Fprintf(&list, "- %s (balance: %s)\n", a.Name, core.FormatIDR(a.Balance))
	}
	accountList := strings.TrimRight(list.String(), "\n")
	if accountList == "" {
		accountList = "(No accounts yet)"
	}

	return `You are a financial assistant for a personal finance app called Celengan.
The user communicates via chat in Indonesian or English.

The user has these accounts:
` + accountList + `

Parse the user's message and return ONLY valid JSON, no markdown, no explanation.

Rules:
- All amounts are in Indonesian Rupiah (IDR), integers only (no decimals)
- "jt" or "juta" means million (1jt = 1000000)
- "rb" or "ribu" means thousand (50rb = 50000)
- "k" can mean ribu (thousand)
- Spending examples: "beli kopi 25rb", "spent 50k on transport", "bayar listrik 200rb", "beli laptop 15jt"
- Income examples: "gajian 5jt", "received salary 5000000", "dapat bonus 2jt"
- Query examples: "saldo", "balance", "transaksi", "transactions", "bantuan", "help"
- If unclear, type = "unclear"
- account_name: match to closest account name from the list, or null if not mentioned
- category: infer from context (food, transport, bills, entertainment, health, shopping, utilities, etc.) or null
- language: "id" if message is primarily Indonesian, "en" if English

Return one of these JSON shapes:
{"type":"spending","amount":25000,"description":"Kopi","category":"food","account_name":null,"language":"id"}
{"type":"income","amount":5000000,"description":"Gaji","category":null,"account_name":"BCA","language":"id"}
{"type":"query","query_type":"balance","language":"id"}
{"type":"unclear","language":"id"}

User message: ` + message
}

func toIntent(d intentJSON, message string) chat.Intent {
	lang := core.Language(d.Language)
	if lang != core.Indonesian && lang != core.English {
		lang = chat.GuessLanguage(message)
	}

	in := chat.Intent{
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		AccountName: d.AccountName,
		Language:    lang,
	}

	switch d.Type {
	case "spending":
		in.Type = chat.IntentSpending
	case "income":
		in.Type = chat.IntentIncome
	case "query":
		in.Type = chat.IntentQuery
		switch d.QueryType {
		case "balance":
			in.QueryType = chat.QueryBalance
		case "transactions":
			in.QueryType = chat.QueryTransactions
		case "help":
			in.QueryType = chat.QueryHelp
		default:
			in.Type = chat.IntentUnclear
		}
	default:
		in.Type = chat.IntentUnclear
	}

	if (in.Type == chat.IntentSpending || in.Type == chat.IntentIncome) &&
		(in.Amount <= 0 || strings.TrimSpace(in.Description) == "") {
		in.Type = chat.IntentUnclear
	}
	return in
}

func unclear(message string) chat.Intent {
	return chat.Intent{Type: chat.IntentUnclear, Language: chat.GuessLanguage(message)}
}

// cleanModelJSON strips Markdown fences and surrounding junk the model
// sometimes emits despite instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return strings.TrimSpace(s)
}

var _ chat.IntentParser = (*Parser)(nil)
