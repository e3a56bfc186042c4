package service

import (
	"bytes"
	"fmt"
	"text/template"
)

// DefaultExtractionTemplate asks the model for a JSON object with exactly the draft fields
const DefaultExtractionTemplate = `Extraia as seguintes informações desta mensagem sobre viagem de forma precisa:
"{{.Message}}"

Hoje é {{.Today}}.

Retorne APENAS um JSON válido com esses campos exatos:
{
    "trip_date": "data da viagem (formato YYYY-MM-DD ou null)",
    "destination_country": "país de destino ou null",
    "destination_city": "cidade de destino ou null",
    "ticket_cost": valor_numerico_passagem_ou_null,
    "accommodation_cost": valor_numerico_hospedagem_ou_null,
    "daily_allowances": valor_numerico_diarias_ou_null,
    "trip_type": "Nacional/Continental/Intercontinental baseado no país",
    "cost_center": "um de {{.CostCenters}} ou null"
}

Regras para trip_type:
- "Nacional": {{.HomeCountry}}
- "Continental": países sul-americanos (Argentina, Chile, etc.)
- "Intercontinental": outros países

NÃO inclua texto explicativo, APENAS o JSON.`

// promptData is the data available to extraction templates
type promptData struct {
	Message     string
	Today       string
	HomeCountry string
	CostCenters string
}

func parsePromptTemplate(text string) (*template.Template, error) {
	if text == "" {
		text = DefaultExtractionTemplate
	}
	tmpl, err := template.New("extraction").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
