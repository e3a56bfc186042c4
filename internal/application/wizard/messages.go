package wizard

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/domain/field"
	"github.com/garyjia/trip-expenses/internal/domain/workflow"
)

const (
	msgGreeting = "👋 Olá! Sou seu assistente para registro de viagens."

	msgFreeTextIntro = "Descreva sua viagem em uma mensagem e eu extraio os dados automaticamente.\n\n" +
		"Exemplo: \"Viagem para Buenos Aires dia 20/08/2025, passagem R$ 1.200, hotel R$ 800 e diárias R$ 400, centro de custo TI\""

	msgNeedMoreDetail = "Não consegui identificar os dados da sua viagem. Por favor, informe:\n\n" +
		"• Data da viagem\n• País e cidade de destino\n• Valor da passagem (R$)\n• Valor da hospedagem (R$)\n" +
		"• Valor das diárias (R$)\n• Centro de custo\n\n" +
		"Exemplo: \"Viagem para São Paulo dia 15/07/2025, passagem R$ 800, hotel R$ 300, diárias R$ 200, centro de custo TI\""

	msgConfirmQuestion = "Os dados estão corretos? Responda \"sim\" para salvar ou \"não\" para descartar."
	msgConfirmRetry    = "Responda \"sim\" para salvar ou \"não\" para descartar."
	msgSaved           = "✅ Viagem registrada com sucesso! Você pode vê-la no seu painel."
	msgDiscarded       = "Ok, registro descartado. Vamos começar de novo."
	msgSaveFailed      = "❌ Não foi possível salvar a viagem. Seus dados foram mantidos: responda \"sim\" para tentar novamente ou \"não\" para descartar."
	msgNotInformed     = "Não informado"
)

// Prompt returns the fixed question asked in state s
func Prompt(s workflow.State) string {
	switch s {
	case workflow.StateAwaitingDate:
		return "📅 Qual a data da viagem? (DD/MM/AAAA)"
	case workflow.StateAwaitingCountry:
		return "🌍 Qual o país de destino?"
	case workflow.StateAwaitingCity:
		return "🏙️ Qual a cidade de destino?"
	case workflow.StateAwaitingTicketCost:
		return "✈️ Qual o valor da passagem? (ex.: R$ 1.234,56)"
	case workflow.StateAwaitingLodgingCost:
		return "🏨 Qual o valor da hospedagem?"
	case workflow.StateAwaitingAllowance:
		return "🍽️ Qual o valor das diárias?"
	case workflow.StateAwaitingCostCenter:
		return "🏷️ Qual o centro de custo? Opções: " + field.CostCenterOptions() + "."
	case workflow.StateAwaitingConfirmation:
		return msgConfirmQuestion
	default:
		return ""
	}
}

// Summary renders a draft as a confirmation card
func Summary(d *entity.TripDraft) string {
	var b strings.Builder
	b.WriteString("📋 Confira os dados da viagem:\n")
	fmt.Fprintf(&b, "📅 Data: %s\n", orNotInformed(dateText(d.TravelDate)))
	fmt.Fprintf(&b, "🌍 País: %s\n", orNotInformed(stringText(d.DestinationCountry)))
	fmt.Fprintf(&b, "🏙️ Cidade: %s\n", orNotInformed(stringText(d.DestinationCity)))
	fmt.Fprintf(&b, "✈️ Passagem: %s\n", amountText(d.TicketCost))
	fmt.Fprintf(&b, "🏨 Hospedagem: %s\n", amountText(d.LodgingCost))
	fmt.Fprintf(&b, "🍽️ Diárias: %s\n", amountText(d.DailyAllowance))
	fmt.Fprintf(&b, "💰 Total: %s\n", field.FormatAmount(d.Total()))
	tripType := "Não classificado"
	if d.TripType != nil {
		tripType = d.TripType.String()
	}
	fmt.Fprintf(&b, "🎯 Tipo: %s\n", tripType)
	cc := ""
	if d.CostCenter != nil {
		cc = d.CostCenter.String()
	}
	fmt.Fprintf(&b, "🏷️ Centro de custo: %s", orNotInformed(cc))
	return b.String()
}

func rejection(s workflow.State, reason string) string {
	return Prompt(s) + "\n⚠️ " + reason
}

func dateText(d *entity.Date) string {
	if d == nil {
		return ""
	}
	t := d.Time()
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

func stringText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNotInformed(s string) string {
	if s == "" {
		return msgNotInformed
	}
	return s
}

func amountText(d *decimal.Decimal) string {
	if d == nil {
		return msgNotInformed
	}
	return field.FormatAmount(*d)
}
