package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/trip-expenses/internal/domain/classify"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got *decimal.Decimal, msg string) {
	t.Helper()
	require.NotNil(t, got, msg)
	assert.True(t, dec(want).Equal(*got), "%s: got %s, want %s", msg, got, want)
}

func TestExtract_FullMessage(t *testing.T) {
	e := New(nil, nil, nil)

	got := e.Extract("Viagem para Buenos Aires em 24/05/2025, passagem R$ 1.200, hotel R$ 800 e diárias R$ 450, centro de custo JOBI-M")

	require.NotNil(t, got.TravelDate)
	assert.Equal(t, "24/05/2025", *got.TravelDate)
	require.NotNil(t, got.DestinationCity)
	assert.Equal(t, "Buenos Aires", *got.DestinationCity)
	require.NotNil(t, got.DestinationCountry)
	assert.Equal(t, "Argentina", *got.DestinationCountry)
	assertAmount(t, "1200", got.TicketCost, "ticket")
	assertAmount(t, "800", got.LodgingCost, "lodging")
	assertAmount(t, "450", got.DailyAllowance, "allowance")
	require.NotNil(t, got.TripType)
	assert.Equal(t, entity.TripTypeContinental, *got.TripType)
	require.NotNil(t, got.CostCenter)
	assert.Equal(t, "JOBI-M", *got.CostCenter)
}

func TestExtract_KeywordsAfterAmounts(t *testing.T) {
	e := New(nil, nil, nil)

	got := e.Extract("R$ 300 de alimentação; R$ 2.500,50 de voo; R$ 900 de hospedagem em Paris")

	assertAmount(t, "2500.50", got.TicketCost, "ticket")
	assertAmount(t, "900", got.LodgingCost, "lodging")
	assertAmount(t, "300", got.DailyAllowance, "allowance")
	require.NotNil(t, got.DestinationCountry)
	assert.Equal(t, "França", *got.DestinationCountry)
	assert.Equal(t, entity.TripTypeIntercontinental, *got.TripType)
}

func TestExtract_UnassignedAmountsFillInOrder(t *testing.T) {
	e := New(nil, nil, nil)

	got := e.Extract("Gastos: R$ 100, R$ 200, R$ 300")

	assertAmount(t, "100", got.TicketCost, "ticket")
	assertAmount(t, "200", got.LodgingCost, "lodging")
	assertAmount(t, "300", got.DailyAllowance, "allowance")
}

func TestExtract_KeywordedAmountKeepsSlotAndOthersFillTheRest(t *testing.T) {
	e := New(nil, nil, nil)

	got := e.Extract("R$ 100; hotel R$ 700; R$ 50")

	assertAmount(t, "100", got.TicketCost, "ticket")
	assertAmount(t, "700", got.LodgingCost, "lodging")
	assertAmount(t, "50", got.DailyAllowance, "allowance")
}

func TestExtract_DatePatterns(t *testing.T) {
	e := New(nil, nil, nil)

	tests := []struct {
		text string
		want string
	}{
		{"viajo dia 2025-05-24 para Lima", "2025-05-24"},
		{"vou em 15 de Março para Quito", "15 de marco"},
		{"previsto para maio de 2025", "maio de 2025"},
		{"saio 03/06 cedo", "03/06"},
		{"ida 24-05-2025", "24-05-2025"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := e.Extract(tt.text)
			require.NotNil(t, got.TravelDate)
			assert.Equal(t, tt.want, *got.TravelDate)
		})
	}
}

func TestExtract_LongestCityWins(t *testing.T) {
	e := New(nil, []Place{{"Rio", "Brasil"}, {"Rio de Janeiro", "Brasil"}}, nil)

	got := e.Extract("reunião no rio de janeiro")

	require.NotNil(t, got.DestinationCity)
	assert.Equal(t, "Rio de Janeiro", *got.DestinationCity)
	assert.Equal(t, entity.TripTypeDomestic, *got.TripType)
}

func TestExtract_AccentInsensitiveCity(t *testing.T) {
	e := New(nil, nil, nil)

	got := e.Extract("visita a sao paulo e BOGOTA")

	require.NotNil(t, got.DestinationCity)
	assert.Equal(t, "São Paulo", *got.DestinationCity)
	assert.Equal(t, "Brasil", *got.DestinationCountry)
}

func TestExtract_CountryOnly(t *testing.T) {
	e := New(nil, nil, nil)

	got := e.Extract("congresso no Japão")

	assert.Nil(t, got.DestinationCity)
	require.NotNil(t, got.DestinationCountry)
	assert.Equal(t, "Japão", *got.DestinationCountry)
	assert.Equal(t, entity.TripTypeIntercontinental, *got.TripType)
}

func TestExtract_UsesConfiguredClassifier(t *testing.T) {
	e := New(classify.New("Portugal", []string{"Espanha"}), nil, nil)

	got := e.Extract("semana em Madrid")

	require.NotNil(t, got.TripType)
	assert.Equal(t, entity.TripTypeContinental, *got.TripType)
}

func TestExtract_NothingFound(t *testing.T) {
	e := New(nil, nil, nil)

	for _, text := range []string{"", "   ", "olá, tudo bem?", "quero registrar uma viagem"} {
		got := e.Extract(text)
		assert.True(t, got.IsEmpty(), "text %q", text)
		assert.Nil(t, got.TripType)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := New(nil, nil, nil)
	msg := "Londres 10/10/2025 passagem R$ 4.000,00 hotel R$ 2.100 diária R$ 600 centro de custo serviços"

	first := e.Extract(msg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Extract(msg))
	}
	require.NotNil(t, first.CostCenter)
	assert.Equal(t, "SERVICOS", *first.CostCenter)
}
