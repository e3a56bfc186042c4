package field

import (
	"strings"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

var costCenterAliases = map[string]entity.CostCenter{
	"SERVICO":    entity.CostCenterServicos,
	"SERVICOS":   entity.CostCenterServicos,
	"SERVIÇO":    entity.CostCenterServicos,
	"JOBI":       entity.CostCenterJobiM,
	"JOBIM":      entity.CostCenterJobiM,
	"JOBI M":     entity.CostCenterJobiM,
	"OUTRO":      entity.CostCenterOutros,
	"OPERACOES":  entity.CostCenterOperacoes,
	"OPERAÇÃO":   entity.CostCenterOperacoes,
	"OPERACAO":   entity.CostCenterOperacoes,
	"ADM":        entity.CostCenterAdministrativo,
	"ADMIN":      entity.CostCenterAdministrativo,
	"MKT":        entity.CostCenterMarketing,
	"VENDAS":     entity.CostCenterComercial,
	"TECNOLOGIA": entity.CostCenterTI,
}

// ParseCostCenter normalizes raw to a member of the closed cost center set
func ParseCostCenter(raw string) (entity.CostCenter, error) {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), " "))

	if cc := entity.CostCenter(s); cc.IsValid() {
		return cc, nil
	}
	if cc, ok := costCenterAliases[s]; ok {
		return cc, nil
	}

	return "", reject(NameCostCenter, raw, "Centro de custo inválido. Opções: "+CostCenterOptions()+".")
}

// CostCenterOptions lists the permitted cost centers for prompts
func CostCenterOptions() string {
	names := make([]string, len(entity.CostCenters))
	for i, cc := range entity.CostCenters {
		names[i] = cc.String()
	}
	return strings.Join(names, ", ")
}
