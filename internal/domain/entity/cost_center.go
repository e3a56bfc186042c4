package entity

// CostCenter classifies the organizational reason for a trip
type CostCenter string

// Permitted cost centers
const (
	CostCenterAdministrativo CostCenter = "ADMINISTRATIVO"
	CostCenterComercial      CostCenter = "COMERCIAL"
	CostCenterJobiM          CostCenter = "JOBI-M"
	CostCenterMarketing      CostCenter = "MARKETING"
	CostCenterOperacoes      CostCenter = "OPERAÇÕES"
	CostCenterServicos       CostCenter = "SERVIÇOS"
	CostCenterTI             CostCenter = "TI"
	CostCenterOutros         CostCenter = "OUTROS"
)

// CostCenters lists every permitted cost center in display order
var CostCenters = []CostCenter{
	CostCenterAdministrativo,
	CostCenterComercial,
	CostCenterJobiM,
	CostCenterMarketing,
	CostCenterOperacoes,
	CostCenterServicos,
	CostCenterTI,
	CostCenterOutros,
}

var validCostCenters = map[CostCenter]bool{
	CostCenterAdministrativo: true,
	CostCenterComercial:      true,
	CostCenterJobiM:          true,
	CostCenterMarketing:      true,
	CostCenterOperacoes:      true,
	CostCenterServicos:       true,
	CostCenterTI:             true,
	CostCenterOutros:         true,
}

// String returns the string representation of the cost center
func (c CostCenter) String() string {
	return string(c)
}

// IsValid returns true if the cost center is a member of the closed set
func (c CostCenter) IsValid() bool {
	return validCostCenters[c]
}
