package domain

import (
	"strconv"

	"github.com/vfg2006/metrics-dashboard/pkg/utils"
)

const (
	ColumnDate         = "date"
	ColumnAccountID    = "account_id"
	ColumnCampaignID   = "campaign_id"
	ColumnImpressions  = "impressions"
	ColumnClicks       = "clicks"
	ColumnConversions  = "conversions"
	ColumnInteractions = "interactions"
	ColumnCostMicros   = "cost_micros"
)

type Column struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

var baseColumns = []Column{
	{Key: ColumnDate, Label: "Data"},
	{Key: ColumnAccountID, Label: "Conta"},
	{Key: ColumnCampaignID, Label: "Campanha"},
	{Key: ColumnImpressions, Label: "Impressões"},
	{Key: ColumnClicks, Label: "Cliques"},
	{Key: ColumnConversions, Label: "Conversões"},
	{Key: ColumnInteractions, Label: "Interações"},
}

var costColumn = Column{Key: ColumnCostMicros, Label: "Custo (micros)"}

// ColumnsFor retorna as colunas visíveis para o papel. O mesmo resultado deve
// ser usado no cabeçalho e em cada linha.
func ColumnsFor(role Role) []Column {
	columns := make([]Column, 0, len(baseColumns)+1)
	columns = append(columns, baseColumns...)
	if role.IsAdmin() {
		columns = append(columns, costColumn)
	}
	return columns
}

// HasColumn indica se a chave pertence às colunas visíveis do papel
func HasColumn(role Role, key string) bool {
	for _, c := range ColumnsFor(role) {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Cell formata o valor da coluna para a linha
func (c Column) Cell(row MetricRow) string {
	switch c.Key {
	case ColumnDate:
		return utils.ToDisplay(row.Date)
	case ColumnAccountID:
		return strconv.FormatInt(row.AccountID, 10)
	case ColumnCampaignID:
		return strconv.FormatInt(row.CampaignID, 10)
	case ColumnImpressions:
		return formatNumber(row.Impressions)
	case ColumnClicks:
		return formatNumber(row.Clicks)
	case ColumnConversions:
		return formatNumber(row.Conversions)
	case ColumnInteractions:
		return formatNumber(row.Interactions)
	case ColumnCostMicros:
		if row.CostMicros == nil {
			return "-"
		}
		return formatNumber(*row.CostMicros)
	default:
		return ""
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
