package specialist

import (
	"github.com/kadirpekel/alm-orchestrator/llmadapter"
	"github.com/kadirpekel/alm-orchestrator/prompts"
	"github.com/kadirpekel/alm-orchestrator/tools"
)

// NewSearchAgent builds the ALM contract search specialist.
func NewSearchAgent(llm llmadapter.Adapter, reg *tools.Registry) (*BaseAgent, error) {
	return NewBaseAgent(NameSearch, prompts.SearchAgentPrompt, []string{"search_alm_contracts"}, llm, reg)
}

// NewMarketAgent builds the exchange-rate / interest-rate specialist.
func NewMarketAgent(llm llmadapter.Adapter, reg *tools.Registry) (*BaseAgent, error) {
	return NewBaseAgent(NameMarket, prompts.MarketAgentPrompt, []string{"get_exchange_rate", "get_interest_rate"}, llm, reg)
}

// NewAnalysisAgent builds the liquidity-gap / aggregate-stats / scenario /
// trend analysis specialist.
func NewAnalysisAgent(llm llmadapter.Adapter, reg *tools.Registry) (*BaseAgent, error) {
	return NewBaseAgent(NameAnalysis, prompts.AnalysisAgentPrompt, []string{
		"analyze_liquidity_gap", "get_aggregate_stats", "compare_scenarios", "analyze_trends",
	}, llm, reg)
}

// NewPositionAgent builds the new/expired position growth specialist.
func NewPositionAgent(llm llmadapter.Adapter, reg *tools.Registry) (*BaseAgent, error) {
	return NewBaseAgent(NamePosition, prompts.PositionAgentPrompt, []string{
		"analyze_new_position_growth", "analyze_expired_position_decrease",
	}, llm, reg)
}

// NewReportAgent builds the comprehensive-report specialist.
func NewReportAgent(llm llmadapter.Adapter, reg *tools.Registry) (*BaseAgent, error) {
	return NewBaseAgent(NameReport, prompts.ReportAgentPrompt, []string{"generate_comprehensive_report"}, llm, reg)
}

// NewExportAgent builds the report-export specialist.
func NewExportAgent(llm llmadapter.Adapter, reg *tools.Registry) (*BaseAgent, error) {
	return NewBaseAgent(NameExport, prompts.ExportAgentPrompt, []string{"export_report"}, llm, reg)
}

// NewAll constructs all six specialists against the same registry, keyed by
// name, failing fast if any required tool is missing.
func NewAll(llm llmadapter.Adapter, reg *tools.Registry) (map[string]*BaseAgent, error) {
	builders := []struct {
		name string
		new  func(llmadapter.Adapter, *tools.Registry) (*BaseAgent, error)
	}{
		{NameSearch, NewSearchAgent},
		{NameMarket, NewMarketAgent},
		{NameAnalysis, NewAnalysisAgent},
		{NamePosition, NewPositionAgent},
		{NameReport, NewReportAgent},
		{NameExport, NewExportAgent},
	}

	agents := make(map[string]*BaseAgent, len(builders))
	for _, b := range builders {
		agent, err := b.new(llm, reg)
		if err != nil {
			return nil, err
		}
		agents[b.name] = agent
	}
	return agents, nil
}
