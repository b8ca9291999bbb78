package specialist

// Agent name constants, shared by the supervisor and the workflow driver so
// a typo in a literal string can never silently create an unknown agent.
const (
	NameSupervisor = "supervisor"
	NameSearch     = "search_agent"
	NameMarket     = "market_agent"
	NameAnalysis   = "analysis_agent"
	NamePosition   = "position_agent"
	NameReport     = "report_agent"
	NameExport     = "export_agent"
	NameCombiner   = "combiner"
	NameFinish     = "finish"
)

// AllNames lists every specialist agent name, in the canonical order the
// supervisor's required-agent check and the workflow's node registration
// use.
var AllNames = []string{NameSearch, NameMarket, NameAnalysis, NamePosition, NameReport, NameExport}
