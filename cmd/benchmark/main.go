// Command benchmark runs the single-agent and multi-agent strategies
// against a fixed question set and writes a JSON + Markdown comparison
// report.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-hclog"

	"github.com/kadirpekel/alm-orchestrator/benchmark"
	"github.com/kadirpekel/alm-orchestrator/internal/almstore"
	"github.com/kadirpekel/alm-orchestrator/internal/engineconfig"
	"github.com/kadirpekel/alm-orchestrator/internal/export"
	"github.com/kadirpekel/alm-orchestrator/internal/market"
	"github.com/kadirpekel/alm-orchestrator/llmadapter"
	"github.com/kadirpekel/alm-orchestrator/reactloop"
	"github.com/kadirpekel/alm-orchestrator/specialist"
	"github.com/kadirpekel/alm-orchestrator/supervisor"
	"github.com/kadirpekel/alm-orchestrator/tools"
)

// CLI is the command-line surface: a dataset of questions, where to write
// results, an optional sample cap for quick local runs, and a verbose flag.
type CLI struct {
	Config    string `short:"c" help:"Path to engine config YAML." type:"path"`
	Questions string `help:"Question dataset JSON path." default:"test_questions.json"`
	Output    string `help:"Result output directory." default:"benchmark_results"`
	Sample    int    `help:"Run only the first N questions (0 = all)." default:"0"`
	Verbose   bool   `help:"Also log each question's per-strategy result."`
}

func main() {
	var cli CLI
	kong.Parse(&cli, kong.Description("Benchmark the single-agent and multi-agent ALM strategies."))

	level := hclog.Info
	if cli.Verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "benchmark",
		Level: level,
	})

	if err := run(cli, logger); err != nil {
		logger.Error("benchmark failed", "error", err)
		os.Exit(1)
	}
}

func run(cli CLI, logger hclog.Logger) error {
	cfg, err := engineconfig.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	store, err := almstore.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	curve := market.NewCurve()

	reg := tools.NewRegistry()
	if err := registerALMTools(reg, store, curve, cli.Output); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	llm := llmadapter.NewOpenAIAdapter(llmadapter.OpenAIConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	}, logger.Named("llm"))

	single := reactloop.New(llm.BindTools(toolDefinitions(reg)), reg)

	agents, err := specialist.NewAll(llm, reg)
	if err != nil {
		return fmt.Errorf("build specialists: %w", err)
	}
	multi, err := supervisor.New(llm, agents)
	if err != nil {
		return fmt.Errorf("build supervisor: %w", err)
	}

	questions, err := loadQuestions(cli.Questions)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if cli.Sample > 0 && cli.Sample < len(questions) {
		questions = questions[:cli.Sample]
		logger.Info("sample mode", "count", cli.Sample)
	}

	harness := benchmark.New(reg, single, multi, logger.Named("harness"))
	harness.Verbose = cli.Verbose

	results := harness.Run(ctx, questions)
	now := time.Now()

	jsonPath, err := benchmark.SaveResults(results, cli.Output, now)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	reportPath, err := benchmark.GenerateReport(results, cli.Output, now)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	logger.Info("benchmark complete",
		"single_accuracy", results.SingleAgent.Accuracy,
		"multi_accuracy", results.MultiAgent.Accuracy,
		"json", jsonPath,
		"report", reportPath,
	)
	return nil
}

// toolDefinitions builds the full-tool-set advertisement the single-agent
// ReAct loop binds, mirroring specialist.BaseAgent.boundAdapter but over
// every registered tool instead of one agent's subset.
func toolDefinitions(reg *tools.Registry) []llmadapter.ToolDefinition {
	infos := reg.List()
	defs := make([]llmadapter.ToolDefinition, 0, len(infos))
	for _, info := range infos {
		defs = append(defs, llmadapter.ToolDefinition{
			Name:        info.Name,
			Description: info.Description,
			Parameters:  info.Schema.ToJSONSchema(),
		})
	}
	return defs
}

func loadQuestions(path string) ([]benchmark.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Questions []benchmark.Question `json:"questions"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

// registerALMTools wires the 11 concrete ALM tools against store/curve and
// the export package into reg, the single registry both orchestration
// strategies share.
func registerALMTools(reg *tools.Registry, store *almstore.Store, curve *market.Curve, outputDir string) error {
	specs := []tools.Tool{
		{
			Name:        "search_alm_contracts",
			Description: "ALM_INST 계약 테이블에서 통화, 계약 유형, 북 월 등의 조건으로 계약을 검색합니다.",
			Schema: tools.InputSchema{
				{Name: "filters_json", Type: "string", Description: `검색 조건을 담은 JSON 객체 문자열. 예: {"CURRENCY_CD":"USD","BOOK_MONTH":"2026-06"}`, Default: "{}"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return store.SearchContracts(ctx, parseFiltersJSON(stringArg(args, "filters_json")))
			},
		},
		{
			Name:        "analyze_liquidity_gap",
			Description: "지정한 북 월의 유동성 갭 버킷(0-3M 등)을 분석합니다.",
			Schema: tools.InputSchema{
				{Name: "book_month", Type: "string", Description: "분석할 북 월 (YYYY-MM)"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return store.AnalyzeLiquidityGap(ctx, stringArg(args, "book_month"))
			},
		},
		{
			Name:        "get_exchange_rate",
			Description: "두 통화 간의 환율을 조회합니다.",
			Schema: tools.InputSchema{
				{Name: "from_currency", Type: "string", Description: "기준 통화 코드 (예: USD)"},
				{Name: "to_currency", Type: "string", Description: "대상 통화 코드 (예: KRW)"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return curve.ExchangeRate(stringArg(args, "from_currency"), stringArg(args, "to_currency")), nil
			},
		},
		{
			Name:        "get_interest_rate",
			Description: "금리 코드와 만기를 기준으로 시장 금리를 조회합니다.",
			Schema: tools.InputSchema{
				{Name: "rate_cd", Type: "string", Description: "금리 코드 (예: CD91, KORIBOR, COFIX)"},
				{Name: "term", Type: "string", Description: "만기 (예: 3M, 6M, 12M)"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return curve.InterestRate(stringArg(args, "rate_cd"), stringArg(args, "term")), nil
			},
		},
		{
			Name:        "get_aggregate_stats",
			Description: "전체 ALM 계약에 대한 집계 통계(건수, 통화별 분포 등)를 반환합니다.",
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return store.GetAggregateStats(ctx)
			},
		},
		{
			Name:        "compare_scenarios",
			Description: "여러 북 월의 유동성 지표를 나란히 비교합니다.",
			Schema: tools.InputSchema{
				{Name: "book_months", Type: "string", Description: "쉼표로 구분된 북 월 목록 (예: 2026-05,2026-06)"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return store.CompareScenarios(ctx, stringListArg(args, "book_months"))
			},
		},
		{
			Name:        "analyze_trends",
			Description: "지정한 시계열(환율 또는 금리 이력)의 추세를 분석합니다.",
			Schema: tools.InputSchema{
				{Name: "series", Type: "string", Description: "분석할 시계열 이름: exchange(환율 이력) 또는 interest(금리 이력)"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return store.AnalyzeTrends(ctx, stringArg(args, "series"))
			},
		},
		{
			Name:        "analyze_new_position_growth",
			Description: "두 북 월 사이에 신규로 추가된 포지션의 증가를 통화별로 분석합니다.",
			Schema: tools.InputSchema{
				{Name: "current_month", Type: "string", Description: "비교 대상 최신 북 월 (YYYY-MM)"},
				{Name: "prior_month", Type: "string", Description: "비교 기준 이전 북 월 (YYYY-MM)"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return store.AnalyzeNewPositionGrowth(ctx, stringArg(args, "current_month"), stringArg(args, "prior_month"))
			},
		},
		{
			Name:        "analyze_expired_position_decrease",
			Description: "두 북 월 사이에 만기 도래로 감소한 포지션을 통화별로 분석합니다.",
			Schema: tools.InputSchema{
				{Name: "current_month", Type: "string", Description: "비교 대상 최신 북 월 (YYYY-MM)"},
				{Name: "prior_month", Type: "string", Description: "비교 기준 이전 북 월 (YYYY-MM)"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return store.AnalyzeExpiredPositionDecrease(ctx, stringArg(args, "current_month"), stringArg(args, "prior_month"))
			},
		},
		{
			Name:        "generate_comprehensive_report",
			Description: "제목과 본문 내용을 하나의 종합 리포트 문서로 구성합니다.",
			Schema: tools.InputSchema{
				{Name: "title", Type: "string", Description: "리포트 제목"},
				{Name: "content", Type: "string", Description: "리포트 본문 내용"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return export.GenerateComprehensiveReport(stringArg(args, "title"), []export.Section{
					{Title: "내용", Content: stringArg(args, "content")},
				}), nil
			},
		},
		{
			Name:        "export_report",
			Description: "생성된 리포트 내용을 파일로 내보냅니다 (xlsx, markdown, pdf 중 선택).",
			Schema: tools.InputSchema{
				{Name: "name", Type: "string", Description: "확장자를 제외한 출력 파일명"},
				{Name: "format", Type: "string", Description: "출력 형식: xlsx, markdown, pdf 중 하나"},
				{Name: "content", Type: "string", Description: "내보낼 리포트 내용"},
			},
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				path, err := export.ExportReport(outputDir, stringArg(args, "name"), export.Format(stringArg(args, "format")), stringArg(args, "content"))
				if err != nil {
					return "", err
				}
				return "내보내기 완료: " + path, nil
			},
		},
	}

	for _, s := range specs {
		if err := reg.RegisterTool(s); err != nil {
			return err
		}
	}
	return nil
}

func stringArg(args map[string]interface{}, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func stringListArg(args map[string]interface{}, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case string:
		return strings.Split(list, ",")
	default:
		return nil
	}
}

// parseFiltersJSON decodes a {"COLUMN": "value"} JSON object into a flat
// string map. Malformed input yields an empty filter set rather than an
// error — search_alm_contracts falls back to an unfiltered search.
func parseFiltersJSON(raw string) map[string]string {
	filters := make(map[string]string)
	if raw == "" {
		return filters
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return filters
	}
	for k, v := range decoded {
		switch val := v.(type) {
		case string:
			filters[k] = val
		case float64:
			filters[k] = strconv.FormatFloat(val, 'f', -1, 64)
		}
	}
	return filters
}
