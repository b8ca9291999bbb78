package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SaveResults writes results as indented JSON to
// "<saveDir>/results_<timestamp>.json" and returns the path written.
func SaveResults(results *Results, saveDir string, timestamp time.Time) (string, error) {
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return "", fmt.Errorf("benchmark: create save dir: %w", err)
	}

	name := fmt.Sprintf("results_%s.json", timestamp.Format("20060102_150405"))
	path := filepath.Join(saveDir, name)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("benchmark: marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("benchmark: write results: %w", err)
	}
	return path, nil
}

// GenerateReport writes the Markdown summary to
// "<saveDir>/report_<timestamp>.md" and returns the path written.
func GenerateReport(results *Results, saveDir string, timestamp time.Time) (string, error) {
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return "", fmt.Errorf("benchmark: create save dir: %w", err)
	}

	name := fmt.Sprintf("report_%s.md", timestamp.Format("20060102_150405"))
	path := filepath.Join(saveDir, name)

	report := renderReport(results, timestamp)
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("benchmark: write report: %w", err)
	}
	return path, nil
}

func renderReport(results *Results, generatedAt time.Time) string {
	single, multi := results.SingleAgent, results.MultiAgent

	var b strings.Builder

	fmt.Fprintf(&b, "# ALM 챗봇 벤치마크 결과\n\n")
	fmt.Fprintf(&b, "## 실행 정보\n")
	fmt.Fprintf(&b, "- **실행 시간**: %s\n", results.Timestamp)
	fmt.Fprintf(&b, "- **총 질문 수**: %d\n\n", results.TotalQuestions)
	fmt.Fprintf(&b, "---\n\n## 📊 요약\n\n")
	fmt.Fprintf(&b, "| 지표 | 단일 에이전트 | 멀티 에이전트 | 개선율 |\n")
	fmt.Fprintf(&b, "|------|--------------|--------------|--------|\n")
	fmt.Fprintf(&b, "| **성공률** | %.1f%% | %.1f%% | %s |\n", single.SuccessRate, multi.SuccessRate, percentChange(single.SuccessRate, multi.SuccessRate))
	fmt.Fprintf(&b, "| **정확도** | %.1f%% | %.1f%% | %s |\n", single.Accuracy, multi.Accuracy, percentChange(single.Accuracy, multi.Accuracy))
	fmt.Fprintf(&b, "| **평균 응답 시간** | %.2f초 | %.2f초 | %s |\n", single.AvgTime, multi.AvgTime, percentChange(single.AvgTime, multi.AvgTime))
	fmt.Fprintf(&b, "| **중앙값 응답 시간** | %.2f초 | %.2f초 | %s |\n", single.MedianTime, multi.MedianTime, percentChange(single.MedianTime, multi.MedianTime))
	fmt.Fprintf(&b, "| **최소 응답 시간** | %.2f초 | %.2f초 | - |\n", single.MinTime, multi.MinTime)
	fmt.Fprintf(&b, "| **최대 응답 시간** | %.2f초 | %.2f초 | - |\n", single.MaxTime, multi.MaxTime)
	fmt.Fprintf(&b, "| **총 실행 시간** | %.2f초 | %.2f초 | %s |\n\n", single.TotalTime, multi.TotalTime, percentChange(single.TotalTime, multi.TotalTime))
	fmt.Fprintf(&b, "---\n\n## 📈 카테고리별 성능\n\n")

	for _, cat := range sortedCategories(results.CategoryStats) {
		stats := results.CategoryStats[cat]
		fmt.Fprintf(&b, "### %s 카테고리 (%d개 질문)\n\n", strings.ToUpper(cat), stats.Single.TotalQuestions)
		fmt.Fprintf(&b, "| 지표 | 단일 | 멀티 |\n")
		fmt.Fprintf(&b, "|------|------|------|\n")
		fmt.Fprintf(&b, "| 성공률 | %.1f%% | %.1f%% |\n", stats.Single.SuccessRate, stats.Multi.SuccessRate)
		fmt.Fprintf(&b, "| 정확도 | %.1f%% | %.1f%% |\n", stats.Single.Accuracy, stats.Multi.Accuracy)
		fmt.Fprintf(&b, "| 평균 시간 | %.2f초 | %.2f초 |\n\n", stats.Single.AvgTime, stats.Multi.AvgTime)
	}

	singleFailures := failures(results.Questions, selectSingle)
	multiFailures := failures(results.Questions, selectMulti)

	fmt.Fprintf(&b, "---\n\n## ❌ 실패 사례 분석\n\n")
	fmt.Fprintf(&b, "### 단일 에이전트 실패 (%d개)\n\n", len(singleFailures))
	writeFailureSamples(&b, singleFailures, selectSingle)
	fmt.Fprintf(&b, "### 멀티 에이전트 실패 (%d개)\n\n", len(multiFailures))
	writeFailureSamples(&b, multiFailures, selectMulti)

	fmt.Fprintf(&b, "---\n\n## 🎯 결론\n\n### 정확도\n")
	if multi.Accuracy > single.Accuracy {
		fmt.Fprintf(&b, "✅ **멀티 에이전트가 %.1f%%p 더 정확**합니다.\n\n", multi.Accuracy-single.Accuracy)
	} else {
		fmt.Fprintf(&b, "⚠️ 단일 에이전트가 %.1f%%p 더 정확합니다.\n\n", single.Accuracy-multi.Accuracy)
	}

	fmt.Fprintf(&b, "### 응답 시간\n")
	if multi.AvgTime < single.AvgTime {
		fmt.Fprintf(&b, "⚡ **멀티 에이전트가 평균 %.2f초 더 빠릅니다**.\n\n", single.AvgTime-multi.AvgTime)
	} else {
		fmt.Fprintf(&b, "🐢 멀티 에이전트가 평균 %.2f초 더 느립니다 (라우팅 오버헤드).\n\n", multi.AvgTime-single.AvgTime)
	}

	fmt.Fprintf(&b, "### 종합 평가\n\n")
	fmt.Fprintf(&b, "- **단일 에이전트**: %d/%d 성공, 평균 %.2f초\n", single.SuccessCount, single.TotalQuestions, single.AvgTime)
	fmt.Fprintf(&b, "- **멀티 에이전트**: %d/%d 성공, 평균 %.2f초\n\n", multi.SuccessCount, multi.TotalQuestions, multi.AvgTime)

	recommendation := "단일 에이전트"
	if multi.Accuracy >= single.Accuracy {
		recommendation = "멀티 에이전트"
	}
	fmt.Fprintf(&b, "**권장사항**: %s 사용 권장\n\n---\n\n", recommendation)
	fmt.Fprintf(&b, "**생성 시간**: %s\n", generatedAt.Format("2006-01-02 15:04:05"))

	return b.String()
}

// percentChange mirrors the original's improvement()/time_improvement()
// helpers — both compute the same signed percent change; the distinction
// in the original was purely naming (time improvements read as "lower is
// better" to a human, but the formula is identical).
func percentChange(base, updated float64) string {
	if base == 0 {
		return "N/A"
	}
	change := (updated - base) / base * 100
	sign := ""
	if change > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, change)
}

func sortedCategories(stats map[string]CategoryStats) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func failures(records []QuestionRecord, pick func(QuestionRecord) QuestionResult) []QuestionRecord {
	var out []QuestionRecord
	for _, r := range records {
		if !pick(r).Success {
			out = append(out, r)
		}
	}
	return out
}

// writeFailureSamples prints at most 5 failure samples, truncating each
// error message to 100 characters, matching the original's report.
func writeFailureSamples(b *strings.Builder, records []QuestionRecord, pick func(QuestionRecord) QuestionResult) {
	if len(records) == 0 {
		fmt.Fprintf(b, "실패 없음\n\n")
		return
	}
	limit := len(records)
	if limit > 5 {
		limit = 5
	}
	for _, r := range records[:limit] {
		res := pick(r)
		fmt.Fprintf(b, "- **질문 %d** (%s): %s\n  - 오류: %s...\n\n", r.ID, r.Category, r.Question, truncate(res.Error, 100))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
