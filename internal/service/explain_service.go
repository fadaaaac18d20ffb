package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/dartview/dartview-go/internal/domain"
	"github.com/dartview/dartview-go/internal/infra/observability"
	"github.com/dartview/dartview-go/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ExplainService turns a statement summary into a plain-language Korean
// explanation. Generation is best-effort: any model failure degrades to a
// canned text, never to an error response. Identical statements share one
// in-flight generation and hit the cache afterwards.
type ExplainService struct {
	generator port.ExplanationGenerator // nil when no API key is configured
	cache     port.Cache[string]
	metrics   *observability.Metrics
	logger    *zap.Logger
	group     singleflight.Group
}

// NewExplainService creates the explanation service. A nil generator is
// valid; every request then gets the fallback text.
func NewExplainService(generator port.ExplanationGenerator, cache port.Cache[string], metrics *observability.Metrics, logger *zap.Logger) *ExplainService {
	return &ExplainService{
		generator: generator,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// Explain generates an explanation for the key accounts of one statement.
func (s *ExplainService) Explain(ctx context.Context, companyName string, items []domain.LineItem) (*domain.Explanation, error) {
	ctx, span := tracer.Start(ctx, "ExplainService.Explain")
	defer span.End()

	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, &domain.ErrValidation{Field: "companyName", Message: "company name is required"}
	}
	if len(items) == 0 {
		return nil, &domain.ErrValidation{Field: "financialData", Message: "financial data is required"}
	}

	requestID := uuid.NewString()
	summary := summarize(items)
	key := cacheKey(companyName, summary)

	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("explanation")
		return &domain.Explanation{Explanation: cached, RequestID: requestID, Cached: true}, nil
	}
	s.metrics.IncrCacheMiss("explanation")

	text, err, _ := s.group.Do(key, func() (any, error) {
		return s.generate(ctx, companyName, summary), nil
	})
	if err != nil {
		// generate never returns an error; singleflight only relays one
		return nil, err
	}

	explanation := text.(string)
	fallback := explanation == ""
	if fallback {
		s.metrics.IncrFallback()
		explanation = fallbackExplanation(companyName)
	} else {
		s.cache.Set(key, explanation)
	}

	return &domain.Explanation{
		Explanation: explanation,
		RequestID:   requestID,
		Fallback:    fallback,
	}, nil
}

// generate returns the model text, or "" to signal the fallback path.
func (s *ExplainService) generate(ctx context.Context, companyName string, summary []domain.ExplainLine) string {
	if s.generator == nil {
		return ""
	}

	start := time.Now()
	text, err := s.generator.Generate(ctx, buildPrompt(companyName, summary))
	s.metrics.RecordRequestDuration("explanation", time.Since(start))

	if err != nil {
		s.logger.Warn("explanation generation failed, serving fallback",
			zap.String("company", companyName),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("gemini")
		return ""
	}
	return text
}

// summarize keeps only the six headline accounts and strips everything the
// model does not need.
func summarize(items []domain.LineItem) []domain.ExplainLine {
	wanted := make(map[string]bool, len(domain.ExplainAccounts))
	for _, name := range domain.ExplainAccounts {
		wanted[name] = true
	}

	var lines []domain.ExplainLine
	for _, it := range items {
		if !wanted[it.AccountName] {
			continue
		}
		lines = append(lines, domain.ExplainLine{
			AccountName:      it.AccountName,
			CurrentAmount:    it.CurrentAmount,
			PriorAmount:      it.PriorAmount,
			PriorPriorAmount: it.PriorPriorAmount,
			CurrentYear:      yearOf(it.CurrentDate),
			PriorYear:        yearOf(it.PriorDate),
			PriorPriorYear:   yearOf(it.PriorPriorDate),
		})
	}
	return lines
}

func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

func cacheKey(companyName string, summary []domain.ExplainLine) string {
	h := fnv.New64a()
	h.Write([]byte(companyName))
	data, _ := json.Marshal(summary)
	h.Write(data)
	return fmt.Sprintf("explain:%x", h.Sum64())
}

func buildPrompt(companyName string, summary []domain.ExplainLine) string {
	data, _ := json.MarshalIndent(summary, "", "  ")

	return fmt.Sprintf(`%s의 다음 재무제표 데이터를 분석하고 쉽게 설명해주세요:

%s

다음 내용을 포함해주세요:
1. 회사의 전반적인 재무 상태
2. 매출, 영업이익, 당기순이익의 추세와 의미
3. 자산, 부채, 자본의 구성과 변화
4. 투자자 관점에서 중요한 포인트
5. 간단한 재무 건전성 평가
6. 유동성 비율과 부채 비율 분석

전문용어는 최소화하고, 일반인도 이해하기 쉽게 설명해주세요.
결과는 HTML 형식으로 반환해주세요. <h3>, <p>, <ul>, <li>, <strong> 태그 등을 사용해서 읽기 쉽게 구성해주세요.
표와 그래프는 설명하지 말고, 텍스트로만 설명해주세요.
응답 시작과 끝에 `+"```html 또는 ```"+` 같은 마크다운 코드 블록 표시를 넣지 마세요.`, companyName, data)
}

func fallbackExplanation(companyName string) string {
	return fmt.Sprintf(`<h3>재무제표 설명을 생성하는 중 오류가 발생했습니다</h3>
<p>죄송합니다. %s의 재무제표 설명을 생성하는 중 문제가 발생했습니다.</p>
<p>대신 주요 재무 지표를 직접 확인해보세요:</p>
<ul>
  <li><strong>재무상태표</strong>: 자산, 부채, 자본의 구성을 확인하세요.</li>
  <li><strong>손익계산서</strong>: 매출액, 영업이익, 당기순이익의 추이를 확인하세요.</li>
</ul>
<p>재무제표 시각화 탭에서 차트와 표를 통해 재무 정보를 확인할 수 있습니다.</p>`, companyName)
}
