package openai

import (
	"fmt"

	"github.com/paralleldiary/pardiary/internal/domain/activity"
)

const systemPrompt = `당신은 일상 활동을 추천하고 상세 정보를 제공하는 전문가입니다. 사용자가 활동을 선택할 때 도움이 되는 매력적이고 실용적인 정보를 제공해주세요. 장소 추천을 위해 네이버 지역 검색에서 사용할 구체적이고 검색 가능한 키워드를 생성해주세요.`

const promptTemplate = `다음 활동에 대한 상세 정보를 생성해주세요.

활동명: %s
간단 설명: %s

다음 형식의 JSON으로 응답해주세요 (JSON 형식만 출력하고 다른 텍스트는 포함하지 마세요):
{
  "detailedDescription": "활동에 대한 더 자세하고 매력적인 설명 (2-3문장)",
  "benefits": ["이 활동의 장점이나 기대 효과 (3-4개의 항목)"],
  "tips": ["활동을 즐기기 위한 팁이나 추천사항 (3-4개의 항목)"],
  "estimatedTime": "예상 소요 시간 (예: '30분~1시간', '2~3시간' 등)",
  "difficulty": "쉬움" 또는 "보통" 또는 "어려움",
  "tags": ["관련 태그 (3-5개, 예: '휴식', '창의성', '건강' 등)"],
  "placeSearchKeywords": [
    {
      "keyword": "네이버 지역 검색 키워드",
      "reason": "이 장소를 추천하는 이유 (한 문장)"
    }
  ]
}

placeSearchKeywords는 3-4개의 객체 배열로 생성해주세요.
- keyword: 지역명 + 장소 카테고리 조합 (예: "서울 카페", "강남 미술관"). 구체적인 상호명은 사용하지 마세요.
  장소가 필요 없는 활동(예: "내 방 청소", "온라인 스터디")이면 빈 배열로 생성해주세요.
- reason: 이 장소를 추천하는 구체적인 이유 (30자 이내)`

func buildPrompt(summary activity.Summary) string {
	return fmt.Sprintf(promptTemplate, summary.Title, summary.Description)
}
