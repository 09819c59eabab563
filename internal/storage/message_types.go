package storage

import (
	"time"

	"freelancer-trust/internal/types"
)

// IndicatorRequestMessage 指标计算请求消息
type IndicatorRequestMessage struct {
	SubmissionUUID string    `json:"submission_uuid,omitempty"` // 为空时由消费者生成
	ResumeText     string    `json:"resume_text"`               // 已提取的简历纯文本
	RequestedAt    time.Time `json:"requested_at,omitempty"`
}

// IndicatorResultMessage 指标计算结果消息
type IndicatorResultMessage struct {
	SubmissionUUID string                 `json:"submission_uuid"`
	Indicators     *types.IndicatorRecord `json:"indicators,omitempty"`
	FeatureVector  *types.FeatureVector   `json:"feature_vector,omitempty"`
	Projects       []types.ProjectRecord  `json:"projects_details,omitempty"`
	Error          string                 `json:"error,omitempty"` // 非空表示计算失败
	ProcessedAt    time.Time              `json:"processed_at"`
}

// NewIndicatorResultMessage 由提取结果构造结果消息
func NewIndicatorResultMessage(submissionUUID string, result *types.ExtractionResult, processedAt time.Time) IndicatorResultMessage {
	indicators := result.Indicators
	vector := result.FeatureVector
	return IndicatorResultMessage{
		SubmissionUUID: submissionUUID,
		Indicators:     &indicators,
		FeatureVector:  &vector,
		Projects:       result.Projects,
		ProcessedAt:    processedAt,
	}
}

// NewIndicatorErrorMessage 构造失败结果消息
func NewIndicatorErrorMessage(submissionUUID string, err error, processedAt time.Time) IndicatorResultMessage {
	return IndicatorResultMessage{
		SubmissionUUID: submissionUUID,
		Error:          err.Error(),
		ProcessedAt:    processedAt,
	}
}
