package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrNotText       = errors.New("输入不是有效的UTF-8文本")
	ErrCacheFailed   = errors.New("指标结果缓存操作失败")
	ErrPublishFailed = errors.New("发布指标结果消息失败")
	ErrDecodeFailed  = errors.New("解析指标请求消息失败")
)

// IndicatorProcessError 包含详细错误信息的自定义错误
type IndicatorProcessError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *IndicatorProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *IndicatorProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *IndicatorProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewValidationError(uuid, detail string) error {
	return &IndicatorProcessError{
		SubmissionUUID: uuid,
		Op:             "validate",
		BaseErr:        ErrNotText,
		Detail:         detail,
	}
}

func NewCacheError(uuid, detail string) error {
	return &IndicatorProcessError{
		SubmissionUUID: uuid,
		Op:             "cache",
		BaseErr:        ErrCacheFailed,
		Detail:         detail,
	}
}

func NewPublishError(uuid, detail string) error {
	return &IndicatorProcessError{
		SubmissionUUID: uuid,
		Op:             "publish",
		BaseErr:        ErrPublishFailed,
		Detail:         detail,
	}
}

func NewDecodeError(uuid, detail string) error {
	return &IndicatorProcessError{
		SubmissionUUID: uuid,
		Op:             "decode",
		BaseErr:        ErrDecodeFailed,
		Detail:         detail,
	}
}
