package constants

import "fmt"

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// IndicatorModulePrefix 项目指标模块
	IndicatorModulePrefix = "indicator"

	// EntityResult 提取结果实体
	EntityResult = "result"

	// KeyIndicatorResult 指标提取结果缓存 (STRING, JSON)
	// 格式: app:indicator:result:{参数摘要}:{文本md5}
	KeyIndicatorResult = AppPrefix + ":" + IndicatorModulePrefix + ":" + EntityResult + ":%s:%s"
)

// IndicatorResultKey 返回某组提取参数下某份简历文本的结果缓存键
func IndicatorResultKey(fingerprint, textMD5 string) string {
	return fmt.Sprintf(KeyIndicatorResult, fingerprint, textMD5)
}
