package constants

import "fmt"

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// FileModulePrefix 文件模块
	FileModulePrefix = "file"
	// ProfileModulePrefix 画像模块
	ProfileModulePrefix = "profile"

	// EntityText 文本实体
	EntityText = "text"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"

	// KeyFileMD5Set 原始文件MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyTextMD5Set 提取文本MD5集合 (SET)
	// 格式: app:text:dedup_set
	KeyTextMD5Set = AppPrefix + ":" + EntityText + ":" + EntityDedupSet

	// KeyFileMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: app:file:md5_to_uuid:{md5}
	KeyFileMD5ToSubmissionUUID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyProfileByTextMD5 按文本MD5缓存的画像JSON (STRING)
	// 格式: app:profile:text:{md5}
	KeyProfileByTextMD5 = AppPrefix + ":" + ProfileModulePrefix + ":" + EntityText + ":%s"
)

// ProfileCacheKey 返回文本MD5对应的画像缓存键
func ProfileCacheKey(textMD5 string) string {
	return fmt.Sprintf(KeyProfileByTextMD5, textMD5)
}

// SubmissionByMD5Key 返回文件MD5到提交UUID的映射键
func SubmissionByMD5Key(fileMD5 string) string {
	return fmt.Sprintf(KeyFileMD5ToSubmissionUUID, fileMD5)
}
