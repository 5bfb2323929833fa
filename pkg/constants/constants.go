package constants

const (
	GroupIDPrefix      = "G"               // 群聊 ID 前缀
	GroupIDRandomLen   = 11                // 群聊 ID 随机部分长度
	GroupChannelPrefix = "group:"          // 推送频道前缀
	EventNewGroupMsg   = "newGroupMessage" // 新群消息推送事件
	ProfileCachePrefix = "user_profile_"   // 用户资料缓存 key 前缀
	CtxUserIDKey       = "user_id"         // gin 上下文中的调用方 ID
)

// GroupChannel 群聊推送频道名
func GroupChannel(groupID string) string {
	return GroupChannelPrefix + groupID
}
