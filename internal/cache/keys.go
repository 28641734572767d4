package cache

func UserKey(userID string) string {
	return "user:" + userID
}

func ServerPermissionKey(userID string, serverID string) string {
	return "server_permissions:" + userID + ":" + serverID
}

func BlacklistKey(token string) string {
	return "blacklist:" + token
}

func RateLimitKey(action string, userID string) string {
	return "rate_limit:" + action + ":" + userID
}
