package services

import "fmt"

// Document-path builders for the persisted layout:
// users/{uid}, users/{uid}/friends/{friendId},
// users/{uid}/friendRequests/{requestId},
// users/{uid}/notificationLocks/{lockId},
// chats/{chatId}, chats/{chatId}/messages/{messageId}.

func userPath(uid string) string {
	return fmt.Sprintf("users/%s", uid)
}

func friendsCol(uid string) string {
	return fmt.Sprintf("users/%s/friends", uid)
}

func friendPath(uid, friendID string) string {
	return fmt.Sprintf("users/%s/friends/%s", uid, friendID)
}

func requestsCol(uid string) string {
	return fmt.Sprintf("users/%s/friendRequests", uid)
}

func requestPath(uid, requestID string) string {
	return fmt.Sprintf("users/%s/friendRequests/%s", uid, requestID)
}

func locksCol(uid string) string {
	return fmt.Sprintf("users/%s/notificationLocks", uid)
}

func lockPath(uid, lockID string) string {
	return fmt.Sprintf("users/%s/notificationLocks/%s", uid, lockID)
}

func chatPath(chatID string) string {
	return fmt.Sprintf("chats/%s", chatID)
}

func messagesCol(chatID string) string {
	return fmt.Sprintf("chats/%s/messages", chatID)
}

func messagePath(chatID, messageID string) string {
	return fmt.Sprintf("chats/%s/messages/%s", chatID, messageID)
}
